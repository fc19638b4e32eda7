package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/client"
	"github.com/matheus3301/waha-client/internal/config"
	"github.com/matheus3301/waha-client/internal/console"
	"github.com/matheus3301/waha-client/internal/logging"
	"github.com/matheus3301/waha-client/internal/session"
)

const binary = "wahactl"

// env is what every command needs.
type env struct {
	cfg     *config.Config
	session string
	stack   *client.Stack
	out     *console.Printer
	json    bool
}

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	timeoutFlag := flag.Duration("timeout", 30*time.Second, "timeout for one-shot commands")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, sessionName, err := session.Load(*sessionFlag)
	if err != nil {
		fatal(err)
	}

	if args[0] == "health" {
		cmdHealth(sessionName, *jsonFlag)
		return
	}

	if err := session.EnsureDir(sessionName); err != nil {
		fatal(err)
	}
	logger, err := logging.New(session.LogPath(sessionName, binary), sessionName, binary, logging.Options{Level: cfg.Log.Level})
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	e := &env{cfg: cfg, session: sessionName, out: console.New(os.Stdout, *jsonFlag), json: *jsonFlag}
	e.stack, err = client.Build(cfg, sessionName, e.out, client.Options{Logger: logger})
	if err != nil {
		fatal(err)
	}
	defer func() { _ = e.stack.Close() }()

	if args[0] == "watch" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmdWatch(ctx, e, args[1:], logger)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	switch args[0] {
	case "status":
		cmdStatus(ctx, e)
	case "sessions":
		cmdSessions(ctx, e)
	case "create", "start", "stop", "logout", "delete":
		cmdLifecycle(ctx, e, args[0])
	case "qr":
		cmdQR(ctx, e, args[1:])
	case "phone":
		cmdPhone(e, args[1:])
	case "chats":
		cmdChats(ctx, e)
	case "messages":
		cmdMessages(ctx, e, args[1:])
	case "send":
		cmdSend(ctx, e, args[1:])
	case "fav":
		cmdFav(ctx, e, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wahactl [--session <name>] [--json] [--timeout <d>] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                   Show session status")
	fmt.Fprintln(os.Stderr, "  sessions                 List gateway sessions")
	fmt.Fprintln(os.Stderr, "  create                   Create the session and register webhooks")
	fmt.Fprintln(os.Stderr, "  start | stop             Start or stop the session")
	fmt.Fprintln(os.Stderr, "  logout                   Unlink the phone")
	fmt.Fprintln(os.Stderr, "  delete                   Delete the session")
	fmt.Fprintln(os.Stderr, "  qr [--out file.png]      Show or save the pairing QR code")
	fmt.Fprintln(os.Stderr, "  phone [number]           Show or set the phone number")
	fmt.Fprintln(os.Stderr, "  chats                    List chats")
	fmt.Fprintln(os.Stderr, "  messages <chat id>       Show the history of a chat")
	fmt.Fprintln(os.Stderr, "  send <chat id> <text>    Send a text message")
	fmt.Fprintln(os.Stderr, "  fav list                 List favorite chats")
	fmt.Fprintln(os.Stderr, "  fav add|rm|check <id>    Manage a favorite chat")
	fmt.Fprintln(os.Stderr, "  watch [--chat <id>]      Follow push events until interrupted")
	fmt.Fprintln(os.Stderr, "  health                   Probe the local bridge")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// check exits quietly on err: the controller already printed it.
func check(err error) {
	if err != nil {
		os.Exit(1)
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func logOnly(logger *zap.Logger, msg string, err error) {
	if err != nil {
		logger.Warn(msg, zap.Error(err))
	}
}
