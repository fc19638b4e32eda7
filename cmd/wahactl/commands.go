package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/bridge"
	"github.com/matheus3301/waha-client/internal/conversation"
	"github.com/matheus3301/waha-client/internal/lock"
	"github.com/matheus3301/waha-client/internal/session"
	"github.com/matheus3301/waha-client/internal/store"
	"github.com/matheus3301/waha-client/internal/view"
)

func cmdHealth(sessionName string, jsonOut bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	socketPath := session.HealthSocketPath(sessionName)
	st, err := bridge.Probe(ctx, socketPath)
	if err != nil {
		fatal(fmt.Errorf("bridge for session %q: %w", sessionName, err))
	}
	owner, _ := lock.Inspect(session.Dir(sessionName))
	if jsonOut {
		outputJSON(struct {
			Session string     `json:"session"`
			Socket  string     `json:"socket"`
			Status  string     `json:"status"`
			Owner   lock.Owner `json:"owner"`
		}{sessionName, socketPath, st, owner})
		return
	}
	fmt.Printf("Session: %s\n", sessionName)
	fmt.Printf("Socket:  %s\n", socketPath)
	fmt.Printf("Bridge:  %s\n", st)
	if owner.PID != 0 {
		fmt.Printf("PID:     %d (since %s)\n", owner.PID, owner.Started.Local().Format(time.DateTime))
	}
	if owner.Addr != "" {
		fmt.Printf("Listen:  %s\n", owner.Addr)
	}
	if st != "SERVING" {
		os.Exit(1)
	}
}

func cmdStatus(ctx context.Context, e *env) {
	info, err := e.stack.Tracker.CheckStatus(ctx)
	if err != nil {
		fatal(err)
	}
	if e.json {
		outputJSON(info)
		return
	}
	phone, _ := e.stack.DB.Get(store.KeyIdentity)
	fmt.Printf("Session: %s\n", info.Name)
	fmt.Printf("Status:  %s\n", info.Status)
	fmt.Printf("User:    %s\n", info.User())
	fmt.Printf("Engine:  %s\n", info.EngineLabel())
	if phone != "" {
		fmt.Printf("Phone:   %s\n", phone)
	}
}

func cmdSessions(ctx context.Context, e *env) {
	sessions, err := e.stack.Tracker.List(ctx)
	if err != nil {
		fatal(err)
	}
	if e.json {
		outputJSON(sessions)
		return
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return
	}
	for _, s := range sessions {
		marker := " "
		if s.Name == e.session {
			marker = "*"
		}
		fmt.Printf("%s %-20s %-14s %s\n", marker, s.Name, s.Status, s.User())
	}
}

// cmdLifecycle runs a session operation through the controller, which
// reports progress on the console printer.
func cmdLifecycle(ctx context.Context, e *env, op string) {
	a := e.stack.App
	restore(e)
	var err error
	switch op {
	case "create":
		err = a.CreateSession(ctx)
	case "start":
		err = a.StartSession(ctx)
	case "stop":
		err = a.StopSession(ctx)
	case "logout":
		err = a.Logout(ctx)
	case "delete":
		err = a.DeleteSession(ctx)
	}
	check(err)
}

func cmdQR(ctx context.Context, e *env, args []string) {
	fs := flag.NewFlagSet("qr", flag.ExitOnError)
	out := fs.String("out", "", "write the PNG to this file instead of printing it")
	_ = fs.Parse(args)

	phone := restore(e)
	if phone == "" {
		fatal(fmt.Errorf("no phone number configured, run: wahactl phone <number>"))
	}
	qr, err := e.stack.Tracker.GenerateQR(ctx, phone)
	if err != nil {
		fatal(err)
	}
	if qr == nil {
		fmt.Println("Already logged in.")
		return
	}
	if *out == "" {
		e.out.ShowQRImage(*qr)
		return
	}
	if len(qr.Data) == 0 {
		fatal(fmt.Errorf("gateway returned no image"))
	}
	if err := os.WriteFile(*out, qr.Data, 0600); err != nil {
		fatal(err)
	}
	fmt.Printf("QR written to %s (%s, %d bytes)\n", *out, qr.MimeType, len(qr.Data))
}

func cmdPhone(e *env, args []string) {
	if len(args) == 0 {
		phone := restore(e)
		if phone == "" {
			fmt.Println("No phone number configured.")
			return
		}
		fmt.Println(phone)
		return
	}
	check(e.stack.App.SetIdentity(strings.Join(args, "")))
}

func cmdChats(ctx context.Context, e *env) {
	chats, err := e.stack.Gateway.ListChats(ctx)
	if err != nil {
		fatal(err)
	}
	items := make([]view.ChatItem, 0, len(chats))
	for _, c := range chats {
		items = append(items, conversation.ChatItem(c, false))
	}
	if e.json {
		outputJSON(items)
		return
	}
	if len(items) == 0 {
		fmt.Println("No chats.")
		return
	}
	for _, c := range items {
		unread := ""
		if c.Unread > 0 {
			unread = fmt.Sprintf("(%d)", c.Unread)
		}
		fmt.Printf("%-32s %-24s %5s %-5s %s\n", c.ID, trim(c.Name, 24), unread, view.ClockTime(c.Timestamp), trim(c.Preview, 50))
	}
}

func cmdMessages(ctx context.Context, e *env, args []string) {
	if len(args) != 1 {
		fatal(fmt.Errorf("usage: wahactl messages <chat id>"))
	}
	check(e.stack.App.SelectConversation(ctx, args[0]))
}

func cmdSend(ctx context.Context, e *env, args []string) {
	if len(args) < 2 {
		fatal(fmt.Errorf("usage: wahactl send <chat id> <text>"))
	}
	text := strings.Join(args[1:], " ")
	if err := e.stack.Gateway.SendText(ctx, args[0], text); err != nil {
		fatal(err)
	}
	if e.json {
		outputJSON(map[string]any{"chatId": args[0], "sent": true})
		return
	}
	fmt.Println("Sent.")
}

func cmdFav(ctx context.Context, e *env, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("usage: wahactl fav <list|add|rm|check> [chat id]"))
	}
	gw := e.stack.Gateway
	if args[0] == "list" {
		favs, err := gw.ListFavorites(ctx)
		if err != nil {
			fatal(err)
		}
		if e.json {
			outputJSON(map[string]any{"favorites": favs})
			return
		}
		for _, f := range favs {
			fmt.Println(f)
		}
		return
	}
	if len(args) != 2 {
		fatal(fmt.Errorf("usage: wahactl fav %s <chat id>", args[0]))
	}
	id := args[1]
	switch args[0] {
	case "add":
		if err := gw.AddFavorite(ctx, id); err != nil {
			fatal(err)
		}
		fmt.Printf("Added %s to favorites.\n", id)
	case "rm":
		if err := gw.RemoveFavorite(ctx, id); err != nil {
			fatal(err)
		}
		fmt.Printf("Removed %s from favorites.\n", id)
	case "check":
		ok, err := gw.IsFavorite(ctx, id)
		if err != nil {
			fatal(err)
		}
		if e.json {
			outputJSON(map[string]bool{"isFavorite": ok})
			return
		}
		fmt.Println(ok)
	default:
		fatal(fmt.Errorf("unknown fav subcommand: %s", args[0]))
	}
}

// cmdWatch boots the controller and prints every rendered change until
// ctx ends.
func cmdWatch(ctx context.Context, e *env, args []string, logger *zap.Logger) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	chat := fs.String("chat", "", "also follow the messages of this chat")
	_ = fs.Parse(args)

	e.stack.Journal(ctx)
	logOnly(logger, "boot", e.stack.App.Boot(ctx))
	if *chat != "" {
		logOnly(logger, "open chat", e.stack.App.SelectConversation(ctx, *chat))
	}
	<-ctx.Done()
	e.out.Notify("stopped", view.LevelInfo)
}

// restore loads the saved phone number into the controller without
// opening the push channel.
func restore(e *env) string {
	phone, err := e.stack.App.Restore()
	if err != nil {
		fatal(err)
	}
	return phone
}

func trim(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
