package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/bridge"
	"github.com/matheus3301/waha-client/internal/client"
	"github.com/matheus3301/waha-client/internal/logging"
	"github.com/matheus3301/waha-client/internal/session"
	"github.com/matheus3301/waha-client/internal/tui"
)

const binary = "wahatui"

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	noBridge := flag.Bool("no-bridge", false, "do not start a local wahabridge")
	flag.Parse()

	cfg, sessionName, err := session.Load(*sessionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := session.EnsureDir(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(session.LogPath(sessionName, binary), sessionName, binary, logging.Options{Level: cfg.Log.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	socketPath := session.HealthSocketPath(sessionName)

	// Probe the bridge; auto-start it if needed.
	if !*noBridge && !probeBridge(socketPath) {
		fmt.Fprintf(os.Stderr, "bridge not running for session %q, starting...\n", sessionName)
		if err := startBridge(sessionName); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start bridge: %v\n", err)
			os.Exit(1)
		}
		if !waitForBridge(socketPath, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "bridge did not become ready\n")
			os.Exit(1)
		}
	}

	ui := tui.NewApp(sessionName, logger)
	stack, err := client.Build(cfg, sessionName, ui, client.Options{Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = stack.Close() }()

	ui.Bind(stack.App)
	stack.Journal(ui.Context())

	go func() {
		if err := stack.App.Boot(ui.Context()); err != nil {
			logger.Warn("boot", zap.Error(err))
		}
	}()

	if err := ui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// probeBridge checks the bridge's gRPC health service on the socket.
func probeBridge(socketPath string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := bridge.Probe(ctx, socketPath)
	return err == nil && st == "SERVING"
}

func startBridge(sessionName string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	path := filepath.Join(filepath.Dir(executable), bridge.Binary)

	if _, err := os.Stat(path); err != nil {
		path = bridge.Binary
	}

	cmd := exec.Command(path, "--session", sessionName)
	return cmd.Start()
}

func waitForBridge(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeBridge(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
