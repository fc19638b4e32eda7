package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/matheus3301/waha-client/internal/bridge"
	"github.com/matheus3301/waha-client/internal/session"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	flag.Parse()

	cfg, sessionName, err := session.Load(*sessionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		bridge.Module(bridge.Params{
			SessionName: sessionName,
			Config:      cfg,
			ConfigPath:  session.ConfigPath(),
		}),
	)

	app.Run()
}
