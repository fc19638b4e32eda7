package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/waha-client/internal/status"
)

// Actions is the controller surface the TUI drives.
type Actions interface {
	Identity() string
	SetIdentity(phone string) error
	CheckStatus(ctx context.Context) (status.Info, error)
	CreateSession(ctx context.Context) error
	StartSession(ctx context.Context) error
	StopSession(ctx context.Context) error
	Logout(ctx context.Context) error
	DeleteSession(ctx context.Context) error
	GenerateQR(ctx context.Context) error
	Refresh(ctx context.Context) error
	SelectConversation(ctx context.Context, id string) error
	Send(ctx context.Context, text string) error
}

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':'). Aliases
// resolve to their full name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if full, ok := aliases[cmd.Name]; ok {
		cmd.Name = full
	}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// CommandSpec documents one command for the help page.
type CommandSpec struct {
	Name        string
	Usage       string
	Description string
}

func commandNames() []string {
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}
	return names
}

// Commands lists every command in help order.
var Commands = []CommandSpec{
	{"phone", ":phone <number>", "Set the phone number this client pairs as"},
	{"create", ":create", "Create the gateway session and register webhooks"},
	{"start", ":start", "Start the session"},
	{"stop", ":stop", "Stop the session"},
	{"qr", ":qr", "Show a pairing QR code"},
	{"logout", ":logout", "Unlink the phone"},
	{"delete", ":delete", "Delete the session on the gateway"},
	{"status", ":status", "Re-check the session status"},
	{"refresh", ":refresh", "Reload the chat list"},
	{"open", ":open <chat id>", "Open a conversation by id"},
	{"help", ":help", "Show this help"},
	{"quit", ":quit", "Quit"},
}

var aliases = map[string]string{
	"q":       "quit",
	"exit":    "quit",
	"h":       "help",
	"?":       "help",
	"login":   "qr",
	"st":      "status",
	"r":       "refresh",
	"number":  "phone",
	"chat":    "open",
	"unlink":  "logout",
	"destroy": "delete",
}

// UsageError is a malformed or unknown command.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	var u *UsageError
	return errors.As(err, &u)
}

// Execute runs a controller command synchronously. help and quit are
// handled by the shell and are not accepted here.
func Execute(ctx context.Context, a Actions, cmd Command) error {
	switch cmd.Name {
	case "phone":
		if cmd.Args == "" {
			return &UsageError{Msg: "Usage: :phone <number>"}
		}
		return a.SetIdentity(cmd.Args)
	case "create":
		return a.CreateSession(ctx)
	case "start":
		return a.StartSession(ctx)
	case "stop":
		return a.StopSession(ctx)
	case "qr":
		return a.GenerateQR(ctx)
	case "logout":
		return a.Logout(ctx)
	case "delete":
		return a.DeleteSession(ctx)
	case "status":
		_, err := a.CheckStatus(ctx)
		return err
	case "refresh":
		return a.Refresh(ctx)
	case "open":
		if cmd.Args == "" {
			return &UsageError{Msg: "Usage: :open <chat id>"}
		}
		return a.SelectConversation(ctx, cmd.Args)
	case "":
		return &UsageError{Msg: "Empty command"}
	}
	return &UsageError{Msg: fmt.Sprintf("Unknown command %q, try :help", cmd.Name)}
}
