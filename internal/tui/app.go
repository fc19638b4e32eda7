// Package tui is the terminal interface. App implements view.Presenter on
// top of tview and drives the controller through Actions.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/status"
	"github.com/matheus3301/waha-client/internal/tui/keys"
	"github.com/matheus3301/waha-client/internal/tui/ui"
	"github.com/matheus3301/waha-client/internal/tui/views"
	"github.com/matheus3301/waha-client/internal/view"
)

const (
	pageChats = "chats"
	pageAuth  = "auth"
	pageHelp  = "help"
)

var _ view.Presenter = (*App)(nil)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	root      *tview.Flex
	pages     *tview.Pages
	theme     *ui.Theme
	registry  *keys.Registry
	flash     *ui.FlashModel
	flashBar  *ui.FlashBar
	menu      *ui.Menu
	info      *ui.SessionInfo
	prompt    *ui.Prompt
	statusBar *views.StatusBar
	chatList  *views.ChatList
	msgView   *views.MessageView
	composer  *views.Composer
	qrView    *views.QRView
	helpView  *views.HelpView
	actions   Actions
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	lastPage  string
}

// NewApp creates the TUI application for a session.
func NewApp(sessionName string, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		theme:     theme,
		registry:  keys.NewRegistry(),
		flash:     ui.NewFlashModel(),
		flashBar:  ui.NewFlashBar(theme),
		menu:      ui.NewMenu(theme),
		info:      ui.NewSessionInfo(theme),
		prompt:    ui.NewPrompt(theme, commandNames()),
		statusBar: views.NewStatusBar(theme),
		chatList:  views.NewChatList(theme),
		msgView:   views.NewMessageView(theme),
		composer:  views.NewComposer(theme),
		qrView:    views.NewQRView(theme),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		lastPage:  pageChats,
	}

	a.statusBar.SetSession(sessionName)
	a.info.Update(status.Info{Name: sessionName})
	a.qrView.ShowMessage("Checking session...")
	a.setupBindings()
	a.helpView = views.NewHelpView(theme, a.helpSections())
	a.setupCallbacks()
	a.setupLayout()

	return a
}

// Bind attaches the controller. It must be called before Run.
func (a *App) Bind(actions Actions) {
	a.actions = actions
	a.info.SetPhone(actions.Identity())
}

// Context is cancelled when the TUI stops.
func (a *App) Context() context.Context {
	return a.ctx
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Name: "command", Key: tcell.KeyRune, Rune: ':',
		Description: "Command", Visible: true,
		Handler: a.showPrompt,
	})
	a.registry.AddGlobal(&keys.Action{
		Name: "qr", Key: tcell.KeyRune, Rune: 'g',
		Description: "QR code", Visible: true,
		Handler: func() { a.do("generate QR", a.actions.GenerateQR) },
	})
	a.registry.AddGlobal(&keys.Action{
		Name: "refresh", Key: tcell.KeyRune, Rune: 'r',
		Description: "Refresh", Visible: true,
		Handler: func() {
			a.do("check status", func(ctx context.Context) error {
				_, err := a.actions.CheckStatus(ctx)
				return err
			})
		},
	})
	a.registry.AddGlobal(&keys.Action{
		Name: "help", Key: tcell.KeyRune, Rune: '?',
		Description: "Help", Visible: true,
		Handler: func() { a.switchTo(pageHelp) },
	})
	a.registry.AddGlobal(&keys.Action{
		Name: "quit", Key: tcell.KeyRune, Rune: 'q',
		Description: "Quit", Visible: true,
		Handler: a.Stop,
	})

	a.registry.AddPage(pageChats, &keys.Action{
		Name: "compose", Key: tcell.KeyRune, Rune: 'i',
		Description: "Write", Visible: true,
		Handler: func() { a.app.SetFocus(a.composer) },
	})
	a.registry.AddPage(pageChats, &keys.Action{
		Name: "pane", Key: tcell.KeyTab,
		Description: "Switch pane", Visible: true,
		Handler: a.togglePane,
	})
	a.registry.AddPage(pageChats, &keys.Action{
		Name: "open", Key: tcell.KeyEnter,
		Description: "Open", Visible: true,
		Handler: a.openSelected,
	})
	a.registry.AddPage(pageAuth, &keys.Action{
		Name: "back", Key: tcell.KeyEscape,
		Description: "Chats", Visible: true,
		Handler: func() { a.switchTo(pageChats) },
	})
	a.registry.AddPage(pageHelp, &keys.Action{
		Name: "back", Key: tcell.KeyEscape,
		Description: "Back", Visible: true,
		Handler: func() { a.switchTo(a.lastPage) },
	})
}

func (a *App) helpSections() []views.HelpSection {
	var sections []views.HelpSection
	for _, page := range []string{pageChats, pageAuth} {
		var entries []views.HelpEntry
		for _, h := range a.registry.Hints(page) {
			entries = append(entries, views.HelpEntry{Key: h.Key, Description: h.Description})
		}
		sections = append(sections, views.HelpSection{Title: "Keys: " + page, Entries: entries})
	}
	cmds := views.HelpSection{Title: "Commands"}
	for _, c := range Commands {
		cmds.Entries = append(cmds.Entries, views.HelpEntry{Key: c.Usage, Description: c.Description})
	}
	return append(sections, cmds)
}

func (a *App) setupCallbacks() {
	a.composer.SetOnSend(func(text string) {
		a.do("send message", func(ctx context.Context) error {
			return a.actions.Send(ctx, text)
		})
	})
	a.composer.SetOnCancel(func() { a.app.SetFocus(a.chatList) })

	a.prompt.SetOnSubmit(func(text string) {
		a.hidePrompt()
		a.runCommand(text)
	})
	a.prompt.SetOnCancel(a.hidePrompt)
}

func (a *App) setupLayout() {
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	chats := tview.NewFlex().
		AddItem(a.chatList, 0, 2, true).
		AddItem(right, 0, 3, false)

	a.pages.AddPage(pageChats, chats, true, true)
	a.pages.AddPage(pageAuth, a.qrView, true, false)
	a.pages.AddPage(pageHelp, a.helpView, true, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.info, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.menu, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.menu.Update(a.registry.Hints(pageChats))

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Text inputs keep every key; they handle Enter and Esc themselves.
		if a.typing() {
			return event
		}
		page, _ := a.pages.GetFrontPage()
		if a.registry.HandleEvent(page, event) {
			return nil
		}
		return event
	})
}

func (a *App) typing() bool {
	switch a.app.GetFocus() {
	case a.composer, a.prompt:
		return true
	}
	return false
}

func (a *App) openSelected() {
	if a.app.GetFocus() != a.chatList {
		a.app.SetFocus(a.chatList)
		return
	}
	id := a.chatList.SelectedChat()
	if id == "" {
		return
	}
	a.do("open conversation", func(ctx context.Context) error {
		return a.actions.SelectConversation(ctx, id)
	})
	a.app.SetFocus(a.composer)
}

func (a *App) togglePane() {
	if a.app.GetFocus() == a.chatList {
		a.app.SetFocus(a.msgView)
		return
	}
	a.app.SetFocus(a.chatList)
}

func (a *App) switchTo(page string) {
	if front, _ := a.pages.GetFrontPage(); front != pageHelp {
		a.lastPage = front
	}
	a.pages.SwitchToPage(page)
	a.menu.Update(a.registry.Hints(page))
	switch page {
	case pageChats:
		a.app.SetFocus(a.chatList)
	case pageAuth:
		a.app.SetFocus(a.qrView)
	case pageHelp:
		a.app.SetFocus(a.helpView)
	}
}

func (a *App) showPrompt() {
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	page, _ := a.pages.GetFrontPage()
	a.switchTo(page)
}

func (a *App) runCommand(input string) {
	cmd := ParseCommand(input)
	switch cmd.Name {
	case "help":
		a.switchTo(pageHelp)
		return
	case "quit":
		a.Stop()
		return
	}
	go func() {
		err := Execute(a.ctx, a.actions, cmd)
		switch {
		case err == nil:
			if cmd.Name == "phone" {
				a.app.QueueUpdateDraw(func() { a.info.SetPhone(a.actions.Identity()) })
			}
		case IsUsage(err):
			a.Notify(err.Error(), view.LevelWarning)
		default:
			a.logger.Debug("command failed", zap.String("command", cmd.Name), zap.Error(err))
		}
	}()
}

// do runs a controller action off the UI goroutine. The controller has
// already reported failures to the presenter.
func (a *App) do(action string, fn func(ctx context.Context) error) {
	go func() {
		if err := fn(a.ctx); err != nil {
			a.logger.Debug(action+" failed", zap.Error(err))
		}
	}()
}

// RenderConversationList implements view.Presenter.
func (a *App) RenderConversationList(items []view.ChatItem) {
	a.app.QueueUpdateDraw(func() {
		a.chatList.Update(items)
	})
}

// RenderMessages implements view.Presenter.
func (a *App) RenderMessages(list view.MessageList) {
	a.app.QueueUpdateDraw(func() {
		if list.ConversationID == "" {
			a.msgView.Reset()
			return
		}
		a.msgView.Update(list)
	})
}

// ShowQRImage implements view.Presenter.
func (a *App) ShowQRImage(qr model.QRImage) {
	a.app.QueueUpdateDraw(func() {
		a.qrView.ShowQR(qr)
		a.switchTo(pageAuth)
	})
}

// ShowLoggedIn implements view.Presenter.
func (a *App) ShowLoggedIn() {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetLoggedIn(true)
		if page, _ := a.pages.GetFrontPage(); page == pageAuth {
			a.switchTo(pageChats)
		}
	})
}

// ShowLoggedOut implements view.Presenter.
func (a *App) ShowLoggedOut() {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetLoggedIn(false)
		if a.actions != nil && a.actions.Identity() == "" {
			a.qrView.ShowMessage("No phone number set. Enter :phone <number> to begin.")
		} else {
			a.qrView.ShowMessage("Not linked. Press g for a QR code or :start to start the session.")
		}
		if page, _ := a.pages.GetFrontPage(); page != pageHelp {
			a.switchTo(pageAuth)
		}
	})
}

// ShowSessionInfo implements view.Presenter.
func (a *App) ShowSessionInfo(info status.Info) {
	a.app.QueueUpdateDraw(func() {
		a.info.Update(info)
		a.statusBar.SetStatus(info.Status)
	})
}

// Notify implements view.Presenter.
func (a *App) Notify(msg string, level view.Level) {
	a.app.QueueUpdateDraw(func() {
		fm := a.flash.Set(msg, level)
		a.flashBar.Update(&fm)
	})
}

// Run starts the TUI application and blocks until it stops.
func (a *App) Run() error {
	go a.tick()
	return a.app.Run()
}

// tick expires notifications and keeps the clock current.
func (a *App) tick() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.flashBar.Update(a.flash.Current())
				a.statusBar.Tick()
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
