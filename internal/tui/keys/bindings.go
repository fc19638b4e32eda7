// Package keys holds the TUI keybinding registry.
package keys

import "github.com/gdamore/tcell/v2"

// Action is one keybinding.
type Action struct {
	Name        string
	Key         tcell.Key
	Rune        rune
	Label       string
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Hint is a visible binding as shown in the menu bar.
type Hint struct {
	Key         string
	Description string
}

// Registry holds keybindings by scope, in registration order.
type Registry struct {
	global []*Action
	pages  map[string][]*Action
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string][]*Action)}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(a *Action) {
	r.global = append(r.global, a)
}

// AddPage registers a binding active on one page.
func (r *Registry) AddPage(page string, a *Action) {
	r.pages[page] = append(r.pages[page], a)
}

// Hints returns the visible bindings for page, page bindings first.
func (r *Registry) Hints(page string) []Hint {
	var hints []Hint
	for _, a := range append(append([]*Action{}, r.pages[page]...), r.global...) {
		if a.Visible {
			hints = append(hints, Hint{Key: a.label(), Description: a.Description})
		}
	}
	return hints
}

// HandleEvent runs the first binding matching ev. Page bindings shadow
// global ones. Returns true if a handler matched.
func (r *Registry) HandleEvent(page string, ev *tcell.EventKey) bool {
	for _, a := range r.pages[page] {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}

func (a *Action) label() string {
	if a.Label != "" {
		return a.Label
	}
	if a.Key == tcell.KeyRune {
		return string(a.Rune)
	}
	return tcell.KeyNames[a.Key]
}
