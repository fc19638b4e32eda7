package session

import (
	"fmt"
	"unicode/utf8"
)

// MaxNameLen bounds session names; they become directory names and URL
// path segments on the gateway.
const MaxNameLen = 64

// NameError reports why a session name was rejected.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid session name %q: %s", e.Name, e.Reason)
}

// ValidateName accepts ASCII letters, digits, '_' and '-', at most
// MaxNameLen long, not starting with '-'.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &NameError{Name: name, Reason: "empty"}
	case len(name) > MaxNameLen:
		return &NameError{Name: name, Reason: fmt.Sprintf("longer than %d characters", MaxNameLen)}
	case name[0] == '-':
		return &NameError{Name: name, Reason: "starts with '-'"}
	}
	for i := 0; i < len(name); {
		r, size := utf8.DecodeRuneInString(name[i:])
		if !nameRune(r) {
			return &NameError{Name: name, Reason: fmt.Sprintf("character %q at offset %d not allowed", r, i)}
		}
		i += size
	}
	return nil
}

func nameRune(r rune) bool {
	return r == '_' || r == '-' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}
