// Package jid interprets gateway chat and sender ids ("5511999999999@c.us",
// "1203630@g.us", "9876@lid") using whatsmeow's JID parser.
package jid

import (
	"regexp"
	"strings"

	"go.mau.fi/whatsmeow/types"
)

var phoneRegexp = regexp.MustCompile(`^[1-9]\d{9,14}$`)

// Parse splits id into its JID parts. Ids without "@" yield a JID with only
// User set.
func Parse(id string) types.JID {
	if !strings.Contains(id, "@") {
		return types.JID{User: id}
	}
	j, err := types.ParseJID(id)
	if err != nil {
		user, server, _ := strings.Cut(id, "@")
		return types.JID{User: user, Server: server}
	}
	return j
}

// LocalPart returns the part of id before "@", or id itself.
func LocalPart(id string) string {
	user, _, _ := strings.Cut(id, "@")
	return user
}

// IsGroup reports whether id lives on the group server.
func IsGroup(id string) bool {
	return Parse(id).Server == types.GroupServer
}

// PhoneNumber returns the local part of id when it looks like an E.164
// number (10 to 15 digits, no leading zero). Hidden (lid) and group ids are
// never treated as phone numbers.
func PhoneNumber(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	j := Parse(id)
	switch j.Server {
	case types.HiddenUserServer, types.GroupServer, types.BroadcastServer, types.NewsletterServer:
		return "", false
	}
	if !phoneRegexp.MatchString(j.User) {
		return "", false
	}
	return j.User, true
}
