package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/waha-client/internal/status"
)

type fakeActions struct {
	calls    []string
	identity string
	err      error
}

func (f *fakeActions) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeActions) Identity() string { return f.identity }
func (f *fakeActions) SetIdentity(phone string) error {
	f.identity = phone
	return f.record("phone " + phone)
}
func (f *fakeActions) CheckStatus(context.Context) (status.Info, error) {
	return status.Info{}, f.record("status")
}
func (f *fakeActions) CreateSession(context.Context) error { return f.record("create") }
func (f *fakeActions) StartSession(context.Context) error  { return f.record("start") }
func (f *fakeActions) StopSession(context.Context) error   { return f.record("stop") }
func (f *fakeActions) Logout(context.Context) error        { return f.record("logout") }
func (f *fakeActions) DeleteSession(context.Context) error { return f.record("delete") }
func (f *fakeActions) GenerateQR(context.Context) error    { return f.record("qr") }
func (f *fakeActions) Refresh(context.Context) error       { return f.record("refresh") }
func (f *fakeActions) SelectConversation(_ context.Context, id string) error {
	return f.record("open " + id)
}
func (f *fakeActions) Send(_ context.Context, text string) error { return f.record("send " + text) }

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"phone 5585999990000", Command{Name: "phone", Args: "5585999990000"}},
		{":Phone   +55 85 99999-0000 ", Command{Name: "phone", Args: "+55 85 99999-0000"}},
		{"q", Command{Name: "quit"}},
		{"login", Command{Name: "qr"}},
		{"chat 123@g.us", Command{Name: "open", Args: "123@g.us"}},
		{"  ", Command{}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseCommand(tc.in))
		})
	}
}

func TestExecuteDispatch(t *testing.T) {
	f := &fakeActions{}
	ctx := context.Background()
	for _, in := range []string{"create", "start", "stop", "qr", "logout", "delete", "status", "refresh", "phone 5585", "open a@c.us"} {
		require.NoError(t, Execute(ctx, f, ParseCommand(in)), in)
	}
	assert.Equal(t, []string{"create", "start", "stop", "qr", "logout", "delete", "status", "refresh", "phone 5585", "open a@c.us"}, f.calls)
	assert.Equal(t, "5585", f.identity)
}

func TestExecuteUsageErrors(t *testing.T) {
	f := &fakeActions{}
	for _, in := range []string{"phone", "open", "", "bogus"} {
		err := Execute(context.Background(), f, ParseCommand(in))
		require.Error(t, err, in)
		assert.True(t, IsUsage(err), in)
	}
	assert.Empty(t, f.calls)
}

func TestExecutePassesActionErrors(t *testing.T) {
	boom := errors.New("gateway down")
	f := &fakeActions{err: boom}
	err := Execute(context.Background(), f, ParseCommand("start"))
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsUsage(err))
}

func TestEveryCommandIsHandled(t *testing.T) {
	f := &fakeActions{}
	for _, c := range Commands {
		if c.Name == "help" || c.Name == "quit" {
			continue
		}
		err := Execute(context.Background(), f, Command{Name: c.Name, Args: "x"})
		assert.False(t, IsUsage(err), c.Name)
	}
}
