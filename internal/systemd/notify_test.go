package systemd

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/stretchr/testify/assert"
)

func newTestNotifier(send func(bool, string) (bool, error)) *Notifier {
	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.send = send
	return n
}

func TestNotifierSendsStates(t *testing.T) {
	var got []string
	n := newTestNotifier(func(_ bool, state string) (bool, error) {
		got = append(got, state)
		return true, nil
	})

	assert.True(t, n.Status("serving"))
	assert.True(t, n.Ready())
	assert.True(t, n.Stopping())
	assert.Equal(t, []string{"STATUS=serving", daemon.SdNotifyReady, daemon.SdNotifyStopping}, got)
}

func TestNotifierError(t *testing.T) {
	n := newTestNotifier(func(bool, string) (bool, error) {
		return false, errors.New("socket gone")
	})
	assert.False(t, n.Ready())
}

func TestNotifierOutsideSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, n.Ready())
}
