// Package systemd reports service state to the systemd supervisor.
package systemd

import (
	"log/slog"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify messages. Outside systemd (NOTIFY_SOCKET unset)
// every call is a no-op.
type Notifier struct {
	logger *slog.Logger
	send   func(unsetEnvironment bool, state string) (bool, error)
}

// NewNotifier creates a Notifier that logs delivery failures to logger.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger, send: daemon.SdNotify}
}

// Ready tells systemd the service finished starting up.
func (n *Notifier) Ready() bool {
	return n.notify(daemon.SdNotifyReady)
}

// Stopping tells systemd the service is shutting down.
func (n *Notifier) Stopping() bool {
	return n.notify(daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(status string) bool {
	return n.notify("STATUS=" + status)
}

func (n *Notifier) notify(state string) bool {
	sent, err := n.send(false, state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return false
	}
	if sent {
		n.logger.Debug("sd_notify sent", "state", state)
	}
	return sent
}
