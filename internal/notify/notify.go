package notify

import (
	"fmt"
	"os/exec"

	log "github.com/sirupsen/logrus"
)

type Notifier interface {
	ListeningChanged(on bool)
	Error(msg string)
}

// New returns the notifier for a configured type: "desktop", "log" or "none".
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "none":
		return Nop{}
	default:
		return Log{}
	}
}

type Desktop struct{}

func (Desktop) ListeningChanged(on bool) {
	state := "Stopped"
	if on {
		state = "Started"
	}
	send("-a", "aulavoz", fmt.Sprintf("aulavoz: %s listening", state))
}

func (Desktop) Error(msg string) {
	send("-a", "aulavoz", "-u", "critical", "aulavoz", msg)
}

func send(args ...string) {
	if err := exec.Command("notify-send", args...).Run(); err != nil {
		log.Warnf("Failed to send notification: %v", err)
	}
}

// Log reports session changes through the logger.
type Log struct{}

func (Log) ListeningChanged(on bool) {
	if on {
		log.Info("Notify: listening started")
		return
	}
	log.Info("Notify: listening stopped")
}

func (Log) Error(msg string) {
	log.Errorf("Notify: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) ListeningChanged(on bool) {}
func (Nop) Error(msg string)         {}
