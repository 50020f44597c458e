package notify

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		want Notifier
	}{
		{"desktop", Desktop{}},
		{"log", Log{}},
		{"none", Nop{}},
		{"", Log{}},
	}
	for _, tt := range tests {
		if got := New(tt.kind); got != tt.want {
			t.Errorf("New(%q) = %T, want %T", tt.kind, got, tt.want)
		}
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	prev := log.StandardLogger().Out
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	n := Log{}

	n.ListeningChanged(true)
	if !bytes.Contains(buf.Bytes(), []byte("listening started")) {
		t.Errorf("expected start message, got %q", buf.String())
	}

	buf.Reset()
	n.ListeningChanged(false)
	if !bytes.Contains(buf.Bytes(), []byte("listening stopped")) {
		t.Errorf("expected stop message, got %q", buf.String())
	}

	buf.Reset()
	n.Error("no microphone")
	if !bytes.Contains(buf.Bytes(), []byte("no microphone")) {
		t.Errorf("expected error message, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	n.ListeningChanged(true)
	n.Error("ignored")
}
