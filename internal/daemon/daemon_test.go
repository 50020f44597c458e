package daemon

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/leonardotrapani/aulavoz/internal/bus"
	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/notify"
	"github.com/leonardotrapani/aulavoz/internal/provider"
	"github.com/leonardotrapani/aulavoz/internal/session"
	"github.com/leonardotrapani/aulavoz/internal/transcriber"
	"github.com/leonardotrapani/aulavoz/internal/transcript"
)

const lectureScript = `
events:
  - {at: 0s, text: "el examen es el lunes", final: true}
`

func newTestDaemon(t *testing.T, opts ...Option) *Daemon {
	t.Helper()

	runtimeDir, err := os.MkdirTemp("", "avd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(runtimeDir) })
	t.Setenv(bus.EnvRuntimeDir, runtimeDir)

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	cfg.Notifications.Type = "none"
	require.NoError(t, config.SaveFile(cfg, path))

	mgr, err := config.NewManager(path)
	require.NoError(t, err)

	opts = append([]Option{WithNotifier(notify.Nop{}), WithOutput(io.Discard)}, opts...)
	return New(mgr, opts...)
}

func replaySource(t *testing.T) transcriber.Source {
	t.Helper()
	script, err := transcriber.ParseScript([]byte(lectureScript))
	require.NoError(t, err)
	return transcriber.NewReplaySource(script, clock.New())
}

func TestDaemon_CommandsOverSocket(t *testing.T) {
	d := newTestDaemon(t, WithSource(replaySource(t)))

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run() }()

	require.Eventually(t, func() bool {
		_, err := bus.SendCommand(bus.CmdStatus)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "daemon failed to start")

	out, err := bus.SendCommand(bus.CmdToggle)
	require.NoError(t, err)
	require.Equal(t, "STATUS status=listening\n", out)

	var segs []transcript.LabeledSegment
	require.Eventually(t, func() bool {
		kind, body, err := bus.Request(bus.CmdTranscript)
		if err != nil || kind != "TRANSCRIPT" {
			return false
		}
		return json.Unmarshal([]byte(body), &segs) == nil && len(segs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "el examen es el lunes", segs[0].Text)
	require.Equal(t, 0, segs[0].Speaker)

	_, body, err := bus.Request(bus.CmdStatus)
	require.NoError(t, err)
	fields := bus.Fields(body)
	require.Equal(t, "1", fields["segments"])
	require.Equal(t, "0", fields["speaker"])
	require.NotEmpty(t, fields["session"])

	out, err = bus.SendCommand(bus.CmdClear)
	require.NoError(t, err)
	require.Equal(t, "OK cleared\n", out)

	out, err = bus.SendCommand(bus.CmdTranscript)
	require.NoError(t, err)
	require.Equal(t, "TRANSCRIPT []\n", out)

	out, err = bus.SendCommand(bus.CmdStop)
	require.NoError(t, err)
	require.Equal(t, "OK stopped\n", out)
	require.Equal(t, session.Idle, d.Controller().Status())

	out, err = bus.SendCommand(bus.CmdVersion)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "STATUS proto="+bus.ProtoVer))

	out, err = bus.SendCommand(bus.CmdQuit)
	require.NoError(t, err)
	require.Equal(t, "OK quitting\n", out)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not exit within timeout")
	}
}

func TestDaemon_SecondInstanceRefused(t *testing.T) {
	d := newTestDaemon(t, WithSource(replaySource(t)))
	require.NoError(t, bus.CreatePidFile())
	defer bus.RemovePidFile()

	require.ErrorContains(t, d.Run(), "already running")
}

func TestDaemon_UnavailableWithoutCredentials(t *testing.T) {
	t.Setenv(provider.EnvDeepgramKey, "")
	d := newTestDaemon(t)

	require.Equal(t, session.Unavailable, d.Controller().Status())
	reply := d.reply(bus.CmdToggle)
	require.True(t, strings.HasPrefix(reply, "ERR Speech recognition is not available"), reply)
	require.Contains(t, d.reply(bus.CmdStatus), "status=unavailable")
}

func TestDaemon_UnknownCommand(t *testing.T) {
	d := newTestDaemon(t, WithSource(replaySource(t)))
	require.Equal(t, "ERR unknown='z'\n", d.reply('z'))
}

func TestDaemon_ApplyConfigKeepsState(t *testing.T) {
	d := newTestDaemon(t, WithSource(replaySource(t)))

	cfg := config.DefaultConfig()
	cfg.SetKeywords("parcial")
	cfg.Classifier.TurnLimit = 3
	d.applyConfig(cfg)

	got := d.Controller().Classifier().Config()
	require.Equal(t, []string{"parcial"}, got.Keywords)
	require.Equal(t, 3, got.TurnLimit)
}
