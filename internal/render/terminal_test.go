package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leonardotrapani/aulavoz/internal/speaker"
	"github.com/leonardotrapani/aulavoz/internal/transcript"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func newTestTerminal(opts Options) (*Terminal, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewTerminal(&buf, opts, speaker.DefaultConfig(), termenv.WithProfile(termenv.Ascii)), &buf
}

func TestTerminal_Append(t *testing.T) {
	term, buf := newTestTerminal(DefaultOptions())

	term.Append(transcript.LabeledSegment{Text: "el examen es el lunes", Speaker: 0, Timestamp: "10:00:00", Final: true})
	term.Append(transcript.LabeledSegment{Text: "gracias", Speaker: 3, Timestamp: "10:00:04", Final: true})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"[10:00:00] PROFESSOR: el examen es el lunes",
		"[10:00:04] Student 3: gracias",
	}, lines)
}

func TestTerminal_NoTimestamps(t *testing.T) {
	opts := DefaultOptions()
	opts.Timestamps = false
	term, buf := newTestTerminal(opts)

	term.Append(transcript.LabeledSegment{Text: "hola", Speaker: 1, Timestamp: "10:00:00"})
	require.Equal(t, "Student 1: hola\n", buf.String())
}

func TestTerminal_LiveIsReplaced(t *testing.T) {
	term, buf := newTestTerminal(DefaultOptions())

	term.Live(transcript.LabeledSegment{Text: "hola a", Speaker: 0, Timestamp: "10:00:00"})
	require.Contains(t, buf.String(), "hola a ...")
	require.NotContains(t, buf.String(), "\n")

	buf.Reset()
	term.Append(transcript.LabeledSegment{Text: "hola a todos", Speaker: 0, Timestamp: "10:00:01", Final: true})
	out := buf.String()
	require.True(t, strings.HasPrefix(out, termenv.CSI+termenv.EraseEntireLineSeq), "live line is erased first: %q", out)
	require.True(t, strings.HasSuffix(out, "PROFESSOR: hola a todos\n"))
}

func TestTerminal_HiddenLive(t *testing.T) {
	opts := DefaultOptions()
	opts.ShowLive = false
	term, buf := newTestTerminal(opts)

	term.Live(transcript.LabeledSegment{Text: "nada"})
	term.ClearLive()
	require.Empty(t, buf.String())
}

func TestTerminal_ClearLiveWithoutLiveLine(t *testing.T) {
	term, buf := newTestTerminal(DefaultOptions())
	term.ClearLive()
	require.Empty(t, buf.String())
}

func TestTerminal_ErrorAndCleared(t *testing.T) {
	term, buf := newTestTerminal(DefaultOptions())

	term.Error("No microphone detected.")
	require.Contains(t, buf.String(), "No microphone detected.\n")

	term.Cleared()
	require.Contains(t, buf.String(), "-- transcript cleared --")
}

func TestTerminal_Print(t *testing.T) {
	term, buf := newTestTerminal(DefaultOptions())
	term.SetConfig(speaker.Config{Keywords: []string{"tarea"}})

	term.Print([]transcript.LabeledSegment{
		{Text: "la tarea", Speaker: 0, Timestamp: "09:00:00"},
		{Text: "ok", Speaker: 2, Timestamp: "09:00:03"},
	})
	require.Equal(t, "[09:00:00] PROFESSOR: la tarea\n[09:00:03] Student 2: ok\n", buf.String())
}
