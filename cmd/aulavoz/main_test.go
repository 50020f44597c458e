package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/transcriber"
	"github.com/leonardotrapani/aulavoz/internal/transcript"
)

const classScript = `
events:
  - {at: 0s, text: "recuerden que el examen es el lunes", final: true}
  - {at: 20ms, text: "profe una", final: false}
  - {at: 40ms, text: "profe una pregunta", final: true}
  - {at: 60ms, text: "claro dime", final: true}
`

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(config.EnvConfigPath, path)
	return path
}

func TestRunReplay(t *testing.T) {
	script, err := transcriber.ParseScript([]byte(classScript))
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Display.Timestamps = false

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	segs, err := runReplay(ctx, script, cfg, &out)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	require.Equal(t, 0, segs[0].Speaker)
	require.Equal(t, "recuerden que el examen es el lunes", segs[0].Text)
	require.Contains(t, out.String(), "PROFESSOR: recuerden que el examen es el lunes")
}

func TestWriteTranscript(t *testing.T) {
	segs := []transcript.LabeledSegment{
		{Text: "la tarea es para el martes", Speaker: 0, Timestamp: "09:00:00", Final: true},
		{Text: "vale", Speaker: 1, Timestamp: "09:00:04", Final: true},
	}
	cfg := config.DefaultConfig()

	var md bytes.Buffer
	require.NoError(t, writeTranscript(&md, "markdown", segs, cfg))
	require.Contains(t, md.String(), "**PROFESSOR:** la **tarea** es para el martes")

	var html bytes.Buffer
	require.NoError(t, writeTranscript(&html, "html", segs, cfg))
	require.Contains(t, html.String(), cfg.Classifier.ProfessorColor)

	var text bytes.Buffer
	require.NoError(t, writeTranscript(&text, "text", segs, cfg))
	require.Contains(t, text.String(), "Student 1: vale")

	require.Error(t, writeTranscript(&text, "pdf", segs, cfg))
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := keywordsCmd()
	if args[0] == "color" {
		cmd = colorCmd()
		args = args[1:]
	}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestKeywordsCommands(t *testing.T) {
	useTempConfig(t)

	runCmd(t, "set", "examen, tarea")
	require.Equal(t, "examen\ntarea\n", runCmd(t, "list"))

	runCmd(t, "add", "Parcial")
	require.Contains(t, runCmd(t, "add", "EXAMEN"), "already present")
	require.Equal(t, "examen\ntarea\nparcial\n", runCmd(t, "list"))

	runCmd(t, "remove", "examen", "tarea", "parcial")
	require.Equal(t, "importante\n", runCmd(t, "list"))

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Empty(t, cfg.Classifier.Keywords)
}

func TestColorCommand(t *testing.T) {
	useTempConfig(t)

	require.Equal(t, "#e74c3c\n", runCmd(t, "color"))
	runCmd(t, "color", "#00AA55")
	require.Equal(t, "#00aa55\n", runCmd(t, "color"))

	cmd := colorCmd()
	cmd.SetArgs([]string{"green"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.ErrorIs(t, err, config.ErrInvalidColor)
	require.True(t, strings.Contains(runCmd(t, "color"), "#00aa55"))
}
