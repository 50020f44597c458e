package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/leonardotrapani/aulavoz/internal/bus"
	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/deps"
	"github.com/leonardotrapani/aulavoz/internal/provider"
	"github.com/leonardotrapani/aulavoz/internal/recording"
	"github.com/leonardotrapani/aulavoz/internal/tui"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, credentials and the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			audio := func() error { return recording.CheckPipeWireAvailable(cmd.Context()) }
			if problems := runDoctor(cmd.OutOrStdout(), cfg, deps.CheckAll(), audio); problems > 0 {
				return fmt.Errorf("%d problem(s) found", problems)
			}
			return nil
		},
	}
}

// runDoctor prints a report and returns the number of blocking problems.
// audio is only consulted once every required tool is installed.
func runDoctor(w io.Writer, cfg *config.Config, tools []deps.Status, audio func() error) int {
	problems := 0
	ok := func(format string, a ...any) { fmt.Fprintln(w, tui.StyleSuccess.Render("ok   ")+fmt.Sprintf(format, a...)) }
	warn := func(format string, a ...any) { fmt.Fprintln(w, tui.StyleWarning.Render("warn ")+fmt.Sprintf(format, a...)) }
	fail := func(format string, a ...any) {
		problems++
		fmt.Fprintln(w, tui.StyleError.Render("fail ")+fmt.Sprintf(format, a...))
	}

	fmt.Fprintln(w, tui.StyleLabel.Render("Tools"))
	for _, s := range tools {
		switch {
		case s.Installed && s.Version != "":
			ok("%s (%s)", s.Tool.Name, s.Version)
		case s.Installed:
			ok("%s at %s", s.Tool.Name, s.Path)
		case s.Tool.Required:
			fail("%s not found: needed for %s", s.Tool.Name, s.Tool.Purpose)
		default:
			warn("%s not found: %s unavailable", s.Tool.Name, s.Tool.Purpose)
		}
	}

	if len(deps.Missing(tools)) == 0 {
		if err := audio(); err != nil {
			fail("%v", err)
		} else {
			ok("PipeWire reachable")
		}
	}

	fmt.Fprintln(w, tui.StyleLabel.Render("Configuration"))
	var merr *multierror.Error
	if err := cfg.Validate(); errors.As(err, &merr) {
		for _, e := range merr.Errors {
			fail("%v", e)
		}
	} else if err != nil {
		fail("%v", err)
	} else {
		ok("%s %s, language %s", cfg.Transcription.Provider, cfg.Transcription.Model, cfg.Transcription.Language)
	}

	p := provider.GetProvider(cfg.Transcription.Provider)
	switch {
	case p == nil:
	case !p.RequiresAPIKey():
		ok("%s needs no API key", p.Name())
	case cfg.ToTranscriberConfig().APIKey == "":
		fail("no API key for %s (run 'aulavoz configure' or set %s)", p.Name(), provider.EnvVarForProvider(p.Name()))
	default:
		ok("API key for %s configured", p.Name())
	}

	fmt.Fprintln(w, tui.StyleLabel.Render("Daemon"))
	if _, body, err := bus.Request(bus.CmdStatus); err != nil {
		warn("not running (start it with 'aulavoz serve')")
	} else {
		ok("%s", body)
	}
	return problems
}
