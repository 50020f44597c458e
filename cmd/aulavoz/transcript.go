package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/aulavoz/internal/bus"
	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/notify"
	"github.com/leonardotrapani/aulavoz/internal/render"
	"github.com/leonardotrapani/aulavoz/internal/session"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
	"github.com/leonardotrapani/aulavoz/internal/transcriber"
	"github.com/leonardotrapani/aulavoz/internal/transcript"
)

func transcriptCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Print the daemon's transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, body, err := bus.Request(bus.CmdTranscript)
			if err != nil {
				return fmt.Errorf("failed to fetch transcript: %w", err)
			}
			if kind != "TRANSCRIPT" {
				return fmt.Errorf("unexpected reply %q", kind)
			}
			var segs []transcript.LabeledSegment
			if err := json.Unmarshal([]byte(body), &segs); err != nil {
				return fmt.Errorf("failed to decode transcript: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				return writeTranscript(w, format, segs, cfg)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTranscript(w io.Writer, format string, segs []transcript.LabeledSegment, cfg *config.Config) error {
	cc := cfg.ToClassifierConfig()
	switch format {
	case "text":
		render.NewTerminal(w, cfg.ToRenderOptions(), cc).Print(segs)
	case "markdown", "md":
		_, err := io.WriteString(w, transcript.Markdown(segs, cc.Keywords))
		return err
	case "html":
		_, err := io.WriteString(w, transcript.HTML(segs, cc.Keywords, cc.ProfessorColor))
		return err
	default:
		return fmt.Errorf("unknown format %q (text, markdown, html)", format)
	}
	return nil
}

func replayCmd() *cobra.Command {
	var format, output, logLevel string

	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a session over a scripted recognition stream",
		Long: `Plays a YAML script of recognition events through the same classifier and
session logic the daemon uses. Useful to tune keywords and pause settings
without a microphone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			script, err := transcriber.LoadScript(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			segs, err := runReplay(ctx, script, cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if format == "" {
				return nil
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				return writeTranscript(w, format, segs, cfg)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "print the final transcript in this format (text, markdown, html)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final transcript to a file")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")
	return cmd
}

// runReplay plays script live to out and returns the resulting transcript.
func runReplay(ctx context.Context, script *transcriber.Script, cfg *config.Config, out io.Writer) ([]transcript.LabeledSegment, error) {
	cc := cfg.ToClassifierConfig()
	source := transcriber.NewReplaySource(script, nil)
	presenter := render.NewTerminal(out, cfg.ToRenderOptions(), cc)
	ctl := session.New(source, speaker.NewClassifier(cc), presenter,
		session.WithRestartDelay(cfg.Transcription.RestartDelay),
		session.WithNotifier(notify.Nop{}),
	)

	if err := ctl.Start(ctx); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case <-source.Done():
			break wait
		case <-ctx.Done():
			break wait
		case <-ticker.C:
			if !ctl.Status().Active() {
				break wait
			}
		}
	}

	if err := ctl.Close(); err != nil {
		return nil, err
	}
	return ctl.Transcript(), nil
}
