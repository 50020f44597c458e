package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leonardotrapani/aulavoz/internal/bus"
	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/daemon"
	"github.com/leonardotrapani/aulavoz/internal/tui"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "aulavoz",
	Short:        "Live classroom transcription with professor and student labels",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			return os.Setenv(config.EnvConfigPath, configPath)
		}
		return nil
	},
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/aulavoz/config.toml)")

	rootCmd.AddCommand(
		serveCmd(),
		busCmd("toggle", "Start or stop listening", bus.CmdToggle),
		busCmd("stop-session", "Stop listening", bus.CmdStop),
		busCmd("clear", "Clear the transcript", bus.CmdClear),
		busCmd("status", "Get current session status", bus.CmdStatus),
		busCmd("version", "Get protocol and daemon version", bus.CmdVersion),
		busCmd("quit", "Stop the daemon", bus.CmdQuit),
		transcriptCmd(),
		keywordsCmd(),
		colorCmd(),
		configureCmd(),
		replayCmd(),
		doctorCmd(),
	)
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func serveCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon; the transcript is printed to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			mgr, err := config.NewManager("")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			daemon.Version = version
			return daemon.New(mgr).Run()
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func busCmd(use, short string, c byte) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(c)
			if err != nil {
				return fmt.Errorf("failed to reach daemon (is 'aulavoz serve' running?): %w", err)
			}
			fmt.Print(resp)
			if strings.HasPrefix(resp, "ERR") {
				return fmt.Errorf("%s failed", use)
			}
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration",
		Long: `Interactive configuration for aulavoz.
This will guide you through setting up:
- Professor keywords and color
- Transcription provider, model, language and API key
- Speaker detection tuning
- Display and notification preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			result, err := tui.Run(cfg)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if result.Cancelled {
				fmt.Println("Configuration cancelled.")
				return nil
			}

			if err := config.Save(result.Config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Println()
			fmt.Println("Configuration saved. A running daemon picks it up automatically.")
			return nil
		},
	}
}
