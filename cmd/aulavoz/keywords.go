package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/aulavoz/internal/config"
)

// editConfig loads the config, applies fn and saves it when fn reports a
// change. The daemon reloads the file on its own.
func editConfig(fn func(*config.Config) (bool, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	changed, err := fn(cfg)
	if err != nil || !changed {
		return err
	}
	return config.Save(cfg)
}

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage the phrases that mark the professor",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List keywords",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				printKeywords(cmd.OutOrStdout(), cfg.ToClassifierConfig().Keywords)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <keyword>...",
			Short: "Add keywords",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfig(func(cfg *config.Config) (bool, error) {
					changed := false
					for _, kw := range args {
						added, err := cfg.AddKeyword(kw)
						if err != nil {
							return false, err
						}
						if !added {
							fmt.Fprintf(cmd.OutOrStdout(), "%q already present\n", strings.TrimSpace(kw))
						}
						changed = changed || added
					}
					return changed, nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <keyword>...",
			Short: "Remove keywords",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfig(func(cfg *config.Config) (bool, error) {
					changed := false
					for _, kw := range args {
						if !cfg.RemoveKeyword(kw) {
							fmt.Fprintf(cmd.OutOrStdout(), "%q not found\n", strings.TrimSpace(kw))
							continue
						}
						changed = true
					}
					return changed, nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <comma separated list>",
			Short: "Replace every keyword",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfig(func(cfg *config.Config) (bool, error) {
					cfg.SetKeywords(args[0])
					printKeywords(cmd.OutOrStdout(), cfg.Classifier.Keywords)
					return true, nil
				})
			},
		},
	)
	return cmd
}

func printKeywords(w io.Writer, keywords []string) {
	for _, kw := range keywords {
		fmt.Fprintln(w, kw)
	}
}

func colorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color [#rrggbb]",
		Short: "Show or set the professor's color",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Classifier.ProfessorColor)
				return nil
			}
			return editConfig(func(cfg *config.Config) (bool, error) {
				return true, cfg.SetProfessorColor(args[0])
			})
		},
	}
}
