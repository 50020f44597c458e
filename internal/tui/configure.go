package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leonardotrapani/aulavoz/internal/config"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionKeywords      ConfigSection = "keywords"
	SectionColor         ConfigSection = "color"
	SectionTranscription ConfigSection = "transcription"
	SectionProviders     ConfigSection = "providers"
	SectionClassifier    ConfigSection = "classifier"
	SectionDisplay       ConfigSection = "display"
	SectionNotifications ConfigSection = "notifications"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run opens the configuration menu on a copy of existing. The returned config
// is only set when the user saved.
func Run(existing *config.Config) (*ConfigureResult, error) {
	cfg := config.DefaultConfig()
	if existing != nil {
		cfg = existing.Clone()
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Println(StyleError.Render("Configuration is not valid:"))
				fmt.Println(StyleMuted.Render(err.Error()))
				pause()
				continue
			}
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionKeywords:
			_ = editKeywords(cfg)
		case SectionColor:
			_ = editProfessorColor(cfg)
		case SectionTranscription:
			_ = editTranscription(cfg)
		case SectionProviders:
			_ = editProviders(cfg)
		case SectionClassifier:
			_ = editClassifier(cfg)
		case SectionDisplay:
			_ = editDisplay(cfg)
		case SectionNotifications:
			_ = editNotifications(cfg)
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(formatKeywordsLabel(cfg), SectionKeywords),
		huh.NewOption(formatColorLabel(cfg), SectionColor),
		huh.NewOption(formatTranscriptionLabel(cfg), SectionTranscription),
		huh.NewOption("API Keys", SectionProviders),
		huh.NewOption("Speaker Detection", SectionClassifier),
		huh.NewOption("Display", SectionDisplay),
		huh.NewOption("Notifications", SectionNotifications),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func pause() {
	var ok bool
	_ = huh.NewForm(
		huh.NewGroup(huh.NewConfirm().Title("Back to menu").Affirmative("OK").Negative("").Value(&ok)),
	).WithTheme(getTheme()).Run()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ColorError)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
