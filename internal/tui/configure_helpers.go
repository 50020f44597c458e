package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/language"
)

const maxLabelKeywords = 3

// formatKeywordsLabel shows the first few keywords in the menu
func formatKeywordsLabel(cfg *config.Config) string {
	kws := cfg.Classifier.Keywords
	if len(kws) == 0 {
		return "Professor Keywords (none, fallback in use)"
	}
	shown := kws
	if len(shown) > maxLabelKeywords {
		shown = shown[:maxLabelKeywords]
	}
	label := strings.Join(shown, ", ")
	if extra := len(kws) - len(shown); extra > 0 {
		label += fmt.Sprintf(" +%d", extra)
	}
	return fmt.Sprintf("Professor Keywords (%s)", label)
}

func formatColorLabel(cfg *config.Config) string {
	return fmt.Sprintf("Professor Color (%s)", cfg.Classifier.ProfessorColor)
}

func formatTranscriptionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Transcription (%s/%s, %s)", cfg.Transcription.Provider, cfg.Transcription.Model, cfg.Transcription.Language)
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration format (use '2s', '1500ms', etc.)")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateKeywordList(s string) error {
	for _, kw := range strings.Split(s, ",") {
		if strings.TrimSpace(kw) != "" {
			return nil
		}
	}
	return fmt.Errorf("enter at least one keyword")
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()

	fmt.Printf("  %s %s\n", StyleLabel.Render("Keywords:"), strings.Join(cfg.Classifier.Keywords, ", "))
	fmt.Printf("  %s %s\n", StyleLabel.Render("Professor color:"), swatch(cfg.Classifier.ProfessorColor))
	fmt.Printf("  %s pause %v, %d words to switch, %d students, %d turns\n",
		StyleLabel.Render("Speaker detection:"),
		cfg.Classifier.PauseThreshold, cfg.Classifier.MinWordsForSwitch,
		cfg.Classifier.Speakers, cfg.Classifier.TurnLimit)
	fmt.Printf("  %s %s (%s)\n", StyleLabel.Render("Transcription:"), cfg.Transcription.Provider, cfg.Transcription.Model)
	fmt.Printf("  %s %s\n", StyleLabel.Render("Language:"), language.Label(cfg.Transcription.Language))

	var providers []string
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	if len(providers) > 0 {
		fmt.Printf("  %s %s\n", StyleLabel.Render("API keys:"), strings.Join(providers, ", "))
	}

	if cfg.Notifications.Enabled {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Notifications:"), cfg.Notifications.Type)
	} else {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Notifications:"), "disabled")
	}
	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Affirmative("Save").
				Negative("Back").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
