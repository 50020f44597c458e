package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
)

// editKeywords replaces the keyword list from a comma separated input
func editKeywords(cfg *config.Config) error {
	list := strings.Join(cfg.Classifier.Keywords, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Professor Keywords").
				Description("Comma separated. A segment containing one of these is attributed to the professor.").
				Value(&list).
				Validate(validateKeywordList),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.SetKeywords(list)
	return nil
}

func editProfessorColor(cfg *config.Config) error {
	color := cfg.Classifier.ProfessorColor

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Professor Color").
				DescriptionFunc(func() string {
					if config.IsHexColor(color) {
						return "Preview: " + swatch(color)
					}
					return "Hex color such as #e74c3c"
				}, &color).
				Placeholder(speaker.DefaultProfessorColor).
				Value(&color).
				Validate(func(s string) error {
					if !config.IsHexColor(strings.TrimSpace(s)) {
						return fmt.Errorf("must be a hex color like #e74c3c")
					}
					return nil
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	return cfg.SetProfessorColor(color)
}

// editClassifier tunes pause detection and turn rotation
func editClassifier(cfg *config.Config) error {
	pause := cfg.Classifier.PauseThreshold.String()
	minWords := strconv.Itoa(cfg.Classifier.MinWordsForSwitch)
	turnLimit := strconv.Itoa(cfg.Classifier.TurnLimit)
	speakers := cfg.Classifier.Speakers

	var speakerOptions []huh.Option[int]
	for n := 2; n <= 5; n++ {
		speakerOptions = append(speakerOptions, huh.NewOption(strconv.Itoa(n), n))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Pause Threshold").
				Description("Silence longer than this counts as a pause. Two pauses in a row pass the floor.").
				Placeholder(speaker.DefaultPauseThreshold.String()).
				Value(&pause).
				Validate(validateDuration),
			huh.NewInput().
				Title("Minimum Words").
				Description("Segments shorter than this never trigger a switch.").
				Value(&minWords).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Turn Limit").
				Description("Consecutive segments before the floor rotates anyway.").
				Value(&turnLimit).
				Validate(validatePositiveInt),
			huh.NewSelect[int]().
				Title("Students").
				Description("How many student labels to rotate through.").
				Options(speakerOptions...).
				Value(&speakers),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Classifier.PauseThreshold, _ = time.ParseDuration(strings.TrimSpace(pause))
	cfg.Classifier.MinWordsForSwitch, _ = strconv.Atoi(strings.TrimSpace(minWords))
	cfg.Classifier.TurnLimit, _ = strconv.Atoi(strings.TrimSpace(turnLimit))
	cfg.Classifier.Speakers = speakers
	return nil
}

func editDisplay(cfg *config.Config) error {
	var selected []string
	if cfg.Display.Timestamps {
		selected = append(selected, "timestamps")
	}
	if cfg.Display.Highlight {
		selected = append(selected, "highlight")
	}
	if cfg.Display.ShowLive {
		selected = append(selected, "live")
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Display").
				Options(
					huh.NewOption("Timestamps", "timestamps"),
					huh.NewOption("Highlight keywords", "highlight"),
					huh.NewOption("Show live (interim) line", "live"),
				).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Display = config.DisplayConfig{}
	for _, s := range selected {
		switch s {
		case "timestamps":
			cfg.Display.Timestamps = true
		case "highlight":
			cfg.Display.Highlight = true
		case "live":
			cfg.Display.ShowLive = true
		}
	}
	return nil
}
