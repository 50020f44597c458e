package tui

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/language"
	"github.com/leonardotrapani/aulavoz/internal/provider"
)

const otherLanguage = "other"

// editTranscription picks provider, model and recognition locale
func editTranscription(cfg *config.Config) error {
	var providerOptions []huh.Option[string]
	for _, name := range allProviders() {
		providerOptions = append(providerOptions, huh.NewOption(getProviderDisplayName(name), name))
	}

	selectedProvider := cfg.Transcription.Provider
	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Provider").
				Description(fmt.Sprintf("Currently: %s/%s", cfg.Transcription.Provider, cfg.Transcription.Model)).
				Options(providerOptions...).
				Value(&selectedProvider),
		),
	).WithTheme(getTheme())

	if err := providerForm.Run(); err != nil {
		return err
	}

	modelOptions := getTranscriptionModelOptions(selectedProvider)
	selectedModel := cfg.Transcription.Model
	if provider.FindModel(selectedProvider, selectedModel) == nil {
		if p := provider.GetProvider(selectedProvider); p != nil {
			selectedModel = p.DefaultModel()
		}
	}

	selectedLanguage := cfg.Transcription.Language
	customLanguage := ""
	if !slices.Contains(language.Suggestions(), selectedLanguage) {
		customLanguage = selectedLanguage
		selectedLanguage = otherLanguage
	}

	chunk := cfg.Transcription.ChunkDuration.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Model").
				Options(modelOptions...).
				Value(&selectedModel),
			huh.NewSelect[string]().
				Title("Language").
				Description("Recognition locale").
				Options(getLanguageOptions()...).
				Filtering(true).
				Value(&selectedLanguage),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Locale").
				Description("BCP 47 tag such as es-CL or ca-ES").
				Value(&customLanguage).
				Validate(func(s string) error {
					if !language.IsValid(s) {
						return fmt.Errorf("unknown locale %q", s)
					}
					return nil
				}),
		).WithHideFunc(func() bool { return selectedLanguage != otherLanguage }),
		huh.NewGroup(
			huh.NewInput().
				Title("Chunk Duration").
				Description("Audio sent per Whisper request").
				Value(&chunk).
				Validate(validateDuration),
		).WithHideFunc(func() bool { return !isChunked(selectedProvider, selectedModel) }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Provider = selectedProvider
	cfg.Transcription.Model = selectedModel
	if selectedLanguage == otherLanguage {
		selectedLanguage = customLanguage
	}
	if l, err := language.Parse(selectedLanguage); err == nil {
		cfg.Transcription.Language = l.Code
	}
	if d, err := time.ParseDuration(chunk); err == nil && d > 0 {
		cfg.Transcription.ChunkDuration = d
	}

	if m := provider.FindModel(selectedProvider, selectedModel); m != nil && !m.SupportsLanguage(language.BaseCode(cfg.Transcription.Language)) {
		fmt.Println(StyleWarning.Render(fmt.Sprintf("%s does not list %s as supported.", m.Name, language.Label(cfg.Transcription.Language))))
	}

	if p := provider.GetProvider(selectedProvider); p != nil && p.RequiresAPIKey() {
		if pc := cfg.Providers[selectedProvider]; pc.APIKey == "" {
			if key, err := inputAPIKey(selectedProvider); err == nil && key != "" {
				if cfg.Providers == nil {
					cfg.Providers = make(map[string]provider.ProviderConfig)
				}
				cfg.Providers[selectedProvider] = provider.ProviderConfig{APIKey: key}
			}
		}
	}
	return nil
}

func isChunked(providerName, modelID string) bool {
	m := provider.FindModel(providerName, modelID)
	return m != nil && !m.Streaming
}

func getTranscriptionModelOptions(providerName string) []huh.Option[string] {
	p := provider.GetProvider(providerName)
	if p == nil {
		return []huh.Option[string]{}
	}

	var options []huh.Option[string]
	for _, m := range p.Models() {
		label := fmt.Sprintf("%s - %s", m.Name, m.Description)
		if m.Streaming {
			label += " [live]"
		} else {
			label += " [chunked]"
		}
		if m.ID == p.DefaultModel() {
			label += " (recommended)"
		}
		options = append(options, huh.NewOption(label, m.ID))
	}
	return options
}

func getLanguageOptions() []huh.Option[string] {
	var options []huh.Option[string]
	for _, code := range language.Suggestions() {
		options = append(options, huh.NewOption(language.Label(code), code))
	}
	return append(options, huh.NewOption("Other...", otherLanguage))
}
