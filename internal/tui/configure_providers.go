package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/aulavoz/internal/config"
	"github.com/leonardotrapani/aulavoz/internal/provider"
)

// providerDisplayNames maps provider IDs to human-readable names
var providerDisplayNames = map[string]string{
	provider.ProviderDeepgram: "Deepgram",
	provider.ProviderOpenAI:   "OpenAI",
}

func allProviders() []string {
	names := provider.ListProviders()
	sort.Strings(names)
	return names
}

// getProviderDisplayName returns the display name for a provider
func getProviderDisplayName(providerName string) string {
	if name, ok := providerDisplayNames[providerName]; ok {
		return name
	}
	return providerName
}

// maskAPIKey returns a masked version of an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// editProviders lets the user set one API key per provider
func editProviders(cfg *config.Config) error {
	for {
		var options []huh.Option[string]
		for _, name := range allProviders() {
			options = append(options, huh.NewOption(formatProviderOption(cfg, name), name))
		}
		options = append(options, huh.NewOption("Done", "back"))

		var selected string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("API Keys").
					Description("Keys are stored in the config file. Environment variables are used when unset.").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}
		if selected == "back" {
			return nil
		}

		apiKey, err := configureSingleProvider(cfg, selected)
		if err != nil || apiKey == "" {
			continue
		}
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]provider.ProviderConfig)
		}
		cfg.Providers[selected] = provider.ProviderConfig{APIKey: apiKey}
	}
}

// formatProviderOption formats a provider menu option with status
func formatProviderOption(cfg *config.Config, name string) string {
	status := "(not configured)"
	if pc, exists := cfg.Providers[name]; exists && pc.APIKey != "" {
		status = fmt.Sprintf("(%s)", maskAPIKey(pc.APIKey))
	}

	switch name {
	case provider.ProviderDeepgram:
		return fmt.Sprintf("Deepgram - live streaming %s", status)
	case provider.ProviderOpenAI:
		return fmt.Sprintf("OpenAI - Whisper chunks %s", status)
	default:
		return fmt.Sprintf("%s %s", name, status)
	}
}

// configureSingleProvider asks before replacing an existing key. Returns the
// new key, or "" when the user kept the current one.
func configureSingleProvider(cfg *config.Config, providerName string) (string, error) {
	if pc, exists := cfg.Providers[providerName]; exists && pc.APIKey != "" {
		var update bool
		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s API Key", getProviderDisplayName(providerName))).
					Description(fmt.Sprintf("Current: %s", maskAPIKey(pc.APIKey))).
					Affirmative("Update key").
					Negative("Keep current").
					Value(&update),
			),
		).WithTheme(getTheme())

		if err := confirmForm.Run(); err != nil {
			return "", err
		}
		if !update {
			return "", nil
		}
	}

	return inputAPIKey(providerName)
}

func inputAPIKey(providerName string) (string, error) {
	p := provider.GetProvider(providerName)
	displayName := getProviderDisplayName(providerName)

	var apiKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API Key", displayName)).
				Description(fmt.Sprintf("Enter your %s API key (or set %s)", displayName, provider.EnvVarForProvider(providerName))).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					return validateAPIKey(p, s)
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	return apiKey, nil
}

func validateAPIKey(p provider.Provider, key string) error {
	if key == "" {
		return fmt.Errorf("API key is required")
	}
	if p != nil && !p.ValidateAPIKey(key) {
		return fmt.Errorf("invalid API key format for %s", getProviderDisplayName(p.Name()))
	}
	return nil
}
