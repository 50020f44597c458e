package transcriber

import (
	"fmt"
	"time"

	"github.com/leonardotrapani/aulavoz/internal/language"
	"github.com/leonardotrapani/aulavoz/internal/provider"
	"github.com/leonardotrapani/aulavoz/internal/recording"
	"github.com/sashabaranov/go-openai"
)

// Configuration for the recognition source
type Config struct {
	Provider      string
	APIKey        string
	Language      string
	Model         string
	Keywords      []string      // boosted or prompted so they are spelled consistently
	ChunkDuration time.Duration // batch providers only
}

func DefaultConfig() Config {
	return Config{
		Provider:      provider.ProviderDeepgram,
		Language:      language.Default,
		Model:         "nova-2",
		ChunkDuration: 5 * time.Second,
	}
}

// NewSource builds a microphone-backed Source for the configured provider.
// An unknown provider or a missing API key yields ErrCapabilityUnavailable.
func NewSource(cfg Config, rec recording.Config) (Source, error) {
	p := provider.GetProvider(cfg.Provider)
	if p == nil {
		return nil, fmt.Errorf("unsupported provider %q: %w", cfg.Provider, ErrCapabilityUnavailable)
	}
	if p.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key required (set %s): %w",
			cfg.Provider, provider.EnvVarForProvider(cfg.Provider), ErrCapabilityUnavailable)
	}
	model := provider.ModelOrDefault(cfg.Provider, cfg.Model)
	if model == nil {
		return nil, fmt.Errorf("%s has no usable model: %w", cfg.Provider, ErrCapabilityUnavailable)
	}
	if _, err := language.Parse(cfg.Language); err != nil {
		return nil, err
	}

	var factory AdapterFactory
	switch model.AdapterType {
	case provider.AdapterDeepgram:
		factory = func() StreamingAdapter {
			return NewDeepgramAdapter(model.Endpoint, cfg.APIKey, model.ID, cfg.Language, cfg.Keywords)
		}
	case provider.AdapterWhisper:
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = model.Endpoint.BaseURL + "/v1"
		factory = func() StreamingAdapter {
			return NewWhisperAdapter(clientCfg, model.ID, cfg.Language, cfg.Keywords, cfg.ChunkDuration)
		}
	default:
		return nil, fmt.Errorf("adapter %q not supported: %w", model.AdapterType, ErrCapabilityUnavailable)
	}

	newCapturer := func() Capturer { return recording.NewRecorder(rec) }
	return NewAudioSource(newCapturer, factory, cfg.Language), nil
}
