package config

import (
	"os"

	"github.com/leonardotrapani/aulavoz/internal/provider"
	"github.com/leonardotrapani/aulavoz/internal/recording"
	"github.com/leonardotrapani/aulavoz/internal/render"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
	"github.com/leonardotrapani/aulavoz/internal/transcriber"
)

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

// ToClassifierConfig returns the classifier tunables. An empty keyword list
// becomes the fallback keyword.
func (c *Config) ToClassifierConfig() speaker.Config {
	keywords := make([]string, 0, len(c.Classifier.Keywords))
	for _, kw := range c.Classifier.Keywords {
		if kw = normalizeKeyword(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		keywords = []string{speaker.FallbackKeyword}
	}

	return speaker.Config{
		Keywords:          keywords,
		PauseThreshold:    c.Classifier.PauseThreshold,
		MinWordsForSwitch: c.Classifier.MinWordsForSwitch,
		Speakers:          c.Classifier.Speakers,
		TurnLimit:         c.Classifier.TurnLimit,
		ProfessorColor:    c.Classifier.ProfessorColor,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	return transcriber.Config{
		Provider:      c.Transcription.Provider,
		APIKey:        c.resolveAPIKeyForProvider(c.Transcription.Provider),
		Language:      c.Transcription.Language,
		Model:         c.Transcription.Model,
		Keywords:      c.ToClassifierConfig().Keywords,
		ChunkDuration: c.Transcription.ChunkDuration,
	}
}

func (c *Config) ToRenderOptions() render.Options {
	return render.Options{
		Timestamps: c.Display.Timestamps,
		Highlight:  c.Display.Highlight,
		ShowLive:   c.Display.ShowLive,
	}
}

// NotifierType returns the notifier kind, "none" when notifications are off.
func (c *Config) NotifierType() string {
	if !c.Notifications.Enabled {
		return "none"
	}
	return c.Notifications.Type
}

// resolveAPIKeyForProvider looks in [providers.<name>], then
// transcription.api_key, then the provider's environment variable.
func (c *Config) resolveAPIKeyForProvider(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}

	if c.Transcription.APIKey != "" {
		return c.Transcription.APIKey
	}

	if envVar := provider.EnvVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}
