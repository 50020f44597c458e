package config

import (
	"time"

	"github.com/leonardotrapani/aulavoz/internal/provider"
)

type Config struct {
	Classifier    ClassifierConfig                   `toml:"classifier"`
	Recording     RecordingConfig                    `toml:"recording"`
	Transcription TranscriptionConfig                `toml:"transcription"`
	Providers     map[string]provider.ProviderConfig `toml:"providers"`
	Display       DisplayConfig                      `toml:"display"`
	Notifications NotificationsConfig                `toml:"notifications"`
}

// ClassifierConfig tunes speaker attribution.
type ClassifierConfig struct {
	Keywords          []string      `toml:"keywords"`
	ProfessorColor    string        `toml:"professor_color"`
	PauseThreshold    time.Duration `toml:"pause_threshold"`
	MinWordsForSwitch int           `toml:"min_words_for_switch"`
	Speakers          int           `toml:"speakers"`
	TurnLimit         int           `toml:"turn_limit"`
}

type RecordingConfig struct {
	SampleRate        int    `toml:"sample_rate"`
	Channels          int    `toml:"channels"`
	Format            string `toml:"format"`
	BufferSize        int    `toml:"buffer_size"`
	Device            string `toml:"device"`
	ChannelBufferSize int    `toml:"channel_buffer_size"`
}

// TranscriptionConfig selects the recognition provider. APIKey is a fallback
// for providers without an entry under [providers].
type TranscriptionConfig struct {
	Provider      string        `toml:"provider"`
	Model         string        `toml:"model"`
	Language      string        `toml:"language"`
	APIKey        string        `toml:"api_key"`
	ChunkDuration time.Duration `toml:"chunk_duration"`
	RestartDelay  time.Duration `toml:"restart_delay"`
}

type DisplayConfig struct {
	Timestamps bool `toml:"timestamps"`
	Highlight  bool `toml:"highlight"`
	ShowLive   bool `toml:"show_live"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Classifier.Keywords = append([]string(nil), c.Classifier.Keywords...)
	out.Providers = make(map[string]provider.ProviderConfig, len(c.Providers))
	for k, v := range c.Providers {
		out.Providers[k] = v
	}
	return &out
}
