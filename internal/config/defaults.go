package config

import (
	"github.com/leonardotrapani/aulavoz/internal/language"
	"github.com/leonardotrapani/aulavoz/internal/provider"
	"github.com/leonardotrapani/aulavoz/internal/session"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
	"github.com/leonardotrapani/aulavoz/internal/transcriber"
)

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Keywords:          speaker.DefaultKeywords(),
			ProfessorColor:    speaker.DefaultProfessorColor,
			PauseThreshold:    speaker.DefaultPauseThreshold,
			MinWordsForSwitch: speaker.DefaultMinWordsForSwitch,
			Speakers:          speaker.DefaultSpeakers,
			TurnLimit:         speaker.DefaultTurnLimit,
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        8192,
			ChannelBufferSize: 30,
		},
		Transcription: TranscriptionConfig{
			Provider:      provider.ProviderDeepgram,
			Model:         "nova-2",
			Language:      language.Default,
			ChunkDuration: transcriber.DefaultConfig().ChunkDuration,
			RestartDelay:  session.DefaultRestartDelay,
		},
		Providers: make(map[string]provider.ProviderConfig),
		Display: DisplayConfig{
			Timestamps: true,
			Highlight:  true,
			ShowLive:   true,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
	}
}
