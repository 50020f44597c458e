package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/leonardotrapani/aulavoz/internal/language"
	"github.com/leonardotrapani/aulavoz/internal/provider"
)

const maxSpeakers = 5

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	cl := c.Classifier
	if cl.ProfessorColor != "" && !IsHexColor(cl.ProfessorColor) {
		result = multierror.Append(result, fmt.Errorf("invalid classifier.professor_color: %q (must be #rgb or #rrggbb)", cl.ProfessorColor))
	}
	if cl.PauseThreshold <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid classifier.pause_threshold: %v", cl.PauseThreshold))
	}
	if cl.MinWordsForSwitch < 1 {
		result = multierror.Append(result, fmt.Errorf("invalid classifier.min_words_for_switch: %d", cl.MinWordsForSwitch))
	}
	if cl.Speakers < 2 || cl.Speakers > maxSpeakers {
		result = multierror.Append(result, fmt.Errorf("invalid classifier.speakers: %d (must be 2-%d)", cl.Speakers, maxSpeakers))
	}
	if cl.TurnLimit < 1 {
		result = multierror.Append(result, fmt.Errorf("invalid classifier.turn_limit: %d", cl.TurnLimit))
	}

	if c.Recording.SampleRate <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate))
	}
	if c.Recording.Channels <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels))
	}
	if c.Recording.Format == "" {
		result = multierror.Append(result, fmt.Errorf("invalid recording.format: empty"))
	}
	if c.Recording.BufferSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize))
	}
	if c.Recording.ChannelBufferSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize))
	}

	t := c.Transcription
	if p := provider.GetProvider(t.Provider); p == nil {
		result = multierror.Append(result, fmt.Errorf("unsupported transcription.provider: %q (must be one of %v)", t.Provider, provider.ListProviders()))
	} else if t.Model != "" && provider.FindModel(p.Name(), t.Model) == nil {
		result = multierror.Append(result, fmt.Errorf("invalid transcription.model for %s: %q", p.Name(), t.Model))
	}
	if !language.IsValid(t.Language) {
		result = multierror.Append(result, fmt.Errorf("invalid transcription.language: %q (use a locale like es-ES)", t.Language))
	}
	if t.ChunkDuration <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid transcription.chunk_duration: %v", t.ChunkDuration))
	}
	if t.RestartDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("invalid transcription.restart_delay: %v", t.RestartDelay))
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		result = multierror.Append(result, fmt.Errorf("invalid notifications.type: %q (must be desktop, log, or none)", c.Notifications.Type))
	}

	return result.ErrorOrNil()
}
