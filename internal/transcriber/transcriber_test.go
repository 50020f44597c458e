package transcriber

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leonardotrapani/aulavoz/internal/recording"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		unavailable bool
	}{
		{
			name:   "deepgram",
			config: Config{Provider: "deepgram", APIKey: "dg-key", Language: "es-ES", Model: "nova-2"},
		},
		{
			name:   "deepgram default model",
			config: Config{Provider: "deepgram", APIKey: "dg-key", Language: "es-ES"},
		},
		{
			name:   "openai whisper",
			config: Config{Provider: "openai", APIKey: "sk-test", Language: "es-ES", Model: "whisper-1"},
		},
		{
			name:        "missing api key",
			config:      Config{Provider: "deepgram", Language: "es-ES"},
			wantErr:     true,
			unavailable: true,
		},
		{
			name:        "unsupported provider",
			config:      Config{Provider: "browser", APIKey: "x"},
			wantErr:     true,
			unavailable: true,
		},
		{
			name:    "bad locale",
			config:  Config{Provider: "deepgram", APIKey: "k", Language: "not a locale"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.config, recording.DefaultConfig())
			if !tt.wantErr {
				require.NoError(t, err)
				require.IsType(t, &AudioSource{}, src)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.unavailable, errors.Is(err, ErrCapabilityUnavailable))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "deepgram", cfg.Provider)
	require.Equal(t, "es-ES", cfg.Language)
	require.Positive(t, cfg.ChunkDuration)
}

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Batch
	}{
		{
			name: "empty",
			want: Batch{},
		},
		{
			name: "interim only",
			ev: Event{Results: []Result{
				{Alternatives: []Alternative{{Transcript: "hola"}, {Transcript: "ola"}}},
			}},
			want: Batch{Interim: "hola "},
		},
		{
			name: "mixed",
			ev: Event{Results: []Result{
				{Alternatives: []Alternative{{Transcript: "uno"}}, IsFinal: true},
				{Alternatives: []Alternative{{Transcript: "dos"}}},
				{Alternatives: []Alternative{{Transcript: "tres"}}, IsFinal: true},
			}},
			want: Batch{Interim: "dos ", Final: "uno tres "},
		},
		{
			name: "result index skips delivered results",
			ev: Event{ResultIndex: 1, Results: []Result{
				{Alternatives: []Alternative{{Transcript: "viejo"}}, IsFinal: true},
				{Alternatives: []Alternative{{Transcript: "nuevo"}}, IsFinal: true},
			}},
			want: Batch{Final: "nuevo "},
		},
		{
			name: "result without alternatives",
			ev:   Event{Results: []Result{{IsFinal: true}}},
			want: Batch{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Collapse(tt.ev))
		})
	}
}

func TestKindAndMessage(t *testing.T) {
	tests := []struct {
		err     error
		kind    ErrorKind
		message string
	}{
		{fmt.Errorf("wrap: %w", ErrCapabilityUnavailable), KindCapabilityUnavailable, "not available"},
		{newSourceError("capture", ErrPermissionDenied), KindPermissionDenied, "permission denied"},
		{ErrNoInputDevice, KindNoInputDevice, "No microphone"},
		{fmt.Errorf("x: %w", ErrStreamEnded), KindTransientStreamEnd, "stream ended"},
		{errors.New("boom"), KindOther, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			require.Equal(t, tt.kind, Kind(tt.err))
			require.Contains(t, Message(tt.err), tt.message)
		})
	}
	require.Equal(t, KindOther, Kind(nil))
	require.Empty(t, Message(nil))
}

func TestSourceError(t *testing.T) {
	err := newSourceError("connect", ErrNoInputDevice)
	require.EqualError(t, err, "connect: no input device")

	var se *SourceError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "connect", se.Op)
	require.Nil(t, newSourceError("x", nil))
}

func TestConvertToWAV(t *testing.T) {
	wav, err := convertToWAV(make([]byte, 320))
	require.NoError(t, err)
	require.Len(t, wav, 44+320)
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, "data", string(wav[36:40]))

	_, err = convertToWAV(make([]byte, 3))
	require.Error(t, err)
}
