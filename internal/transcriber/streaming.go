package transcriber

import (
	"context"
	"strings"
)

// Alternative is one candidate transcript for a piece of speech.
type Alternative struct {
	Transcript string
	Confidence float64
}

// Result is one recognized piece of speech with its alternatives, best first.
type Result struct {
	Alternatives []Alternative
	IsFinal      bool
}

// Event is one batch of recognition results delivered by a provider.
// Results before ResultIndex were already delivered in earlier events.
// A non-nil Err carries a provider or capture error instead of results.
type Event struct {
	Results     []Result
	ResultIndex int
	Err         error
}

// Batch is an event collapsed into the concatenated interim and final text.
type Batch struct {
	Interim string
	Final   string
}

// Collapse concatenates the best alternative of every new result, splitting
// interim from final pieces. Each piece is followed by a single space.
func Collapse(ev Event) Batch {
	var interim, final strings.Builder
	start := ev.ResultIndex
	if start < 0 {
		start = 0
	}
	for i := start; i < len(ev.Results); i++ {
		r := ev.Results[i]
		if len(r.Alternatives) == 0 {
			continue
		}
		text := r.Alternatives[0].Transcript
		if r.IsFinal {
			final.WriteString(text)
			final.WriteString(" ")
		} else {
			interim.WriteString(text)
			interim.WriteString(" ")
		}
	}
	return Batch{Interim: interim.String(), Final: final.String()}
}

// StreamingAdapter interface for streaming transcription backends (send audio in real-time)
type StreamingAdapter interface {
	// Start initiates the streaming connection with the given language setting
	Start(ctx context.Context, language string) error

	// SendChunk sends a chunk of audio data to the transcription service
	SendChunk(audio []byte) error

	// Events returns a channel that receives recognition events (interim and final).
	// The channel is closed when the adapter stops producing events.
	Events() <-chan Event

	// Finalize signals end of audio input and waits for final transcription results.
	// The ctx controls the timeout for waiting on final results.
	Finalize(ctx context.Context) error

	// Close gracefully closes the streaming connection
	Close() error
}

// Source opens streams of recognition events. Every Open is one
// subscription; the session controller opens a new one after the previous
// stream ended unexpectedly.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is a cancellable subscription to recognition events.
type Stream interface {
	// Events is closed when the stream ends, whether by Close or because the
	// provider went away.
	Events() <-chan Event
	Close() error
}
