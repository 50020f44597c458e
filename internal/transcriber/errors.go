package transcriber

import (
	"errors"
	"fmt"
)

var (
	// ErrCapabilityUnavailable means speech recognition cannot run at all in
	// this environment (no provider, no capture tool, no credentials).
	ErrCapabilityUnavailable = errors.New("speech recognition unavailable")
	// ErrPermissionDenied means access to the microphone was refused.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrNoInputDevice means no capture device could be found.
	ErrNoInputDevice = errors.New("no input device")
	// ErrStreamEnded means the provider stream went away on its own.
	ErrStreamEnded = errors.New("stream ended")
)

// ErrorKind classifies errors surfaced by sources.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindCapabilityUnavailable
	KindPermissionDenied
	KindNoInputDevice
	KindTransientStreamEnd
)

func (k ErrorKind) String() string {
	switch k {
	case KindCapabilityUnavailable:
		return "capability_unavailable"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNoInputDevice:
		return "no_input_device"
	case KindTransientStreamEnd:
		return "transient_stream_end"
	default:
		return "other"
	}
}

// Kind returns the taxonomy bucket of err.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrCapabilityUnavailable):
		return KindCapabilityUnavailable
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrNoInputDevice):
		return KindNoInputDevice
	case errors.Is(err, ErrStreamEnded):
		return KindTransientStreamEnd
	default:
		return KindOther
	}
}

// Message returns the user-facing text for err.
func Message(err error) string {
	switch Kind(err) {
	case KindCapabilityUnavailable:
		return "Speech recognition is not available on this system. Configure a transcription provider and install pipewire-tools."
	case KindPermissionDenied:
		return "Microphone permission denied. Allow microphone access and try again."
	case KindNoInputDevice:
		return "No microphone detected. Connect a microphone and try again."
	default:
		if err == nil {
			return ""
		}
		return fmt.Sprintf("Speech recognition error: %v", err)
	}
}

// SourceError attaches the stage that failed to an error from a source.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	if e == nil || e.Err == nil {
		return "source error"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newSourceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Op: op, Err: err}
}
