package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Script is a recorded session: one entry per stream. Each Open of a
// ReplaySource plays the next stream; when a stream runs out of events it
// ends the way a provider does when it drops the connection.
//
//	streams:
//	  - events:
//	      - {at: 0s, text: "hola a", final: false}
//	      - {at: 800ms, text: "hola a todos", final: true}
//	      - {at: 2s, error: permission_denied}
type Script struct {
	Streams []ScriptStream `yaml:"streams"`
	// Events is shorthand for a script with a single stream.
	Events []ScriptEvent `yaml:"events"`
}

type ScriptStream struct {
	Events []ScriptEvent `yaml:"events"`
}

// ScriptEvent is delivered At after the stream was opened.
type ScriptEvent struct {
	At    time.Duration `yaml:"at"`
	Text  string        `yaml:"text"`
	Final bool          `yaml:"final"`
	Error string        `yaml:"error"`
}

// LoadScript reads a replay script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a replay script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Events) > 0 {
		s.Streams = append([]ScriptStream{{Events: s.Events}}, s.Streams...)
		s.Events = nil
	}
	if len(s.Streams) == 0 {
		return nil, fmt.Errorf("parse script: no events")
	}
	for i, st := range s.Streams {
		var prev time.Duration
		for j, ev := range st.Events {
			if ev.At < prev {
				return nil, fmt.Errorf("parse script: stream %d event %d goes back in time", i, j)
			}
			if _, ok := scriptError(ev.Error); !ok {
				return nil, fmt.Errorf("parse script: stream %d event %d: unknown error %q", i, j, ev.Error)
			}
			prev = ev.At
		}
	}
	return &s, nil
}

// scriptError maps an error name from a script to the error the stream
// delivers. ok is false for names it does not know.
func scriptError(name string) (err error, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return nil, true
	case "permission_denied":
		return ErrPermissionDenied, true
	case "no_input_device":
		return ErrNoInputDevice, true
	case "capability_unavailable":
		return ErrCapabilityUnavailable, true
	case "network":
		return errors.New("network error"), true
	}
	return nil, false
}

// ReplaySource plays a Script as if it came from a provider.
type ReplaySource struct {
	script *Script
	clock  clock.Clock

	mu   sync.Mutex
	next int
	done chan struct{}
}

// NewReplaySource creates a source over script. A nil clock means wall time.
func NewReplaySource(script *Script, c clock.Clock) *ReplaySource {
	if c == nil {
		c = clock.New()
	}
	return &ReplaySource{script: script, clock: c, done: make(chan struct{})}
}

// Done is closed once the last stream of the script has finished playing.
func (s *ReplaySource) Done() <-chan struct{} {
	return s.done
}

func (s *ReplaySource) Open(ctx context.Context) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.script.Streams) {
		return nil, newSourceError("replay", fmt.Errorf("script exhausted: %w", ErrStreamEnded))
	}
	idx := s.next
	s.next++
	last := s.next == len(s.script.Streams)

	streamCtx, cancel := context.WithCancel(ctx)
	st := &replayStream{
		events: make(chan Event),
		cancel: cancel,
		closed: make(chan struct{}),
	}
	start := s.clock.Now()
	go func() {
		defer close(st.closed)
		defer close(st.events)
		if last {
			defer close(s.done)
		}
		s.play(streamCtx, start, s.script.Streams[idx], st.events)
	}()
	log.Debugf("Replay: opened stream %d/%d", idx+1, len(s.script.Streams))
	return st, nil
}

func (s *ReplaySource) play(ctx context.Context, start time.Time, stream ScriptStream, out chan<- Event) {
	for _, ev := range stream.Events {
		if wait := start.Add(ev.At).Sub(s.clock.Now()); wait > 0 {
			timer := s.clock.Timer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		msg := Event{Results: []Result{{
			Alternatives: []Alternative{{Transcript: ev.Text, Confidence: 1}},
			IsFinal:      ev.Final,
		}}}
		if err, _ := scriptError(ev.Error); err != nil {
			msg = Event{Err: err}
		}

		select {
		case <-ctx.Done():
			return
		case out <- msg:
		}
	}
}

type replayStream struct {
	events chan Event
	cancel context.CancelFunc
	closed chan struct{}
}

func (st *replayStream) Events() <-chan Event { return st.events }

func (st *replayStream) Close() error {
	st.cancel()
	<-st.closed
	return nil
}
