package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/leonardotrapani/aulavoz/internal/notify"
	"github.com/leonardotrapani/aulavoz/internal/speaker"
	"github.com/leonardotrapani/aulavoz/internal/transcriber"
	"github.com/leonardotrapani/aulavoz/internal/transcript"
	log "github.com/sirupsen/logrus"
)

// DefaultRestartDelay is how long the controller waits before reopening a
// stream that ended while the session was still active.
const DefaultRestartDelay = 500 * time.Millisecond

var (
	ErrAlreadyActive = errors.New("session already active")
	// ErrStartAborted is returned by a Start that was overtaken by Stop
	// while the source was still opening.
	ErrStartAborted = errors.New("session stopped while starting")
)

// Presenter receives transcript updates. Calls are serialized.
type Presenter interface {
	Append(seg transcript.LabeledSegment)
	Live(seg transcript.LabeledSegment)
	ClearLive()
	Cleared()
	Error(msg string)
}

type Option func(*Controller)

func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

func WithRestartDelay(d time.Duration) Option {
	return func(ctl *Controller) {
		if d >= 0 {
			ctl.restartDelay = d
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(ctl *Controller) { ctl.notifier = n }
}

// WithCapability marks recognition as unusable before any Start, e.g. when
// the source could not be built from the config. Every Start returns err.
func WithCapability(err error) Option {
	return func(ctl *Controller) {
		if err != nil {
			ctl.capErr = err
			ctl.status = Unavailable
		}
	}
}

// Controller runs a transcription session: it feeds recognition events
// through the speaker classifier, keeps the transcript, and reopens the
// stream when the provider drops it.
type Controller struct {
	source       transcriber.Source
	classifier   *speaker.Classifier
	presenter    Presenter
	notifier     notify.Notifier
	clock        clock.Clock
	restartDelay time.Duration

	mu        sync.Mutex
	status    Status
	capErr    error
	lastErr   error
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc
	stream    transcriber.Stream
	gen       uint64
	opening   bool
	restart   *clock.Timer

	log  transcript.Log
	live transcript.Live
	wg   sync.WaitGroup
}

func New(source transcriber.Source, classifier *speaker.Classifier, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		source:       source,
		classifier:   classifier,
		presenter:    presenter,
		notifier:     notify.Nop{},
		clock:        clock.New(),
		restartDelay: DefaultRestartDelay,
		status:       Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start resets the classifier and opens a new stream. The source is opened
// without holding the lock, so status queries answer while it dials.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.capErr != nil {
		c.status = Unavailable
		err := c.capErr
		c.mu.Unlock()
		return err
	}
	if c.status.Active() || c.opening {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	c.classifier.Reset()
	c.lastErr = nil
	c.gen++
	gen := c.gen
	c.opening = true
	c.mu.Unlock()

	sessCtx, cancel := context.WithCancel(ctx)
	stream, err := c.source.Open(sessCtx)

	c.mu.Lock()
	c.opening = false
	if gen != c.gen {
		c.mu.Unlock()
		cancel()
		if stream != nil {
			_ = stream.Close()
		}
		log.Debugf("Session: start aborted")
		return ErrStartAborted
	}
	defer c.mu.Unlock()

	if err != nil {
		cancel()
		c.failLocked(err)
		return err
	}

	c.ctx, c.cancel = sessCtx, cancel
	c.sessionID = uuid.NewString()
	c.status = Listening
	c.attachLocked(gen, stream)

	log.Printf("Session: started %s", c.sessionID)
	c.notifier.ListeningChanged(true)
	return nil
}

// failLocked records err and surfaces it. Capability errors are permanent.
func (c *Controller) failLocked(err error) {
	c.lastErr = err
	if transcriber.Kind(err) == transcriber.KindCapabilityUnavailable {
		c.capErr = err
		c.status = Unavailable
	} else {
		c.status = Idle
	}
	msg := transcriber.Message(err)
	log.Errorf("Session: %v", err)
	c.presenter.Error(msg)
	c.notifier.Error(msg)
}

func (c *Controller) attachLocked(gen uint64, stream transcriber.Stream) {
	c.stream = stream
	c.wg.Add(1)
	go c.consume(gen, stream)
}

func (c *Controller) consume(gen uint64, stream transcriber.Stream) {
	defer c.wg.Done()
	for ev := range stream.Events() {
		c.handle(gen, ev)
	}
	c.streamEnded(gen, stream)
}

func (c *Controller) handle(gen uint64, ev transcriber.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	if ev.Err != nil {
		c.handleErrLocked(ev.Err)
		return
	}

	batch := transcriber.Collapse(ev)
	now := c.clock.Now()

	// interims only matter while someone is listening
	if interim := strings.TrimSpace(batch.Interim); interim != "" && c.status.Active() {
		id := c.classifier.Classify(speaker.Segment{Text: batch.Interim, ArrivalTimeMs: now.UnixMilli()})
		seg := transcript.LabeledSegment{Text: interim, Speaker: id, Timestamp: transcript.Stamp(now)}
		c.live.Set(seg)
		c.presenter.Live(seg)
	}

	if final := strings.TrimSpace(batch.Final); final != "" {
		id := c.classifier.Classify(speaker.Segment{Text: batch.Final, IsFinal: true, ArrivalTimeMs: now.UnixMilli()})
		seg := transcript.LabeledSegment{Text: final, Speaker: id, Timestamp: transcript.Stamp(now), Final: true}
		c.log.Append(seg)
		c.presenter.Append(seg)
		c.live.Clear()
		c.presenter.ClearLive()
	}
}

func (c *Controller) handleErrLocked(err error) {
	switch transcriber.Kind(err) {
	case transcriber.KindPermissionDenied, transcriber.KindNoInputDevice, transcriber.KindCapabilityUnavailable:
		if !c.status.Active() {
			return
		}
		stream := c.detachLocked()
		c.failLocked(err)
		c.cancelLocked()
		c.notifier.ListeningChanged(false)
		if stream != nil {
			// Close waits for this goroutine's stream to drain; do it elsewhere
			go stream.Close()
		}
	default:
		c.lastErr = err
		log.Warnf("Session: recognition error: %v", err)
	}
}

// detachLocked stops the restart timer and forgets the current stream.
func (c *Controller) detachLocked() transcriber.Stream {
	if c.restart != nil {
		c.restart.Stop()
		c.restart = nil
	}
	stream := c.stream
	c.stream = nil
	c.live.Clear()
	c.presenter.ClearLive()
	return stream
}

func (c *Controller) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) streamEnded(gen uint64, stream transcriber.Stream) {
	_ = stream.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.status != Listening || c.stream != stream {
		return
	}

	log.Printf("Session: stream ended, restarting in %v", c.restartDelay)
	c.stream = nil
	c.status = Restarting
	c.restart = c.clock.AfterFunc(c.restartDelay, func() { c.reopen(gen) })
}

func (c *Controller) reopen(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.status != Restarting {
		c.mu.Unlock()
		return
	}
	c.restart = nil
	ctx := c.ctx
	c.mu.Unlock()

	stream, err := c.source.Open(ctx)

	c.mu.Lock()
	if gen != c.gen || c.status != Restarting {
		// stopped while reopening
		c.mu.Unlock()
		if stream != nil {
			_ = stream.Close()
		}
		return
	}
	defer c.mu.Unlock()

	if err != nil {
		// no second attempt; the session looks alive but stays silent
		log.Errorf("Session: restart failed: %v", err)
		c.lastErr = err
		c.status = Listening
		return
	}

	c.gen++
	c.status = Listening
	c.attachLocked(c.gen, stream)
	log.Debugf("Session: stream reopened")
}

// Stop ends the session. The live slot is discarded; final results the
// provider still delivers while closing are kept.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.opening {
		// the pending Start sees the new generation and backs out
		c.gen++
		c.mu.Unlock()
		return nil
	}
	if !c.status.Active() {
		c.mu.Unlock()
		return nil
	}
	stream := c.detachLocked()
	c.status = Idle
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	var err error
	if stream != nil {
		err = stream.Close()
	}
	if cancel != nil {
		cancel()
	}
	log.Printf("Session: stopped")
	c.notifier.ListeningChanged(false)
	if err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	return nil
}

// Toggle starts an idle session or stops an active one and returns the new status.
func (c *Controller) Toggle(ctx context.Context) (Status, error) {
	if c.Status().Active() {
		if err := c.Stop(); err != nil {
			return c.Status(), err
		}
		return c.Status(), nil
	}
	err := c.Start(ctx)
	return c.Status(), err
}

// Clear empties the transcript and the live slot and resets the classifier.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Reset()
	c.live.Clear()
	c.classifier.Reset()
	c.presenter.Cleared()
}

// UpdateConfig swaps the classifier config without touching its state.
func (c *Controller) UpdateConfig(cfg speaker.Config) {
	c.classifier.UpdateConfig(cfg)
}

// Close stops the session and waits for every stream reader to exit.
func (c *Controller) Close() error {
	err := c.Stop()
	c.wg.Wait()
	return err
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Transcript() []transcript.LabeledSegment {
	return c.log.Segments()
}

func (c *Controller) Live() (transcript.LabeledSegment, bool) {
	return c.live.Get()
}

func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Classifier exposes the classifier for status reporting.
func (c *Controller) Classifier() *speaker.Classifier {
	return c.classifier
}
