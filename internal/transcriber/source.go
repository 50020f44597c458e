package transcriber

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/aulavoz/internal/recording"
	log "github.com/sirupsen/logrus"
)

// finalizeTimeout bounds how long Close waits for the provider's last results
const finalizeTimeout = 3 * time.Second

// Capturer produces raw PCM frames. *recording.Recorder satisfies it.
type Capturer interface {
	Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error)
	Stop() error
	Wait()
}

// AdapterFactory builds a fresh streaming adapter. Adapters are single use,
// so every Open gets its own.
type AdapterFactory func() StreamingAdapter

// AudioSource captures microphone audio and streams it through a provider.
type AudioSource struct {
	newCapturer func() Capturer
	newAdapter  AdapterFactory
	language    string
}

// NewAudioSource builds a source from a capturer constructor and an adapter factory.
func NewAudioSource(newCapturer func() Capturer, newAdapter AdapterFactory, language string) *AudioSource {
	return &AudioSource{newCapturer: newCapturer, newAdapter: newAdapter, language: language}
}

// Open starts capture and the provider connection. Capture failures are
// reported as ErrCapabilityUnavailable, ErrPermissionDenied or ErrNoInputDevice.
func (s *AudioSource) Open(ctx context.Context) (Stream, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	capturer := s.newCapturer()
	frames, captureErrs, err := capturer.Start(streamCtx)
	if err != nil {
		cancel()
		return nil, newSourceError("capture", mapCaptureError(err))
	}

	adapter := s.newAdapter()
	if err := adapter.Start(streamCtx, s.language); err != nil {
		cancel()
		_ = capturer.Stop()
		capturer.Wait()
		return nil, newSourceError("connect", err)
	}

	st := &audioStream{
		ctx:      streamCtx,
		cancel:   cancel,
		capturer: capturer,
		adapter:  adapter,
		events:   make(chan Event, 32),
	}
	st.wg.Add(2)
	go st.sendAudio(frames)
	go st.forward(captureErrs)
	log.Printf("Source: audio stream opened, language=%s", s.language)
	return st, nil
}

func mapCaptureError(err error) error {
	switch {
	case errors.Is(err, recording.ErrToolMissing):
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	case errors.Is(err, recording.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case errors.Is(err, recording.ErrNoDevice):
		return fmt.Errorf("%w: %v", ErrNoInputDevice, err)
	}
	return err
}

type audioStream struct {
	ctx      context.Context
	cancel   context.CancelFunc
	capturer Capturer
	adapter  StreamingAdapter
	events   chan Event

	wg        sync.WaitGroup
	closeOnce sync.Once
	closing   atomic.Bool
}

func (st *audioStream) Events() <-chan Event { return st.events }

func (st *audioStream) sendAudio(frames <-chan recording.AudioFrame) {
	defer st.wg.Done()
	for {
		select {
		case <-st.ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := st.adapter.SendChunk(frame.Data); err != nil {
				// the adapter reconnects on its own
				log.Debugf("Source: send error: %v", err)
			}
		}
	}
}

// forward relays adapter events and capture errors until either side ends.
func (st *audioStream) forward(captureErrs <-chan error) {
	defer st.wg.Done()
	defer close(st.events)

	adapterEvents := st.adapter.Events()
	for {
		select {
		case <-st.ctx.Done():
			return
		case err, ok := <-captureErrs:
			if !ok {
				if st.closing.Load() {
					// capture stopped by Close; keep relaying the provider's last results
					captureErrs = nil
					continue
				}
				st.send(Event{Err: fmt.Errorf("capture stopped: %w", ErrStreamEnded)})
				return
			}
			st.send(Event{Err: newSourceError("capture", mapCaptureError(err))})
			return
		case ev, ok := <-adapterEvents:
			if !ok {
				if !st.closing.Load() {
					st.send(Event{Err: fmt.Errorf("provider closed: %w", ErrStreamEnded)})
				}
				return
			}
			st.send(ev)
		}
	}
}

func (st *audioStream) send(ev Event) {
	select {
	case st.events <- ev:
	case <-st.ctx.Done():
	}
}

// Close stops capture, flushes the provider and waits for the pumps.
func (st *audioStream) Close() error {
	var err error
	st.closeOnce.Do(func() {
		st.closing.Store(true)
		_ = st.capturer.Stop()
		fctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
		if ferr := st.adapter.Finalize(fctx); ferr != nil {
			log.Debugf("Source: finalize: %v", ferr)
		}
		cancel()
		st.cancel()
		err = st.adapter.Close()
		st.capturer.Wait()
		st.wg.Wait()
	})
	return err
}
