package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/leonardotrapani/aulavoz/internal/language"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// minChunkBytes is 100ms of 16kHz mono s16 audio; shorter buffers are not worth a request
const minChunkBytes = 3200

// WhisperAdapter implements StreamingAdapter on top of the batch Whisper API.
// Audio is buffered and sent every chunk interval; each response becomes a
// single final result. There are no interim results.
type WhisperAdapter struct {
	client   *openai.Client
	model    string
	language string
	prompt   string
	chunk    time.Duration
	clock    clock.Clock

	mu      sync.Mutex
	buf     bytes.Buffer
	started bool

	eventsCh chan Event
	flushReq chan chan error
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// WhisperOption tweaks a WhisperAdapter.
type WhisperOption func(*WhisperAdapter)

// WithWhisperClock sets the clock driving chunk flushes.
func WithWhisperClock(c clock.Clock) WhisperOption {
	return func(a *WhisperAdapter) { a.clock = c }
}

// NewWhisperAdapter creates a chunked adapter. keywords are passed as the
// prompt so that trigger phrases keep a stable spelling.
func NewWhisperAdapter(cfg openai.ClientConfig, model, lang string, keywords []string, chunk time.Duration, opts ...WhisperOption) *WhisperAdapter {
	if chunk <= 0 {
		chunk = 5 * time.Second
	}
	a := &WhisperAdapter{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: lang,
		prompt:   strings.Join(keywords, ", "),
		chunk:    chunk,
		clock:    clock.New(),
		eventsCh: make(chan Event, 16),
		flushReq: make(chan chan error),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *WhisperAdapter) Start(ctx context.Context, lang string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return fmt.Errorf("adapter already started")
	}
	if lang != "" {
		a.language = lang
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.started = true

	ticker := a.clock.Ticker(a.chunk)
	a.wg.Add(1)
	go a.loop(ticker)

	log.Printf("whisper: started, model=%s, language=%s, chunk=%v", a.model, a.language, a.chunk)
	return nil
}

func (a *WhisperAdapter) loop(ticker *clock.Ticker) {
	defer a.wg.Done()
	defer close(a.eventsCh)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			if err := a.flush(a.ctx); err != nil {
				a.emit(Event{Err: err})
			}
		case reply := <-a.flushReq:
			reply <- a.flush(a.ctx)
		}
	}
}

func (a *WhisperAdapter) take() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.buf.Len() < minChunkBytes {
		return nil
	}
	// keep a trailing half sample for the next chunk
	n := a.buf.Len() - a.buf.Len()%2
	pcm := make([]byte, n)
	copy(pcm, a.buf.Next(n))
	return pcm
}

func (a *WhisperAdapter) flush(ctx context.Context) error {
	pcm := a.take()
	if pcm == nil {
		return nil
	}
	text, err := a.transcribe(ctx, pcm)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	a.emit(Event{Results: []Result{{
		Alternatives: []Alternative{{Transcript: text, Confidence: 1}},
		IsFinal:      true,
	}}})
	return nil
}

func (a *WhisperAdapter) transcribe(ctx context.Context, pcm []byte) (string, error) {
	wavData, err := convertToWAV(pcm)
	if err != nil {
		return "", fmt.Errorf("convert to WAV: %w", err)
	}

	req := openai.AudioRequest{
		Model:    a.model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
		Language: language.BaseCode(a.language),
		Prompt:   a.prompt,
	}

	start := a.clock.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	if err != nil {
		log.Warnf("whisper: API call failed after %v: %v", a.clock.Since(start), err)
		return "", fmt.Errorf("whisper transcription: %w", err)
	}

	log.Debugf("whisper: transcribed %d bytes: %q", len(pcm), resp.Text)
	return resp.Text, nil
}

func (a *WhisperAdapter) emit(ev Event) {
	select {
	case a.eventsCh <- ev:
	case <-a.ctx.Done():
	}
}

func (a *WhisperAdapter) SendChunk(audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return fmt.Errorf("adapter not started")
	}
	a.buf.Write(audio)
	return nil
}

func (a *WhisperAdapter) Events() <-chan Event {
	return a.eventsCh
}

// Finalize transcribes whatever audio is still buffered.
func (a *WhisperAdapter) Finalize(ctx context.Context) error {
	a.mu.Lock()
	started := a.started
	a.mu.Unlock()
	if !started {
		return nil
	}

	reply := make(chan error, 1)
	select {
	case a.flushReq <- reply:
	case <-ctx.Done():
		return ctx.Err()
	case <-a.ctx.Done():
		return a.ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *WhisperAdapter) Close() error {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return nil
	}
	a.started = false
	a.cancel()
	a.mu.Unlock()

	a.wg.Wait()
	log.Debugf("whisper: closed")
	return nil
}
