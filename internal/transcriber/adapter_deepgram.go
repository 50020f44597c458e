package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leonardotrapani/aulavoz/internal/provider"
	log "github.com/sirupsen/logrus"
)

var defaultRetryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// DeepgramAdapter implements StreamingAdapter for Deepgram real-time transcription
type DeepgramAdapter struct {
	endpoint *provider.EndpointConfig
	apiKey   string
	model    string
	language string
	keywords []string
	conn     *websocket.Conn
	eventsCh chan Event
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool

	// reconnection config
	maxRetries  int
	retryDelays []time.Duration

	// finalization signaling
	finalizeDone chan struct{}
}

// deepgramCloseStream message to signal end of audio
type deepgramCloseStream struct {
	Type string `json:"type"`
}

// Deepgram WebSocket response types (incoming)
type deepgramWSResponse struct {
	Type        string            `json:"type"`
	Channel     *deepgramChannel  `json:"channel,omitempty"`
	Metadata    *deepgramMetadata `json:"metadata,omitempty"`
	Error       *deepgramError    `json:"error,omitempty"`
	Duration    float64           `json:"duration,omitempty"`
	Start       float64           `json:"start,omitempty"`
	IsFinal     bool              `json:"is_final,omitempty"`
	SpeechFinal bool              `json:"speech_final,omitempty"`
}

type deepgramChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives,omitempty"`
}

type deepgramAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type deepgramMetadata struct {
	RequestID string `json:"request_id"`
	ModelInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"model_info"`
}

type deepgramError struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// DeepgramOption tweaks a DeepgramAdapter.
type DeepgramOption func(*DeepgramAdapter)

// WithDeepgramRetries overrides how often a dropped connection is redialed
// before the adapter gives up and closes its event channel.
func WithDeepgramRetries(maxRetries int, delays ...time.Duration) DeepgramOption {
	return func(a *DeepgramAdapter) {
		a.maxRetries = maxRetries
		if len(delays) > 0 {
			a.retryDelays = delays
		}
	}
}

// NewDeepgramAdapter creates a new streaming adapter for Deepgram
// endpoint: the WebSocket endpoint config (e.g., wss://api.deepgram.com, /v1/listen)
// apiKey: Deepgram API key
// model: model ID (e.g., "nova-2")
// lang: recognition locale (e.g., "es-ES")
// keywords: professor trigger phrases, boosted so the recognizer spells them consistently
func NewDeepgramAdapter(endpoint *provider.EndpointConfig, apiKey, model, lang string, keywords []string, opts ...DeepgramOption) *DeepgramAdapter {
	a := &DeepgramAdapter{
		endpoint:     endpoint,
		apiKey:       apiKey,
		model:        model,
		language:     lang,
		keywords:     keywords,
		eventsCh:     make(chan Event, 100),
		maxRetries:   3,
		retryDelays:  defaultRetryDelays,
		finalizeDone: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start initiates the WebSocket connection to Deepgram
func (a *DeepgramAdapter) Start(ctx context.Context, lang string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return fmt.Errorf("adapter already started")
	}

	// use lang param if provided, otherwise use constructor lang
	if lang != "" {
		a.language = lang
	}

	a.ctx, a.cancel = context.WithCancel(ctx)

	if err := a.connectLocked(); err != nil {
		a.cancel()
		return err
	}
	a.started = true

	a.wg.Add(1)
	go a.readLoop()

	log.Printf("deepgram: connected, model=%s, language=%s", a.model, a.language)
	return nil
}

// connectLocked establishes WebSocket connection. Must be called with mu held.
func (a *DeepgramAdapter) connectLocked() error {
	wsURL, err := a.buildURL()
	if err != nil {
		return fmt.Errorf("build websocket url: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+a.apiKey)

	log.Debugf("deepgram: connecting to %s", wsURL)
	conn, resp, err := websocket.DefaultDialer.DialContext(a.ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			log.Warnf("deepgram: dial failed with status %d", resp.StatusCode)
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return fmt.Errorf("deepgram rejected credentials: %w", ErrCapabilityUnavailable)
			}
		}
		return fmt.Errorf("websocket dial: %w", err)
	}
	a.conn = conn
	return nil
}

// reconnect attempts to re-establish the WebSocket connection with backoff.
// Returns true if reconnection succeeded.
func (a *DeepgramAdapter) reconnect() bool {
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		select {
		case <-a.ctx.Done():
			return false
		default:
		}

		// wait before retry (skip wait on first attempt)
		if attempt > 0 {
			idx := attempt - 1
			if idx >= len(a.retryDelays) {
				idx = len(a.retryDelays) - 1
			}
			delay := a.retryDelays[idx]
			log.Printf("deepgram: reconnect attempt %d/%d after %v", attempt+1, a.maxRetries, delay)

			select {
			case <-a.ctx.Done():
				return false
			case <-time.After(delay):
			}
		} else {
			log.Printf("deepgram: reconnect attempt %d/%d", attempt+1, a.maxRetries)
		}

		a.mu.Lock()
		if a.conn != nil {
			a.conn.Close()
			a.conn = nil
		}
		err := a.connectLocked()
		a.mu.Unlock()

		if err == nil {
			log.Printf("deepgram: reconnected successfully")
			return true
		}

		log.Warnf("deepgram: reconnect failed: %v", err)
	}

	return false
}

// buildURL constructs the WebSocket URL with query parameters
func (a *DeepgramAdapter) buildURL() (string, error) {
	baseURL := a.endpoint.BaseURL + a.endpoint.Path

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("model", a.model)
	q.Set("encoding", "linear16") // 16-bit linear PCM
	q.Set("sample_rate", "16000") // 16kHz
	q.Set("channels", "1")        // mono

	// interim results feed the live slot
	q.Set("interim_results", "true")
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")

	if lang := normalizeDeepgramLanguage(a.language); lang != "" {
		q.Set("language", lang)
	}

	for _, kw := range a.keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			q.Add("keywords", kw)
		}
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *DeepgramAdapter) emit(ev Event) {
	select {
	case a.eventsCh <- ev:
	case <-a.ctx.Done():
	}
}

// readLoop reads messages from the WebSocket and sends events to the channel
func (a *DeepgramAdapter) readLoop() {
	defer a.wg.Done()
	defer close(a.eventsCh)

	for {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		a.mu.Lock()
		conn := a.conn
		a.mu.Unlock()

		if conn == nil {
			if !a.reconnect() {
				a.emit(Event{Err: fmt.Errorf("deepgram: connection lost after %d attempts: %w", a.maxRetries, ErrStreamEnded)})
				return
			}
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			// normal shutdown
			select {
			case <-a.ctx.Done():
				return
			default:
			}

			log.Warnf("deepgram: read error: %v, attempting reconnection", err)
			if !a.reconnect() {
				a.emit(Event{Err: fmt.Errorf("deepgram: websocket read: %v: %w", err, ErrStreamEnded)})
				return
			}
			continue
		}

		var resp deepgramWSResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			log.Warnf("deepgram: parse error: %v", err)
			continue
		}

		switch resp.Type {
		case "Metadata":
			if resp.Metadata != nil {
				log.Debugf("deepgram: session started, request_id=%s, model=%s",
					resp.Metadata.RequestID, resp.Metadata.ModelInfo.Name)
			}

		case "Results":
			if ev, ok := resp.toEvent(); ok {
				if ev.Results[0].IsFinal {
					select {
					case a.finalizeDone <- struct{}{}:
					default:
					}
				}
				a.emit(ev)
			}

		case "Error":
			if resp.Error != nil {
				errMsg := resp.Error.Message
				if resp.Error.Description != "" {
					errMsg = fmt.Sprintf("%s: %s", errMsg, resp.Error.Description)
				}
				log.Errorf("deepgram: error: %s", errMsg)
				a.emit(Event{Err: fmt.Errorf("deepgram: %s", errMsg)})
			}

		case "UtteranceEnd", "SpeechStarted":
			log.Debugf("deepgram: %s", resp.Type)

		default:
			log.Debugf("deepgram: unknown message type: %s", resp.Type)
		}
	}
}

func (r deepgramWSResponse) toEvent() (Event, bool) {
	if r.Channel == nil || len(r.Channel.Alternatives) == 0 {
		return Event{}, false
	}
	if r.Channel.Alternatives[0].Transcript == "" {
		return Event{}, false
	}
	alts := make([]Alternative, 0, len(r.Channel.Alternatives))
	for _, alt := range r.Channel.Alternatives {
		alts = append(alts, Alternative{Transcript: alt.Transcript, Confidence: alt.Confidence})
	}
	return Event{
		Results: []Result{{Alternatives: alts, IsFinal: r.IsFinal || r.SpeechFinal}},
	}, true
}

// SendChunk sends audio data to the WebSocket
// Deepgram expects raw binary audio data, not base64 encoded
func (a *DeepgramAdapter) SendChunk(audio []byte) error {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return fmt.Errorf("adapter not started")
	}
	a.mu.Unlock()

	select {
	case <-a.ctx.Done():
		return a.ctx.Err()
	default:
	}

	a.mu.Lock()
	conn := a.conn
	var err error
	if conn == nil {
		err = fmt.Errorf("no connection")
	} else {
		err = conn.WriteMessage(websocket.BinaryMessage, audio)
	}
	a.mu.Unlock()

	if err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Events returns the channel for receiving recognition events
func (a *DeepgramAdapter) Events() <-chan Event {
	return a.eventsCh
}

// Finalize sends a CloseStream message to signal end of audio and waits for final results
func (a *DeepgramAdapter) Finalize(ctx context.Context) error {
	a.mu.Lock()
	if !a.started || a.conn == nil {
		a.mu.Unlock()
		return nil
	}

	// drain any previous finalize signals
	select {
	case <-a.finalizeDone:
	default:
	}

	err := a.conn.WriteJSON(deepgramCloseStream{Type: "CloseStream"})
	a.mu.Unlock()

	if err != nil {
		return fmt.Errorf("finalize write: %w", err)
	}

	log.Debugf("deepgram: sent CloseStream, waiting for final transcript")

	select {
	case <-a.finalizeDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.ctx.Done():
		return a.ctx.Err()
	}
}

// Close gracefully closes the WebSocket connection
func (a *DeepgramAdapter) Close() error {
	a.mu.Lock()

	if !a.started {
		a.mu.Unlock()
		return nil
	}

	// cancel context first to signal reader to stop
	if a.cancel != nil {
		a.cancel()
	}

	conn := a.conn
	a.started = false
	a.mu.Unlock()

	// close websocket outside of lock (readLoop may be blocked on read)
	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}

	a.wg.Wait()

	log.Debugf("deepgram: closed")
	return nil
}
