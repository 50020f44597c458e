package transcriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leonardotrapani/aulavoz/internal/provider"
	"github.com/stretchr/testify/require"
)

func TestDeepgramAdapter_ImplementsStreamingAdapter(t *testing.T) {
	var _ StreamingAdapter = (*DeepgramAdapter)(nil)
}

func TestDeepgramAdapter_Creation(t *testing.T) {
	endpoint := &provider.EndpointConfig{BaseURL: "wss://api.deepgram.com", Path: "/v1/listen"}
	adapter := NewDeepgramAdapter(endpoint, "test-api-key", "nova-2", "es-ES", nil)

	require.Equal(t, "test-api-key", adapter.apiKey)
	require.Equal(t, "nova-2", adapter.model)
	require.Equal(t, "es-ES", adapter.language)
	require.Equal(t, 3, adapter.maxRetries)

	adapter = NewDeepgramAdapter(endpoint, "k", "nova-2", "es", nil, WithDeepgramRetries(0))
	require.Zero(t, adapter.maxRetries)
}

func TestDeepgramAdapter_BuildURL(t *testing.T) {
	tests := []struct {
		name     string
		language string
		keywords []string
		want     []string
		notWant  []string
	}{
		{
			name:     "castilian spanish",
			language: "es-ES",
			want:     []string{"language=es&", "interim_results=true", "encoding=linear16", "sample_rate=16000"},
		},
		{
			name:     "latin american spanish",
			language: "es-419",
			want:     []string{"language=es-419"},
		},
		{
			name:     "english",
			language: "en-US",
			want:     []string{"language=en-US"},
		},
		{
			name:     "keywords are boosted",
			language: "es",
			keywords: []string{"examen", " ", "tarea"},
			want:     []string{"keywords=examen", "keywords=tarea"},
			notWant:  []string{"keywords=+", "keywords=&"},
		},
		{
			name:    "no language",
			want:    []string{"model=nova-2"},
			notWant: []string{"language="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &provider.EndpointConfig{BaseURL: "wss://api.deepgram.com", Path: "/v1/listen"}
			adapter := NewDeepgramAdapter(endpoint, "test-key", "nova-2", tt.language, tt.keywords)

			u, err := adapter.buildURL()
			require.NoError(t, err)
			u += "&"
			for _, want := range tt.want {
				require.Contains(t, u, want)
			}
			for _, nw := range tt.notWant {
				require.NotContains(t, u, nw)
			}
		})
	}
}

func TestDeepgramAdapter_SendChunkNotStarted(t *testing.T) {
	endpoint := &provider.EndpointConfig{BaseURL: "wss://api.deepgram.com", Path: "/v1/listen"}
	adapter := NewDeepgramAdapter(endpoint, "test-key", "nova-2", "es", nil)

	err := adapter.SendChunk([]byte("audio data"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not started")
	require.NoError(t, adapter.Close())
}

// mockDeepgramServer creates a mock WebSocket server for testing
func mockDeepgramServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Token ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") == "Token bad" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		handler(conn)
	}))
}

func wsEndpoint(server *httptest.Server) *provider.EndpointConfig {
	return &provider.EndpointConfig{BaseURL: "ws" + strings.TrimPrefix(server.URL, "http")}
}

func drainUntilClosed(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestDeepgramAdapter_StartAndClose(t *testing.T) {
	server := mockDeepgramServer(t, func(conn *websocket.Conn) {
		metadata := deepgramWSResponse{Type: "Metadata", Metadata: &deepgramMetadata{RequestID: "test-123"}}
		_ = conn.WriteJSON(metadata)
		drainUntilClosed(conn)
	})
	defer server.Close()

	adapter := NewDeepgramAdapter(wsEndpoint(server), "test-api-key", "nova-2", "es", nil)

	ctx := context.Background()
	require.NoError(t, adapter.Start(ctx, ""))
	require.Error(t, adapter.Start(ctx, ""), "second start should fail")
	require.NoError(t, adapter.Close())
}

func TestDeepgramAdapter_RejectedCredentials(t *testing.T) {
	server := mockDeepgramServer(t, drainUntilClosed)
	defer server.Close()

	adapter := NewDeepgramAdapter(wsEndpoint(server), "bad", "nova-2", "es", nil)
	err := adapter.Start(context.Background(), "")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCapabilityUnavailable))
}

func TestDeepgramAdapter_ReceivesResults(t *testing.T) {
	server := mockDeepgramServer(t, func(conn *websocket.Conn) {
		interim := deepgramWSResponse{
			Type: "Results",
			Channel: &deepgramChannel{Alternatives: []deepgramAlternative{
				{Transcript: "el examen", Confidence: 0.8},
				{Transcript: "el exam", Confidence: 0.4},
			}},
		}
		final := deepgramWSResponse{
			Type:    "Results",
			IsFinal: true,
			Channel: &deepgramChannel{Alternatives: []deepgramAlternative{
				{Transcript: "el examen es el lunes", Confidence: 0.95},
			}},
		}
		empty := deepgramWSResponse{
			Type:    "Results",
			Channel: &deepgramChannel{Alternatives: []deepgramAlternative{{Transcript: ""}}},
		}
		_ = conn.WriteJSON(interim)
		_ = conn.WriteJSON(empty)
		_ = conn.WriteJSON(final)
		drainUntilClosed(conn)
	})
	defer server.Close()

	adapter := NewDeepgramAdapter(wsEndpoint(server), "test-key", "nova-2", "es", nil, WithDeepgramRetries(0))
	require.NoError(t, adapter.Start(context.Background(), ""))
	defer adapter.Close()

	var got []Event
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-adapter.Events():
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out, got %d events", len(got))
		}
	}

	require.Len(t, got[0].Results, 1)
	require.False(t, got[0].Results[0].IsFinal)
	require.Len(t, got[0].Results[0].Alternatives, 2)
	require.Equal(t, "el examen", got[0].Results[0].Alternatives[0].Transcript)

	require.True(t, got[1].Results[0].IsFinal)
	require.Equal(t, Batch{Final: "el examen es el lunes "}, Collapse(got[1]))
}

func TestDeepgramAdapter_ErrorMessage(t *testing.T) {
	server := mockDeepgramServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(deepgramWSResponse{
			Type:  "Error",
			Error: &deepgramError{Message: "bad audio", Description: "unsupported encoding"},
		})
		drainUntilClosed(conn)
	})
	defer server.Close()

	adapter := NewDeepgramAdapter(wsEndpoint(server), "test-key", "nova-2", "es", nil, WithDeepgramRetries(0))
	require.NoError(t, adapter.Start(context.Background(), ""))
	defer adapter.Close()

	select {
	case ev := <-adapter.Events():
		require.Error(t, ev.Err)
		require.Contains(t, ev.Err.Error(), "bad audio: unsupported encoding")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error event")
	}
}

func TestDeepgramAdapter_ServerHangupEndsStream(t *testing.T) {
	server := mockDeepgramServer(t, func(conn *websocket.Conn) {
		// return immediately, closing the connection
	})
	defer server.Close()

	adapter := NewDeepgramAdapter(wsEndpoint(server), "test-key", "nova-2", "es", nil, WithDeepgramRetries(0))
	require.NoError(t, adapter.Start(context.Background(), ""))
	defer adapter.Close()

	var last Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-adapter.Events():
			if !ok {
				require.Equal(t, KindTransientStreamEnd, Kind(last.Err))
				return
			}
			last = ev
		case <-timeout:
			t.Fatal("events channel was not closed")
		}
	}
}

func TestDeepgramAdapter_SendAndFinalize(t *testing.T) {
	received := make(chan []byte, 1)
	server := mockDeepgramServer(t, func(conn *websocket.Conn) {
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.BinaryMessage {
				select {
				case received <- data:
				default:
				}
				continue
			}
			if strings.Contains(string(data), "CloseStream") {
				_ = conn.WriteJSON(deepgramWSResponse{
					Type:        "Results",
					SpeechFinal: true,
					Channel:     &deepgramChannel{Alternatives: []deepgramAlternative{{Transcript: "listo"}}},
				})
			}
		}
	})
	defer server.Close()

	adapter := NewDeepgramAdapter(wsEndpoint(server), "test-key", "nova-2", "es", nil, WithDeepgramRetries(0))
	require.NoError(t, adapter.Start(context.Background(), ""))
	defer adapter.Close()

	require.NoError(t, adapter.SendChunk([]byte{1, 2, 3, 4}))
	select {
	case data := <-received:
		require.Equal(t, []byte{1, 2, 3, 4}, data)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received audio")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, adapter.Finalize(ctx))
}

func TestNormalizeDeepgramLanguage(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"es-ES":  "es",
		"es_ES":  "es",
		"es-419": "es-419",
		"en":     "en",
		"en-US":  "en-US",
		"pt-BR":  "pt-BR",
		"fr-FR":  "fr",
	}
	for in, want := range tests {
		require.Equal(t, want, normalizeDeepgramLanguage(in), in)
	}
}
