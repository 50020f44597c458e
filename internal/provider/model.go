package provider

// Model represents a recognition model with full metadata
type Model struct {
	ID                 string          // unique identifier (e.g., "nova-3", "whisper-1")
	Name               string          // display name
	Description        string          // short description
	Streaming          bool            // delivers interim results while audio flows
	AdapterType        string          // which adapter to use (see Adapter* constants)
	SupportedLanguages []string        // base language codes, empty means any
	Endpoint           *EndpointConfig // where the adapter connects
}

// EndpointConfig holds HTTP/WebSocket endpoint configuration
type EndpointConfig struct {
	BaseURL string // e.g., "https://api.openai.com" or "wss://api.deepgram.com"
	Path    string // e.g., "/v1/listen"
}

// SupportsLanguage returns true if the model accepts the given base language code.
func (m *Model) SupportsLanguage(code string) bool {
	if code == "" || len(m.SupportedLanguages) == 0 {
		return true
	}
	for _, supported := range m.SupportedLanguages {
		if supported == code {
			return true
		}
	}
	return false
}
