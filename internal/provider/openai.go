package provider

import "strings"

// OpenAIProvider implements Provider for OpenAI Whisper. It has no live
// interim results; audio is sent in fixed chunks.
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) RequiresAPIKey() bool {
	return true
}

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) IsLocal() bool {
	return false
}

func (p *OpenAIProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.openai.com", Path: "/v1/audio/transcriptions"}
	return []Model{
		{
			ID:          "whisper-1",
			Name:        "Whisper 1",
			Description: "OpenAI's production speech-to-text model",
			AdapterType: AdapterWhisper,
			Endpoint:    endpoint,
		},
		{
			ID:          "gpt-4o-mini-transcribe",
			Name:        "GPT-4o Mini Transcribe",
			Description: "Cheaper, lower latency",
			AdapterType: AdapterWhisper,
			Endpoint:    endpoint,
		},
	}
}

func (p *OpenAIProvider) DefaultModel() string {
	return "whisper-1"
}
