package provider

// Provider describes a speech recognition service the session can stream from
type Provider interface {
	Name() string
	RequiresAPIKey() bool
	ValidateAPIKey(key string) bool
	IsLocal() bool
	Models() []Model
	DefaultModel() string
}

// ProviderConfig holds configuration for a single provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

var registry = make(map[string]Provider)

func init() {
	Register(&DeepgramProvider{})
	Register(&OpenAIProvider{})
}

// Register adds a provider to the registry
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found
func GetProvider(name string) Provider {
	return registry[name]
}

// ListProviders returns all registered provider names
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// FindModel returns the model with the given ID from a provider, or nil.
func FindModel(providerName, modelID string) *Model {
	p := GetProvider(providerName)
	if p == nil {
		return nil
	}
	for _, m := range p.Models() {
		if m.ID == modelID {
			m := m
			return &m
		}
	}
	return nil
}

// ModelOrDefault returns the named model, falling back to the provider default.
func ModelOrDefault(providerName, modelID string) *Model {
	if modelID != "" {
		if m := FindModel(providerName, modelID); m != nil {
			return m
		}
	}
	p := GetProvider(providerName)
	if p == nil {
		return nil
	}
	return FindModel(providerName, p.DefaultModel())
}
