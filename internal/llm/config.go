// Package llm provides the knowledge-service client used as one unreliable
// candidate source. Replies are treated as suggestions, never ground truth.
package llm

// ModelTier represents the capability level requested for a call.
type ModelTier string

const (
	// TierLite is for simple tasks: name extraction, classification.
	TierLite ModelTier = "lite"
	// TierStandard is for structured suggestion tasks: candidate URL lists,
	// chain-code lookup.
	TierStandard ModelTier = "standard"
)

// Config holds the model configuration for the knowledge service.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model name for a tier, falling back to lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
