// internal/workers/voice-command/classify-voice-command/config.go
package classifyvoicecommand

import (
	"time"

	"voice-command-workers/internal/common/config"
)

type Config struct {
	Backend       string
	GenAIBaseURL  string
	Timeout       time.Duration
	MaxRetries    int
	MaxAudioBytes int
	CacheTTL      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Backend:       config.GenAIBackendGemini,
		Timeout:       30 * time.Second,
		MaxRetries:    2,
		MaxAudioBytes: 10 << 20,
		CacheTTL:      24 * time.Hour,
	}
}

// ConfigFrom overlays the application config on the defaults.
func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	genai := cfg.APIs.GenAI
	if genai.Backend != "" {
		c.Backend = genai.Backend
	}
	c.GenAIBaseURL = genai.BaseURL
	if genai.Timeout > 0 {
		c.Timeout = config.GetDuration(genai.Timeout)
	}
	c.MaxRetries = genai.MaxRetries
	if cfg.Voice.MaxAudioBytes > 0 {
		c.MaxAudioBytes = cfg.Voice.MaxAudioBytes
	}
	c.CacheTTL = cfg.Voice.CacheTTLDuration()
	return c
}
