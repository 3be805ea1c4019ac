// internal/workers/product/suggest-product-details/config.go
package suggestproductdetails

import (
	"time"

	"voice-command-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	Creativity   float32
	ImageEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    45 * time.Second,
		Creativity: 0.7,
	}
}

func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	if cfg.APIs.GenAI.Timeout > 0 {
		c.Timeout = config.GetDuration(cfg.APIs.GenAI.Timeout)
	}
	if cfg.APIs.GenAI.Creativity > 0 {
		c.Creativity = cfg.APIs.GenAI.Creativity
	}
	c.ImageEnabled = cfg.Voice.ImageEnabled
	return c
}
