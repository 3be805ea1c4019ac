// internal/workers/voice-command/record-voice-command/config.go
package recordvoicecommand

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
