// internal/workers/voice-command/dispatch-voice-intent/config.go
package dispatchvoiceintent

import (
	"time"

	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/dispatch"
	"voice-command-workers/internal/models"
)

type Config struct {
	Timeout          time.Duration
	EnforceAllowList bool
	AllowedRoutes    []string
	RejectedFeedback string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		AllowedRoutes: models.RoutePaths(models.NavigationRoutes),
	}
}

// ConfigFrom overlays the voice route settings on the defaults.
func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	routes := cfg.Voice.Routes
	c.EnforceAllowList = routes.EnforceAllowList
	if len(routes.Allowed) > 0 {
		c.AllowedRoutes = routes.Allowed
	}
	c.RejectedFeedback = routes.RejectedFeedback
	return c
}

// Dispatcher builds the dispatcher this config describes.
func (c *Config) Dispatcher() *dispatch.Dispatcher {
	if !c.EnforceAllowList {
		return dispatch.NewDispatcher()
	}
	return dispatch.NewDispatcher(
		dispatch.WithAllowedRoutes(c.AllowedRoutes),
		dispatch.WithRejectedFeedback(c.RejectedFeedback),
	)
}
