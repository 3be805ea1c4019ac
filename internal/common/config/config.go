// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	APIs         APIsConfig              `mapstructure:"apis"`
	Voice        VoiceConfig             `mapstructure:"voice"`
	Server       ServerConfig            `mapstructure:"server"`
	RegistryPath string                  `mapstructure:"registry_path"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	TLSEnabled     bool   `mapstructure:"tls_enabled"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- External APIs ---

const (
	GenAIBackendGemini  = "gemini"
	GenAIBackendGateway = "gateway"
)

// GenAIConfig selects and configures the model backend. The gemini backend
// talks to the Gemini API through the SDK; the gateway backend posts to an
// HTTP service exposing /api/ai/* endpoints.
type GenAIConfig struct {
	Backend    string  `mapstructure:"backend"`
	BaseURL    string  `mapstructure:"base_url"`
	APIKey     string  `mapstructure:"api_key"`
	Model      string  `mapstructure:"model"`
	ImageModel string  `mapstructure:"image_model"`
	Timeout    int     `mapstructure:"timeout"` // milliseconds
	MaxRetries int     `mapstructure:"max_retries"`
	Creativity float32 `mapstructure:"creativity"` // temperature for product copy
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI GenAIConfig `mapstructure:"genai"`
}

// --- Voice command settings ---

type VoiceConfig struct {
	CacheTTL      int         `mapstructure:"cache_ttl"` // seconds, negative disables the cache
	MaxAudioBytes int         `mapstructure:"max_audio_bytes"`
	ImageEnabled  bool        `mapstructure:"image_enabled"`
	Routes        RouteConfig `mapstructure:"routes"`
}

type RouteConfig struct {
	EnforceAllowList bool     `mapstructure:"enforce_allow_list"`
	Allowed          []string `mapstructure:"allowed"`
	RejectedFeedback string   `mapstructure:"rejected_feedback"`
}

// CacheTTLDuration converts the configured cache TTL.
func (v VoiceConfig) CacheTTLDuration() time.Duration {
	return time.Duration(v.CacheTTL) * time.Second
}

// ServerConfig holds the health and metrics listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func normalizeBackend(b string) string {
	return strings.ToLower(strings.TrimSpace(b))
}
