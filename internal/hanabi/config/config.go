// Package config loads Hanabi's configuration. Values are resolved in three
// layers, later layers winning: built-in defaults, an optional YAML file,
// and HANABI_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bdobrica/Hanabi/common/environment"
	"github.com/bdobrica/Hanabi/internal/hanabi/convo"
)

// Config is the full application configuration.
type Config struct {
	// Log controls the global slog setup.
	Log LogConfig `yaml:"log"`

	// DatabasePath is the SQLite file holding transcripts, summaries, and
	// the Matrix sync token.
	DatabasePath string `yaml:"database_path"`

	// MaxContextMessages caps the per-session conversation window.
	MaxContextMessages int `yaml:"max_context_messages"`

	LLM          LLMConfig          `yaml:"llm"`
	Moderation   ModerationConfig   `yaml:"moderation"`
	Events       EventsConfig       `yaml:"events"`
	Ticketmaster TicketmasterConfig `yaml:"ticketmaster"`
	Matrix       MatrixConfig       `yaml:"matrix"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// SummaryModel is the model used for memory summarisation. Empty means
	// use Model.
	SummaryModel string        `yaml:"summary_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ModerationConfig configures the content-moderation pre-check.
type ModerationConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"` // empty means reuse the LLM API key
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// EventsConfig configures the event-search API client.
type EventsConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// TicketmasterConfig configures the Ticketmaster Discovery API client.
type TicketmasterConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// MatrixConfig configures the Matrix bot front-end. All fields empty
// disables the front-end.
type MatrixConfig struct {
	Homeserver  string   `yaml:"homeserver"`
	UserID      string   `yaml:"user_id"`
	AccessToken string   `yaml:"access_token"`
	Rooms       []string `yaml:"rooms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		DatabasePath:       "./hanabi.db",
		MaxContextMessages: convo.DefaultMaxMessages,
		LLM: LLMConfig{
			Model: "gpt-4.1",
		},
		Moderation: ModerationConfig{
			Enabled: true,
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays HANABI_* environment variables onto the config.
func (c *Config) applyEnv() {
	c.Log.Level = environment.StringOr("HANABI_LOG_LEVEL", c.Log.Level)
	c.Log.Format = environment.StringOr("HANABI_LOG_FORMAT", c.Log.Format)

	c.DatabasePath = environment.StringOr("HANABI_DATABASE_PATH", c.DatabasePath)
	c.MaxContextMessages = environment.IntOr("HANABI_MAX_CONTEXT_MESSAGES", c.MaxContextMessages)

	c.LLM.APIKey = environment.StringOr("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = environment.StringOr("HANABI_LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = environment.StringOr("HANABI_LLM_MODEL", c.LLM.Model)
	c.LLM.SummaryModel = environment.StringOr("HANABI_SUMMARY_MODEL", c.LLM.SummaryModel)
	c.LLM.Timeout = environment.DurationOr("HANABI_LLM_TIMEOUT", c.LLM.Timeout)

	c.Moderation.Enabled = environment.BoolOr("HANABI_MODERATION_ENABLED", c.Moderation.Enabled)
	c.Moderation.APIKey = environment.StringOr("HANABI_MODERATION_API_KEY", c.Moderation.APIKey)
	c.Moderation.BaseURL = environment.StringOr("HANABI_MODERATION_BASE_URL", c.Moderation.BaseURL)
	c.Moderation.Model = environment.StringOr("HANABI_MODERATION_MODEL", c.Moderation.Model)

	c.Events.APIKey = environment.StringOr("EVENT_SEARCH_API_KEY", c.Events.APIKey)
	c.Events.BaseURL = environment.StringOr("HANABI_EVENTS_BASE_URL", c.Events.BaseURL)

	c.Ticketmaster.APIKey = environment.StringOr("TICKETMASTER_API_KEY", c.Ticketmaster.APIKey)
	c.Ticketmaster.BaseURL = environment.StringOr("HANABI_TICKETMASTER_BASE_URL", c.Ticketmaster.BaseURL)

	c.Matrix.Homeserver = environment.StringOr("MATRIX_HOMESERVER", c.Matrix.Homeserver)
	c.Matrix.UserID = environment.StringOr("MATRIX_USER_ID", c.Matrix.UserID)
	c.Matrix.AccessToken = environment.StringOr("MATRIX_ACCESS_TOKEN", c.Matrix.AccessToken)
	c.Matrix.Rooms = environment.StringSliceOr("MATRIX_ROOMS", c.Matrix.Rooms)
}

// ModerationAPIKey returns the moderation key, falling back to the LLM key.
func (c *Config) ModerationAPIKey() string {
	if c.Moderation.APIKey != "" {
		return c.Moderation.APIKey
	}
	return c.LLM.APIKey
}

// Validate checks the invariants that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config: OPENAI_API_KEY (or llm.api_key) is required")
	}
	if c.MaxContextMessages != 0 && c.MaxContextMessages < convo.MinMessages {
		return fmt.Errorf("config: max_context_messages must be at least %d (0 selects the default)", convo.MinMessages)
	}
	return nil
}

// Describe renders the resolved configuration on one line for the startup
// log. Secret values appear verbatim; pass the result through a redaction
// step fed by Secrets before logging it.
func (c *Config) Describe() string {
	return fmt.Sprintf(
		"log=%s/%s db=%s max_context=%d llm=[model=%s summary_model=%s base_url=%s api_key=%s] moderation=[enabled=%t model=%s api_key=%s] events=[base_url=%s api_key=%s] ticketmaster=[api_key=%s] matrix=[homeserver=%s user=%s access_token=%s rooms=%d]",
		c.Log.Level, c.Log.Format, c.DatabasePath, c.MaxContextMessages,
		c.LLM.Model, c.LLM.SummaryModel, c.LLM.BaseURL, c.LLM.APIKey,
		c.Moderation.Enabled, c.Moderation.Model, c.Moderation.APIKey,
		c.Events.BaseURL, c.Events.APIKey,
		c.Ticketmaster.APIKey,
		c.Matrix.Homeserver, c.Matrix.UserID, c.Matrix.AccessToken, len(c.Matrix.Rooms))
}

// Secrets lists every credential present in the configuration, for
// redacting log text.
func (c *Config) Secrets() []string {
	return []string{
		c.LLM.APIKey,
		c.Moderation.APIKey,
		c.Events.APIKey,
		c.Ticketmaster.APIKey,
		c.Matrix.AccessToken,
	}
}

// MatrixEnabled reports whether the Matrix front-end is configured.
func (c *Config) MatrixEnabled() bool {
	return c.Matrix.Homeserver != "" && c.Matrix.UserID != "" && c.Matrix.AccessToken != ""
}
