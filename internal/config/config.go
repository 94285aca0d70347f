package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds configuration for the FlowPlan server. Flags and an
// optional YAML file feed it; flags win.
type ServerConfig struct {
	Addr      string `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel  string `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `yaml:"log_format"` // Log format: text, json
	DBPath    string `yaml:"db_path"`    // SQLite database path (default ~/.flowplan/flowplan.db, ":memory:" for testing)

	CORSOrigins []string `yaml:"cors_origins"` // Allowed browser origins

	WorkHours    string `yaml:"work_hours"`    // Default daily window, "HH:MM-HH:MM"
	Timezone     string `yaml:"timezone"`      // Default timezone label, passed through to events
	CalendarName string `yaml:"calendar_name"` // Display name in exported calendars

	RetentionDays int `yaml:"retention_days"` // Saved plans older than this are pruned (0 disables)

	Gemini GeminiConfig `yaml:"gemini"`
	CalDAV CalDAVConfig `yaml:"caldav"`
}

// GeminiConfig configures the LLM generator. An empty key leaves the planner
// on its local fallback path.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// CalDAVConfig configures the optional calendar push target.
type CalDAVConfig struct {
	URL          string `yaml:"url"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	CalendarPath string `yaml:"calendar_path"`
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":8080",
		LogLevel:      "info",
		LogFormat:     "text",
		CORSOrigins:   []string{"http://localhost:5173"},
		WorkHours:     "09:00-17:00",
		Timezone:      "Asia/Ho_Chi_Minh",
		CalendarName:  "FlowPlan",
		RetentionDays: 90,
		Gemini:        GeminiConfig{Model: "gemini-2.0-flash"},
	}
}

// LoadFile overlays a YAML config file onto the defaults. A missing path is
// not an error when empty; a named but unreadable file is.
func LoadFile(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
