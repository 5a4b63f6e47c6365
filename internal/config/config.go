// Package config defines the configuration structure for the cropadvisor client.
// Configuration is loaded once at process start and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> struct defaults (Lowest)
//
// Any invalid value causes the command to fail immediately on startup.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the top-level configuration struct for the cropadvisor client.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"prod" validate:"required,oneof=local prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn" validate:"oneof=debug info warn error"`

	// Domain Configurations
	API      APIConfig
	HTTP     HTTPConfig
	Prefs    PrefsConfig
	Feedback FeedbackConfig
	Modules  ModulesConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// APIConfig selects the backend the client talks to.
type APIConfig struct {
	// BaseURLOverride wins over the host check when set.
	BaseURLOverride string `envconfig:"API_BASE_URL" validate:"omitempty,url"`
	// Host is the host the client considers itself served from. Empty means
	// "decide from APP_ENV".
	Host        string `envconfig:"API_HOST"`
	LocalURL    string `envconfig:"API_LOCAL_URL" default:"http://localhost:5000/api" validate:"required,url"`
	DeployedURL string `envconfig:"API_DEPLOYED_URL" default:"https://crop-health-backend.onrender.com/api" validate:"required,url"`
}

// HTTPConfig tunes the outbound client.
type HTTPConfig struct {
	Timeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	MaxRetries int           `envconfig:"HTTP_MAX_RETRIES" default:"2" validate:"min=0,max=10"`
	MinWait    time.Duration `envconfig:"HTTP_RETRY_MIN_WAIT" default:"500ms"`
	MaxWait    time.Duration `envconfig:"HTTP_RETRY_MAX_WAIT" default:"5s"`
	UserAgent  string        `envconfig:"HTTP_USER_AGENT" default:"cropadvisor/1.0"`
}

// PrefsConfig locates the persisted preferences file.
type PrefsConfig struct {
	// File is the YAML preferences path. Empty means the default under the
	// user config directory (see PrefsPath).
	File string `envconfig:"PREFS_FILE"`
}

// FeedbackConfig tunes the notification surface.
type FeedbackConfig struct {
	NotifyTTL time.Duration `envconfig:"NOTIFY_TTL" default:"5s"`
}

// ModulesConfig holds the fixed inputs of secondary fetches.
type ModulesConfig struct {
	CalendarLocation string `envconfig:"CALENDAR_LOCATION" default:"india" validate:"required"`
	TrendsDays       int    `envconfig:"TRENDS_DAYS" default:"7" validate:"min=0,max=365"`
	DefaultCrop      string `envconfig:"DEFAULT_CROP" default:"tomato" validate:"required"`
	DefaultMarket    string `envconfig:"DEFAULT_MARKET" default:"all"`
	DefaultLocation  string `envconfig:"DEFAULT_LOCATION" default:"delhi" validate:"required"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// localHosts are the hostnames treated as a local development host.
var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// IsLocalHost reports whether host is a local development host.
func IsLocalHost(host string) bool {
	return localHosts[strings.ToLower(strings.TrimSpace(host))]
}

// BaseURL performs the host check that picks the backend:
// explicit override, else the local URL for a local development host, else
// the deployed URL. The result never has a trailing slash.
func (c *Config) BaseURL() string {
	var u string
	switch {
	case c.API.BaseURLOverride != "":
		u = c.API.BaseURLOverride
	case c.API.Host != "":
		if IsLocalHost(c.API.Host) {
			u = c.API.LocalURL
		} else {
			u = c.API.DeployedURL
		}
	case c.Environment == localEnv:
		u = c.API.LocalURL
	default:
		u = c.API.DeployedURL
	}
	return strings.TrimRight(u, "/")
}

// PrefsPath returns the preferences file location.
func (c *Config) PrefsPath() string {
	if c.Prefs.File != "" {
		return c.Prefs.File
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cropadvisor", "prefs.yaml")
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
