package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/logship/logsh/internal/core/domain"
)

const settingsFileName = "settings.toml"

// Settings holds tunables read from settings.toml.
type Settings struct {
	HTTP    HTTPSettings    `toml:"http"`
	OAuth   OAuthSettings   `toml:"oauth"`
	Logging LoggingSettings `toml:"logging"`
}

// HTTPSettings configures the shared HTTP client.
type HTTPSettings struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// OAuthSettings configures the interactive OAuth flows.
type OAuthSettings struct {
	MaxPollSeconds int  `toml:"max_poll_seconds"`
	OpenBrowser    bool `toml:"open_browser"`
	RedirectPort   int  `toml:"redirect_port"`
}

// LoggingSettings configures log output.
type LoggingSettings struct {
	File    bool `toml:"file"`
	Verbose bool `toml:"verbose"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		HTTP:  HTTPSettings{TimeoutSeconds: 30},
		OAuth: OAuthSettings{MaxPollSeconds: 900, OpenBrowser: true},
	}
}

// Timeout returns the HTTP request timeout.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.HTTP.TimeoutSeconds) * time.Second
}

// MaxPoll returns the upper bound on device-flow polling.
func (s Settings) MaxPoll() time.Duration {
	return time.Duration(s.OAuth.MaxPollSeconds) * time.Second
}

// SettingsPath returns the settings.toml path for a configuration file.
func SettingsPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), settingsFileName)
}

// LogPath returns the rotating log file path for a configuration file.
func LogPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "logs", "logsh.log")
}

// LoadSettings reads settings.toml next to configPath. Keys missing from the
// file keep their defaults.
func LoadSettings(configPath string) (Settings, error) {
	settings := DefaultSettings()
	path := SettingsPath(configPath)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, domain.NewConfigError(domain.ErrConfigRead, path, err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), domain.NewConfigError(domain.ErrConfigDeserialize, path, err)
	}

	if settings.HTTP.TimeoutSeconds <= 0 {
		settings.HTTP.TimeoutSeconds = DefaultSettings().HTTP.TimeoutSeconds
	}
	if settings.OAuth.MaxPollSeconds <= 0 {
		settings.OAuth.MaxPollSeconds = DefaultSettings().OAuth.MaxPollSeconds
	}
	return settings, nil
}
