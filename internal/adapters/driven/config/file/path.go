// Package file stores the logsh configuration as a JSON document on disk
// and reads the optional settings.toml next to it.
package file

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/logship/logsh/internal/core/domain"
)

const (
	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "LOGSH_CONFIG_PATH"

	configDirName  = ".logsh"
	configFileName = "config.json"
)

// Env abstracts environment and home-directory lookups.
type Env struct {
	Getenv  func(string) string
	HomeDir func() (string, error)
}

// OSEnv reads from the process environment.
func OSEnv() Env {
	return Env{Getenv: os.Getenv, HomeDir: os.UserHomeDir}
}

// ResolvePath returns the configuration file path. LOGSH_CONFIG_PATH must
// name an existing file; otherwise ~/.logsh/config.json is used whether or
// not it exists yet.
func ResolvePath(env Env) (string, error) {
	if override := env.Getenv(EnvConfigPath); override != "" {
		info, err := os.Stat(override)
		if err != nil {
			return "", domain.NewConfigError(domain.ErrInvalidConfigPath, override, err)
		}
		if info.IsDir() {
			return "", domain.NewConfigError(domain.ErrInvalidConfigPath, override, errors.New("path is a directory"))
		}
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", domain.NewConfigError(domain.ErrInvalidConfigPath, override, err)
		}
		return abs, nil
	}

	home, err := env.HomeDir()
	if err != nil || home == "" {
		return "", domain.NewConfigError(domain.ErrNoHome, "", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Exists reports whether a regular file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
