package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logship/logsh/internal/core/domain"
)

func testEnv(vars map[string]string, home string, homeErr error) Env {
	return Env{
		Getenv:  func(k string) string { return vars[k] },
		HomeDir: func() (string, error) { return home, homeErr },
	}
}

func TestResolvePath_Default(t *testing.T) {
	path, err := ResolvePath(testEnv(nil, "/home/alice", nil))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/alice", ".logsh", "config.json"), path)
}

func TestResolvePath_DefaultCreatesNothing(t *testing.T) {
	home := t.TempDir()

	path, err := ResolvePath(testEnv(nil, home, nil))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".logsh", "config.json"), path)
	assert.NoDirExists(t, filepath.Join(home, ".logsh"))
}

func TestResolvePath_NoHome(t *testing.T) {
	_, err := ResolvePath(testEnv(nil, "", errors.New("$HOME is not defined")))

	assert.True(t, errors.Is(err, domain.ErrNoHome))
}

func TestResolvePath_Override(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o600))

	path, err := ResolvePath(testEnv(map[string]string{EnvConfigPath: existing}, "/home/alice", nil))

	require.NoError(t, err)
	assert.Equal(t, existing, path)
	assert.True(t, Exists(path))
}

func TestResolvePath_OverrideMustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	_, err := ResolvePath(testEnv(map[string]string{EnvConfigPath: missing}, "/home/alice", nil))

	assert.True(t, errors.Is(err, domain.ErrInvalidConfigPath))
	assert.Contains(t, err.Error(), missing)
	assert.False(t, Exists(missing))
}

func TestResolvePath_OverrideDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := ResolvePath(testEnv(map[string]string{EnvConfigPath: dir}, "/home/alice", nil))

	assert.True(t, errors.Is(err, domain.ErrInvalidConfigPath))
}

func TestResolvePath_OSEnv(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(existing, nil, 0o600))
	t.Setenv(EnvConfigPath, existing)

	path, err := ResolvePath(OSEnv())

	require.NoError(t, err)
	assert.Equal(t, existing, path)
}
