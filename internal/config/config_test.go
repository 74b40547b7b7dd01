package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, "127.0.0.1:8080", c.Addr())
	assert.Equal(t, "dew_session", c.Session.CookieName)
	assert.Equal(t, 3600, c.Session.MaxAge)
	assert.True(t, c.Session.HTTPOnly)
	assert.False(t, c.RateLimit.Enabled)
	require.NoError(t, c.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	c := Default()
	c.Server.Port = 70000
	assert.Error(t, c.Validate())

	c = Default()
	c.RateLimit.Enabled = true
	c.RateLimit.MaxRequests = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.Session.SameSite = "sideways"
	assert.Error(t, c.Validate())
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeTemp(t, "app.yml", "database:\n  dsn: postgres://localhost/app\nfeature: on\n")

	vals, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", vals["database.dsn"])
	assert.Equal(t, "on", vals["feature"])
}

func TestLoadFileJSON(t *testing.T) {
	path := writeTemp(t, "app.json", `{"port": 9000, "name": "demo"}`)

	vals, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", vals["port"])
	assert.Equal(t, "demo", vals["name"])
}

func TestLoadFileDotEnv(t *testing.T) {
	path := writeTemp(t, "app.env", "API_KEY=abc123\nDEBUG=true\n")

	vals, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", vals["api_key"])
	assert.Equal(t, "true", vals["debug"])
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	_, err := LoadFile("settings.toml")
	assert.Error(t, err)
}
