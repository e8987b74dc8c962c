package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/VideoClient/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "does-not-exist")
	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, "360p", cfg.Render.Quality)
	assert.Equal(t, 800, cfg.Render.Width)
	assert.Equal(t, 30*time.Second, cfg.Engine.JoinTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SDK.SignatureTTL)
	assert.Equal(t, "guest", cfg.Session.Name)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
session:
  topic: from-file
  name: file-name
render:
  quality: 720p
`), 0o600))
	t.Setenv("VIDEOCLIENT_SESSION_NAME", "env-name")

	fs := config.Flags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--session.group_session"}))

	cfg, err := config.Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Session.Topic)
	assert.Equal(t, "env-name", cfg.Session.Name)
	assert.Equal(t, "720p", cfg.Render.Quality)
	assert.True(t, cfg.Session.GroupSession)
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{}
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingTopic)

	cfg.Session.Topic = "t"
	assert.Error(t, cfg.Validate())

	cfg.SDK.Key, cfg.SDK.Secret = "k", "s"
	assert.NoError(t, cfg.Validate())

	cfg = &config.Config{Session: config.SessionConfig{Topic: "t", Signature: "jwt"}}
	assert.NoError(t, cfg.Validate())
}
