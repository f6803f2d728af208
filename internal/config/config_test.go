package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("STACK_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Server.RESTPort)
	assert.Equal(t, "badger", cfg.HighScore.Backend)
	assert.Equal(t, "StackHighestScore", cfg.HighScore.Key)
	assert.Equal(t, ":8088", cfg.Server.RESTAddr())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stack.yaml")
	yml := `
server:
  rest_port: 9000
highscore:
  backend: memory
audio:
  volume: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	t.Setenv("STACK_SERVER_REST_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.RESTPort, "переменная окружения важнее файла")
	assert.Equal(t, "memory", cfg.HighScore.Backend)
	assert.Equal(t, 0.25, cfg.Audio.Volume)
	assert.Equal(t, 60, cfg.Game.FrameRate, "незаданные поля берутся по умолчанию")
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("STACK_HIGHSCORE_BACKEND", "sqlite")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
