package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodup/internal/structures"
)

const testYaml = `
webServer:
  host: 127.0.0.1
  port: 8090
storage:
  inMemory: true
logger:
  level: info
  mode: 420
  dir: /tmp
dedup:
  dryRun: false
  imageTTL: 48h
admins:
  - "100"
  - "200"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigProvider_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, testYaml)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "NoDupDaemon", conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, 8090, conf.WebServer.Port)
	assert.Equal(t, 4, conf.Dedup.SimilarityThreshold)
	assert.Equal(t, 48*time.Hour, conf.Dedup.ImageTTL)
	assert.False(t, conf.Dedup.DryRun)
	assert.Equal(t, []string{"github.com", "stackoverflow.com"}, conf.Dedup.IgnoredDomains)
	assert.Equal(t, 20, conf.Leaderboard.MaxLen)
	assert.Equal(t, 30, conf.Leaderboard.LastLenHard)
	assert.Equal(t, []string{"100", "200"}, conf.Admins)
	assert.True(t, conf.IsAdmin("200"))
	assert.False(t, conf.IsAdmin("300"))
}

func TestNewConfigProvider_EnvOverrides(t *testing.T) {
	path := writeConfig(t, testYaml)
	t.Setenv("NODUP_SIMILARITY_THRESHOLD", "6")
	t.Setenv("NODUP_ADMINS", "7:8")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, 6, conf.Dedup.SimilarityThreshold)
	assert.Equal(t, []string{"7", "8"}, conf.Admins)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestParseAdmins(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, parseAdmins("1:2: 3"))
	assert.Equal(t, []string{"4", "5"}, parseAdmins([]interface{}{"4", "5"}))
	assert.Nil(t, parseAdmins(nil))
}
