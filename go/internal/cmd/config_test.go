package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "PORT", "LOG_LEVEL", "DEFAULT_DURATION_SEC", "ROSTER_BACKEND",
		"NATS_URL", "NATS_SUBJECT_PREFIX", "ARCHIVE_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.Draft.DefaultDurationSec)
	assert.Equal(t, rosterBackendMemory, cfg.Draft.RosterBackend)
	assert.Equal(t, "draft.events", cfg.Events.SubjectPrefix)
	assert.Empty(t, cfg.Events.NATSURL)
	assert.False(t, cfg.needsDatabase())
	assert.Equal(t, []models.Member{
		{Name: "John Doe", Score: 10, Rank: 5},
		{Name: "Jane Smith", Score: 15, Rank: 3},
		{Name: "Tommy Lee", Score: 8, Rank: 7},
	}, cfg.seedMembers())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "draftroom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
draft:
  default_duration_sec: 30
  roster_backend: postgres
  seed_members:
    - name: Rey
      score: 4
      rank: 2
events:
  nats_url: nats://localhost:4222
archive:
  enabled: true
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DEFAULT_DURATION_SEC", "45")
	t.Setenv("ARCHIVE_ENABLED", "false")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 45, cfg.Draft.DefaultDurationSec)
	assert.Equal(t, rosterBackendPostgres, cfg.Draft.RosterBackend)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
	assert.False(t, cfg.Archive.Enabled)
	assert.True(t, cfg.needsDatabase())
	assert.Equal(t, []models.Member{{Name: "Rey", Score: 4, Rank: 2}}, cfg.seedMembers())
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"zero duration":   {"DEFAULT_DURATION_SEC": "0"},
		"unknown backend": {"ROSTER_BACKEND": "redis"},
		"missing file":    {"CONFIG_PATH": "/does/not/exist.yaml"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}
