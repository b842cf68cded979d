package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/fin")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fin")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL_MINUTES", "nope")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ADMIN_EMAIL", " Boss@Example.com ")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "boss@example.com", cfg.AdminEmail)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Empty(t, cfg.RecurringSweepSchedule)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("FINCONTROL_API_URL", "http://api.example/")
	t.Setenv("FINCONTROL_PREFS", "")
	t.Setenv("FINCONTROL_TIMEOUT", "")
	t.Setenv("FINCONTROL_ADMIN_EMAIL", " boss@fleet.test ")
	cfg := LoadClient()
	assert.Equal(t, "http://api.example", cfg.APIURL)
	assert.Equal(t, "fincontrol.db", cfg.PrefsPath)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.Equal(t, "boss@fleet.test", cfg.AdminEmail)
}
