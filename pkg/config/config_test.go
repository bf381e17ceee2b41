package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	c, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, 10, c.GUEST_CALCULATION_LIMIT)
	require.Equal(t, 2, c.GUEST_NOTE_LIMIT)
	require.Equal(t, 10, c.GUEST_HISTORY_LIMIT)
	require.Equal(t, 500, c.NOTE_MAX_LENGTH)
	require.Equal(t, 14*24*time.Hour, c.SESSION_TTL)
	require.True(t, c.CSRF_ENFORCE)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-file\nGUEST_CALCULATION_LIMIT=3\nSESSION_TTL=1h\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\nCOOKIE_SECURE=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv не перезаписывает уже выставленные переменные, поэтому чистим их
	for _, key := range []string{"JWT_SECRET", "GUEST_CALCULATION_LIMIT", "SESSION_TTL", "CORS_ALLOWED_ORIGINS", "COOKIE_SECURE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "from-file", c.JWT_SECRET)
	require.Equal(t, 3, c.GUEST_CALCULATION_LIMIT)
	require.Equal(t, time.Hour, c.SESSION_TTL)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORS_ALLOWED_ORIGINS)
	require.True(t, c.COOKIE_SECURE)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig("")
		require.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("bad integer", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("GUEST_NOTE_LIMIT", "two")
		_, err := LoadConfig("")
		require.ErrorContains(t, err, "GUEST_NOTE_LIMIT")
	})

	t.Run("bad log format", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("LOG_FORMAT", "xml")
		_, err := LoadConfig("")
		require.ErrorContains(t, err, "LOG_FORMAT")
	})
}
