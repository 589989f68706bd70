package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.EqualValues(t, 1<<20, cfg.MaxBodyBytes)
	assert.True(t, cfg.ResolveRoles)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_TIMEOUT", "750ms")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 750*time.Millisecond, cfg.DBTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "library.yaml")
	require.NoError(t, os.WriteFile(file, []byte("APP_ADDR: \":7070\"\nGEMINI_MODEL: gemini-test\n"), 0o600))

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("GEMINI_MODEL", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "from-env", cfg.GeminiModel)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_TIMEOUT", "0s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFiles_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_ADDR=:1111\nLIB_ONLY_IN_FILE=yes\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_ADDR", ":2222")
	t.Setenv("LIB_ONLY_IN_FILE", "")
	os.Unsetenv("LIB_ONLY_IN_FILE")

	LoadEnvFiles()

	assert.Equal(t, ":2222", os.Getenv("APP_ADDR"))
	assert.Equal(t, "yes", os.Getenv("LIB_ONLY_IN_FILE"))
}
