package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/akeren/logfox/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDevelopmentEnv_AllowsDevLikeEnvs(t *testing.T) {
	allowed := []string{"", "dev", "development", "local", "test", "testing", "DEV", "  Local  "}

	for _, env := range allowed {
		t.Run(env, func(t *testing.T) {
			if !IsDevelopmentEnv(env) {
				t.Fatalf("expected %q to be a development env", env)
			}
		})
	}
}

func TestIsDevelopmentEnv_RejectsProdAndOtherEnvs(t *testing.T) {
	rejected := []string{"prod", "production", "staging", "preprod", " Production ", "qa"}

	for _, env := range rejected {
		t.Run(env, func(t *testing.T) {
			if IsDevelopmentEnv(env) {
				t.Fatalf("expected %q not to be a development env", env)
			}
		})
	}
}

func TestInitializeEnvFile_LoadsWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "landing.env")
	require.NoError(t, os.WriteFile(envPath, []byte("SITE_NAME=FromFile\nSITE_TITLE=File title\n"), 0o644))

	t.Setenv("SKIP_DOTENV", "")
	t.Setenv("ENV_FILE", envPath+", ")
	t.Setenv("SITE_NAME", "FromProcess")
	t.Setenv("SITE_TITLE", "")
	require.NoError(t, os.Unsetenv("SITE_TITLE"))

	InitializeEnvFile(log.NewLogger(io.Discard, slog.LevelError))

	assert.Equal(t, "FromProcess", os.Getenv("SITE_NAME"))
	assert.Equal(t, "File title", os.Getenv("SITE_TITLE"))
}

func TestGetAppEnv(t *testing.T) {
	t.Setenv(AppEnvKey, "  Staging ")
	assert.Equal(t, "staging", GetAppEnv())
}
