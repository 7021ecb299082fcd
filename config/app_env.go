package config

import (
	"strings"

	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

// InitializeEnvFile loads ENV_FILE (comma-separated, default .env) without
// overriding variables that are already set. SKIP_DOTENV=true disables it.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Info("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	files := envFiles()
	if err := godotenv.Load(files...); err != nil {
		logger.Warn("No env file loaded", "files", files, "error", err.Error())
		return
	}

	logger.Info("Environment variables loaded", "files", files)
}

func envFiles() []string {
	var files []string
	for _, f := range strings.Split(utils.GetEnvTrimmedOrDefault("ENV_FILE", ".env"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

// IsDevelopmentEnv reports whether appEnv names a local or test deployment.
// An empty APP_ENV counts as development.
func IsDevelopmentEnv(appEnv string) bool {
	switch strings.ToLower(strings.TrimSpace(appEnv)) {
	case "", "dev", "development", "local", "test", "testing":
		return true
	default:
		return false
	}
}
