package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env/.env.local next to the
// configuration file. It stops at the first file that parses. Existing
// process environment variables are not overwritten.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		envPath := filepath.Join(dir, name)
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load environment file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
		return
	}
}
