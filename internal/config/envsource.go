package config

import (
	"os"

	"github.com/joho/godotenv"
)

// EnvSource is the demo binary's bootstrap knobs: where the persistence
// backend lives and how noisy logging should be. The engine's own
// MetabolismConfig/DebuffKindConfig/etc. have no business reading the
// environment; only a host's main package does.
type EnvSource struct {
	StorageDSN string
	LogLevel   string
}

// LoadEnvSource loads the first of the given .env files found (grounded on
// the multi-location godotenv.Load probe pattern) and reads
// SURVIVALCORE_STORAGE_DSN/SURVIVALCORE_LOG_LEVEL, falling back to sane
// demo defaults when unset.
func LoadEnvSource(envFiles ...string) EnvSource {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}

	src := EnvSource{
		StorageDSN: "survivalcore.db",
		LogLevel:   "info",
	}
	if v := os.Getenv("SURVIVALCORE_STORAGE_DSN"); v != "" {
		src.StorageDSN = v
	}
	if v := os.Getenv("SURVIVALCORE_LOG_LEVEL"); v != "" {
		src.LogLevel = v
	}
	return src
}
