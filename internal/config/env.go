package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads dotenv files from dir into the process environment.
//
// .env never overrides variables that are already set. .env.<ENV> (ENV or
// ENVIRONMENT selects the name) and .env.local do override, in that order.
// Every file is optional.
func LoadEnvFiles(dir string) error {
	base := filepath.Join(dir, ".env")
	if fileExists(base) {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("failed to load %s: %w", base, err)
		}
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if env != "" {
		envFile := filepath.Join(dir, ".env."+env)
		if fileExists(envFile) {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	local := filepath.Join(dir, ".env.local")
	if fileExists(local) {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("failed to load %s: %w", local, err)
		}
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
