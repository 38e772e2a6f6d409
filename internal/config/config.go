package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	OAuthConfig
	DatabaseConfig
	RedisConfig
	SecurityConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetIssuer() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Database
	Redis
	Security
}

func New() Config {
	return mainConfig{}
}

// Load reads the nearest .env file, if any, into the process environment and returns the config.
// Variables already set in the environment win over the file.
func Load() Config {
	loadDotEnv()
	return New()
}

func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
