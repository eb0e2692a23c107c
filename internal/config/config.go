package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	ServiceHost string
	ServicePort string
	GinMode     string
}

// Load reads configuration from the environment. A .env file is honored
// when present. An empty DatabaseURL selects an ephemeral in-memory store.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		ServiceHost: getEnv("SERVICE_HOST", "0.0.0.0"),
		ServicePort: getEnv("SERVICE_PORT", "8000"),
		GinMode:     getEnv("GIN_MODE", "debug"),
	}
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return c.ServiceHost + ":" + c.ServicePort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
