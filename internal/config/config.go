package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// insecureDefaultSecret keeps the service bootable with zero
// configuration in development. Validate refuses it everywhere else.
const insecureDefaultSecret = "dominus-insecure-dev-secret"

type Config struct {
	AppPort string
	AppEnv  string

	AuthSecret string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	OracleURL    string
	OracleAPIKey string
}

func Load() Config {

	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := Config{

		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "development"),

		AuthSecret: getenv("AUTH_SECRET", insecureDefaultSecret),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		OracleURL:    os.Getenv("ORACLE_URL"),
		OracleAPIKey: os.Getenv("ORACLE_API_KEY"),
	}

	return cfg

}

// Validate rejects configurations that must never reach production,
// most importantly the fallback signing secret.
func (c Config) Validate() error {
	if c.AuthSecret == insecureDefaultSecret && !c.Development() {
		return errors.New("config: AUTH_SECRET must be set outside development")
	}
	if c.DatabaseDSN == "" {
		return errors.New("config: DATABASE_DSN is required")
	}
	return nil
}

func (c Config) Development() bool {
	return c.AppEnv == "development"
}

func (c Config) Production() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
