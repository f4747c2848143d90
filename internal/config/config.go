package config

import (
	"os"
)

// AuthMode selects how the task routes are assembled. "required" mounts the
// bearer-token middleware and scopes every task operation to its owner;
// "disabled" mounts the same handlers without the gate, making the task list
// global. Exactly one mode is active per deployment.
const (
	AuthModeRequired = "required"
	AuthModeDisabled = "disabled"
)

type Config struct {
	Port          string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	JWTSecret     string
	AuthMode      string
	AllowedOrigin string
	GinMode       string
}

func Load() *Config {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "taskuser"),
		DBPassword:    getEnv("DB_PASSWORD", "taskpassword"),
		DBName:        getEnv("DB_NAME", "task_tracker"),
		DBPath:        getEnv("DB_PATH", "./tasks.db"),
		JWTSecret:     getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AuthMode:      getEnv("AUTH_MODE", AuthModeRequired),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		GinMode:       getEnv("GIN_MODE", "debug"),
	}

	if cfg.AuthMode != AuthModeDisabled {
		cfg.AuthMode = AuthModeRequired
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
