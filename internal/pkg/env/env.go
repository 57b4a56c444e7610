package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// MustGetEnv returns the value for key or panics. Used for settings the
// service cannot run without (gateway token, database credentials), so a
// misconfigured deploy fails at startup instead of on the first webhook.
func MustGetEnv(key string) string {
	if val := GetEnv(key, ""); val != "" {
		return val
	}
	panic(fmt.Sprintf("required environment variable %s is not set", key))
}

func SetupEnvFile() {
	// Look for .env file in project root
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/imobipro to project root
		"../../../.env", // Fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			// Successfully loaded env file
			return
		}
	}

	// No .env file: rely on the process environment (Docker/tests).
	Env = map[string]string{}
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
