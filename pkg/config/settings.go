package config

import "os"

// Settings holds the small set of environment-driven options this
// service actually reads. Everything else that shapes validation
// behavior is a compiled-in constant (see constants.go) because the
// spec treats those as part of the external interface.
type Settings struct {
	VaultRegistryPath string
	LogLevel          string
}

// Load reads Settings from the environment, matching the getEnv
// fallback-default idiom used throughout this codebase.
func Load() *Settings {
	return &Settings{
		VaultRegistryPath: getEnv("VAULT_REGISTRY_PATH", "pkg/registry/vaults.json"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
