package config

import "os"

// KeySource represents where a credential comes from.
type KeySource string

const (
	KeySourceEnv    KeySource = "env"
	KeySourceConfig KeySource = "config"
	KeySourceNone   KeySource = "none"
)

// KeyStatus represents the status of a credential.
type KeyStatus struct {
	Name   string    `json:"name"`
	Source KeySource `json:"source"`
	IsSet  bool      `json:"is_set"`
	Masked string    `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckKeys returns the status of the credentials intrinsic can use.
func CheckKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("SEC User-Agent", cfg.SEC.UserAgent, false, "INTRINSIC_SEC_USER_AGENT"),
		checkKey("FRED API Key", cfg.Bonds.FREDAPIKey, true, "INTRINSIC_BONDS_FRED_API_KEY", "FRED_API_KEY"),
		checkKey("Database URL", cfg.Store.DatabaseURL, true, "INTRINSIC_STORE_DATABASE_URL", "DATABASE_URL"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, secret bool, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	if secret {
		status.Masked = maskKey(value)
	} else {
		status.Masked = value
	}
	return status
}

// maskKey masks a secret for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
