package config

import "os"

const (
	appNameVar   = "APP_NAME"
	baseURLVar   = "API_BASE_URL"
	timeoutVar   = "API_TIMEOUT"
	credsFileVar = "CREDENTIALS_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Storefront")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

type API struct{}

var _ APIConfig = API{}

// GetBaseURL returns the backend address all requests are issued against.
func (API) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:6789")
}

// GetTimeout returns the per-request timeout as a time.Duration string,
// e.g. "10s".
func (API) GetTimeout() string {
	return GetEnv(timeoutVar, "10s")
}

// GetCredentialsFile returns the path for the persisted session, or "" for
// the filestore default location.
func (API) GetCredentialsFile() string {
	return GetEnv(credsFileVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
