package config

import (
	"os"
	"strconv"
)

const (
	appNameVar         = "APP_NAME"
	apiBaseURLVar      = "HACKBOARD_API_URL"
	loginPathVar       = "HACKBOARD_LOGIN_PATH"
	credentialsFileVar = "HACKBOARD_CREDENTIALS_FILE"
	manifestFileVar    = "HACKBOARD_MANIFEST_FILE"
	httpTimeoutVar     = "HACKBOARD_HTTP_TIMEOUT_SECONDS"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Hackboard")
}

// GetAPIBaseURL returns the base URL of the hackboard API (e.g.
// "https://api.hackboard.dev"). There is no default: an empty value is a
// configuration error surfaced by the components that issue requests.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "")
}

// GetLoginPath returns the login surface path users are sent back to when the
// session is unrecoverable.
func (EnvVars) GetLoginPath() string {
	return GetEnv(loginPathVar, "/login")
}

func (EnvVars) GetCredentialsFile() string {
	return GetEnv(credentialsFileVar, "")
}

func (EnvVars) GetManifestFile() string {
	return GetEnv(manifestFileVar, "")
}

func (EnvVars) GetHTTPTimeoutSeconds() int {
	value := GetEnv(httpTimeoutVar, "10")
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 10
	}
	return seconds
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
