package config

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetLoginPath() string
	GetCredentialsFile() string
	GetManifestFile() string
	GetHTTPTimeoutSeconds() int
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
