package config

type Config interface {
	EnvConfig
	APIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type APIConfig interface {
	GetBaseURL() string
	GetTimeout() string
	GetCredentialsFile() string
}

type mainConfig struct {
	EnvVars
	API
}

func New() Config {
	return mainConfig{}
}
