package config

type Config interface {
	EnvConfig
	APIConfig
	CookieConfig
	IdentityConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	API
	Cookies
	Identity
}

// New returns a config resolved from environment variables and defaults only.
func New() Config {
	return newMainConfig(&FileValues{})
}

// Load returns a config that consults the YAML file at path after environment
// variables and before defaults. A missing file or empty path is not an error.
func Load(path string) (Config, error) {
	values, err := LoadFile(path)
	if err != nil {
		return newMainConfig(&FileValues{}), err
	}
	return newMainConfig(values), nil
}

func newMainConfig(values *FileValues) mainConfig {
	return mainConfig{
		EnvVars:  EnvVars{file: values},
		API:      API{file: values},
		Cookies:  Cookies{file: values},
		Identity: Identity{file: values},
	}
}
