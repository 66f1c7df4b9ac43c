package config

import "time"

type APIConfig interface {
	GetBaseURL() string
	GetLocalAPIURL() string
	GetLiveAPIURL() string
	GetRequestTimeout() time.Duration
	GetUploadTimeout() time.Duration
}

type API struct {
	file *FileValues
}

var _ APIConfig = API{}

// GetBaseURL picks the API origin for the configured deployment environment.
func (a API) GetBaseURL() string {
	if (EnvVars{file: a.file}).GetEnv() == EnvLive {
		return a.GetLiveAPIURL()
	}
	return a.GetLocalAPIURL()
}

func (a API) GetLocalAPIURL() string {
	return lookup("LOCAL_API_URL", a.file.API.LocalURL, "http://localhost:4000")
}

func (a API) GetLiveAPIURL() string {
	return lookup("LIVE_API_URL", a.file.API.LiveURL, "https://api.bountip.com")
}

func (a API) GetRequestTimeout() time.Duration {
	return lookupDuration("REQUEST_TIMEOUT", a.file.API.RequestTimeout, 30*time.Second)
}

func (a API) GetUploadTimeout() time.Duration {
	return lookupDuration("UPLOAD_TIMEOUT", a.file.API.UploadTimeout, 2*time.Minute)
}
