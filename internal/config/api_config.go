package config

import "time"

const (
	apiURLKey           = "api_url"
	apiTimeoutKey       = "api_timeout"
	apiUploadTimeoutKey = "api_upload_timeout"
)

// APIConfig locates the remote REST API
type APIConfig interface {
	GetAPIURL() string
	GetAPITimeout() time.Duration
	GetAPIUploadTimeout() time.Duration
}

type API struct {
	source
}

var _ APIConfig = API{}

func (a API) GetAPIURL() string {
	return a.str(apiURLKey, "http://localhost:4000/api")
}

func (a API) GetAPITimeout() time.Duration {
	return a.duration(apiTimeoutKey, 30*time.Second)
}

// GetAPIUploadTimeout is used for file uploads only
func (a API) GetAPIUploadTimeout() time.Duration {
	return a.duration(apiUploadTimeoutKey, 2*time.Minute)
}

func (s source) duration(key string, def time.Duration) time.Duration {
	if s.k == nil || !s.k.Exists(key) {
		return def
	}
	if d := s.k.Duration(key); d > 0 {
		return d
	}
	return def
}
