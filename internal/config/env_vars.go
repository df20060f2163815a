package config

import (
	"fmt"
	"strings"
)

const (
	portKey     = "port"
	appNameKey  = "app_name"
	envKey      = "env"
	baseURLKey  = "base_url"
	logLevelKey = "log_level"
)

// knownKeys limits which environment variables are read
var knownKeys = map[string]struct{}{
	portKey: {}, appNameKey: {}, envKey: {}, baseURLKey: {}, logLevelKey: {},
	apiURLKey: {}, apiTimeoutKey: {}, apiUploadTimeoutKey: {},
	sessionBackendKey: {}, redisURLKey: {}, sessionTTLKey: {}, cookieSecureKey: {}, sessionFileKey: {},
	loginRateKey: {}, loginBurstKey: {}, trustedProxiesKey: {},
	corsOriginsKey: {},
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
}

type EnvVars struct {
	source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.str(portKey, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.str(appNameKey, "BAY SA WARR")
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.str(envKey, "DEV"))
}

// GetBaseURL returns the public URL of the web front-end (e.g., "https://baysawarr.com")
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.str(baseURLKey, "http://localhost:8080"), "/")
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.str(logLevelKey, "info"))
}
