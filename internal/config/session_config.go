package config

import (
	"strconv"
	"time"
)

const (
	sessionBackendKey = "session_backend"
	redisURLKey       = "redis_url"
	sessionTTLKey     = "session_ttl"
	cookieSecureKey   = "cookie_secure"
	sessionFileKey    = "session_file"
)

const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

// SessionConfig selects where the persisted session lives
type SessionConfig interface {
	GetSessionBackend() string
	GetRedisURL() string
	GetSessionTTL() time.Duration
	GetCookieSecure() bool
	GetSessionFile() string
}

type Session struct {
	source
}

var _ SessionConfig = Session{}

func (s Session) GetSessionBackend() string {
	if s.str(sessionBackendKey, SessionBackendCookie) == SessionBackendRedis {
		return SessionBackendRedis
	}
	return SessionBackendCookie
}

func (s Session) GetRedisURL() string {
	return s.str(redisURLKey, "redis://localhost:6379/0")
}

func (s Session) GetSessionTTL() time.Duration {
	return s.duration(sessionTTLKey, 7*24*time.Hour)
}

func (s Session) GetCookieSecure() bool {
	secure, err := strconv.ParseBool(s.str(cookieSecureKey, "false"))
	return err == nil && secure
}

// GetSessionFile is where the terminal client keeps its session
func (s Session) GetSessionFile() string {
	return s.str(sessionFileKey, "")
}
