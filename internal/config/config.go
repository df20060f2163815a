// Package config resolves settings from an optional YAML file overridden by
// environment variables. Each concern is exposed through its own interface.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	SecurityConfig
	CorsConfig
}

type mainConfig struct {
	EnvVars
	API
	Session
	Security
	Cors
}

// New resolves configuration from the environment only
func New() Config {
	cfg, _ := Load("")
	return cfg
}

// Load reads the YAML file at path (skipped when empty) and then applies
// environment overrides. Keys are the lower-cased variable names, e.g. api_url.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return mainConfig{}, fmt.Errorf("[config Load] read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(key)
			if _, ok := knownKeys[key]; !ok {
				return "", nil
			}
			return key, value
		},
	}), nil); err != nil {
		return mainConfig{}, fmt.Errorf("[config Load] environment: %w", err)
	}

	src := source{k: k}
	return mainConfig{
		EnvVars:  EnvVars{src},
		API:      API{src},
		Session:  Session{src},
		Security: Security{src},
		Cors:     Cors{src},
	}, nil
}

// source is the resolved key space shared by every concern
type source struct {
	k *koanf.Koanf
}

func (s source) str(key, def string) string {
	if s.k == nil || !s.k.Exists(key) || s.k.String(key) == "" {
		return def
	}
	return s.k.String(key)
}
