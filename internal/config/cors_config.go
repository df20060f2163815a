package config

import (
	"slices"
	"strings"
)

const corsOriginsKey = "cors_origins"

// CorsConfig gives the cross-origin policy for the operational endpoints.
type CorsConfig interface {
	GetCorsPolicy() CorsPolicy
}

type Cors struct {
	source
}

var _ CorsConfig = Cors{}

// CorsPolicy is the parsed cors_origins list. "*" admits any origin but never with
// credentials.
type CorsPolicy struct {
	Origins  []string
	Wildcard bool
	Methods  string
	Headers  string
}

// AllowOrigin gives the Access-Control-Allow-Origin value for origin and whether
// credentials may be sent. An empty value means the origin is refused.
func (p CorsPolicy) AllowOrigin(origin string) (string, bool) {
	switch {
	case origin == "":
		return "", false
	case slices.Contains(p.Origins, origin):
		return origin, true
	case p.Wildcard:
		return "*", false
	}
	return "", false
}

func (c Cors) GetCorsPolicy() CorsPolicy {
	p := CorsPolicy{
		Methods: "GET, HEAD, OPTIONS",
		Headers: "Content-Type, HX-Request, HX-Current-URL, HX-Target",
	}
	for _, o := range strings.Split(c.str(corsOriginsKey, ""), ",") {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			p.Wildcard = true
		default:
			p.Origins = append(p.Origins, o)
		}
	}
	return p
}
