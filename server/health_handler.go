package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const healthPingTimeout = 2 * time.Second

type healthResponse struct {
	Status  string `json:"status"`
	App     string `json:"app"`
	Env     string `json:"env"`
	Backend string `json:"session_backend"`
	Redis   string `json:"redis,omitempty"`
}

// HealthHandler reports liveness, and Redis reachability when sessions live there
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:  "ok",
			App:     s.config.GetAppName(),
			Env:     s.env,
			Backend: "cookie",
		}
		status := http.StatusOK

		if s.redis != nil {
			resp.Backend = configRedisBackend
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			err := s.redis.Ping(ctx).Err()
			cancel()
			if err != nil {
				log.Err(err).Msg("Health: redis ping failed")
				resp.Status, resp.Redis = "degraded", "unreachable"
				status = http.StatusServiceUnavailable
			} else {
				resp.Redis = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
