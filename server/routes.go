package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/baysawarr-web/guard"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	requireSession := guard.RequireSession(RouteLogin)
	requireAdmin := guard.RequireRole(users.RoleAdmin)

	// PUBLIC
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.HomeHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAbout, ChainMiddleware(s.AboutHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteEvents, ChainMiddleware(s.EventsHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteEvent, ChainMiddleware(s.EventHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteBlog, ChainMiddleware(s.BlogHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteBlogPost, ChainMiddleware(s.BlogPostHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteFormations, ChainMiddleware(s.FormationsHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteProducts, ChainMiddleware(s.ProductsHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteContact, ChainMiddleware(s.ContactPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteContact, ChainMiddleware(s.ContactSubmissionHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteEnroll, ChainMiddleware(s.EnrollPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteEnroll, ChainMiddleware(s.EnrollSubmissionHandler(), s.PageMiddleware()...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware()...))
	// rejected attempts never reach the session provider
	loginLimit := s.loginLimit.Middleware(s.metrics.LoginLimited.Inc, s.renderRateLimited)
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(loginLimit, s.SessionProvider)...))
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	// MEMBER
	s.RegisterRouteFunc("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.PageMiddleware(requireSession)...))

	// ADMIN (session gate first, then the page level role check)
	s.RegisterRouteFunc("GET "+RouteAdmin, ChainMiddleware(s.AdminHandler(), s.PageMiddleware(requireSession, requireAdmin)...))
	s.RegisterRouteFunc("POST "+RouteAdminCreate, ChainMiddleware(s.AdminCreateHandler(), s.PageMiddleware(requireSession, requireAdmin)...))
	s.RegisterRouteFunc("POST "+RouteAdminUpdate, ChainMiddleware(s.AdminUpdateHandler(), s.PageMiddleware(requireSession, requireAdmin)...))
	s.RegisterRouteFunc("POST "+RouteAdminDelete, ChainMiddleware(s.AdminDeleteHandler(), s.PageMiddleware(requireSession, requireAdmin)...))
	s.RegisterRouteFunc("POST "+RouteAdminEnrollmentStatus, ChainMiddleware(s.AdminEnrollmentStatusHandler(), s.PageMiddleware(requireSession, requireAdmin)...))
	s.RegisterRouteFunc("POST "+RouteAdminProductImage, ChainMiddleware(s.AdminProductImageHandler(), s.PageMiddleware(requireSession, requireAdmin)...))

	// OPERATIONAL
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS "+RouteHealth, ChainMiddleware(http.NotFound, s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
	s.RegisterRouteFunc("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
	s.RegisterRouteFunc("GET "+RouteStaticImg, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
	s.RegisterRouteFunc("GET /{file}", ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			log.Debug().Str("file", filePath).Err(err).Msg("Static file not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
