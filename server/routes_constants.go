package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public pages
	RouteHome       = "/"
	RouteAbout      = "/about"
	RouteEvents     = "/events"
	RouteEvent      = "/events/{id}"
	RouteBlog       = "/blog"
	RouteBlogPost   = "/blog/{id}"
	RouteFormations = "/formations"
	RouteProducts   = "/products"
	RouteContact    = "/contact"
	RouteEnroll     = "/enroll"

	// Auth Routes - Login & Logout
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// Member Routes
	RouteDashboard = "/dashboard"

	// Admin Routes
	RouteAdmin                 = "/admin"
	RouteAdminCreate           = "/admin/{resource}"
	RouteAdminUpdate           = "/admin/{resource}/{id}"
	RouteAdminDelete           = "/admin/{resource}/{id}/delete"
	RouteAdminEnrollmentStatus = "/admin/enrollments/{id}/status"
	RouteAdminProductImage     = "/admin/products/{id}/image"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
	RouteStaticImg = "/img/{file}"
)
