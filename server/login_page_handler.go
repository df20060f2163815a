package server

import (
	"net/http"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/rs/zerolog/log"
)

// Login page messages
const (
	msgLoginRequired     = "Veuillez saisir une adresse email valide et votre mot de passe."
	msgLoginInvalid      = "Email ou mot de passe incorrect."
	msgLoginBadRequest   = "La demande de connexion est invalide. Vérifiez les champs saisis."
	msgLoginUnknown      = "Aucun compte ne correspond à cette adresse email."
	msgLoginRateLimited  = "Trop de tentatives de connexion. Veuillez patienter avant de réessayer."
	msgLoginServerError  = "Le serveur a rencontré une erreur. Veuillez réessayer plus tard."
	msgLoginNetworkError = "Impossible de joindre le serveur. Vérifiez votre connexion internet."
	msgLoginFailed       = "La connexion a échoué. Veuillez réessayer."
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Message string
	Next    string
	Email   string // Preserve email on error
}

// LoginPageHandler displays the login form (GET /login). A visitor who already has a
// session is sent to their landing page.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := safeNext(r.URL.Query().Get("next"))
		if u := requestFrom(r).store.User(); u != nil {
			redirectSuccess(w, r, landingPage(u, next))
			return
		}

		data := LoginPageData{
			Message: r.URL.Query().Get("error"),
			Next:    next,
			Email:   r.URL.Query().Get("email"),
		}
		s.renderLogin(w, r, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := decodeLogin(r)
		data := LoginPageData{Next: safeNext(form.Next), Email: form.Email}
		if fe := s.check(form, nil); fe != nil {
			data.Message = msgLoginRequired
			s.renderLogin(w, r, http.StatusUnprocessableEntity, data)
			return
		}

		store := requestFrom(r).store
		if _, err := store.Login(r.Context(), form.Email, form.Password); err != nil {
			status := apiclient.StatusCode(err)
			log.Debug().Err(err).Int("api_status", status).Msg("Login failed")
			data.Message = loginErrorMessage(err)
			s.renderLogin(w, r, loginFailureStatus(status), data)
			return
		}

		redirectSuccess(w, r, landingPage(store.User(), data.Next))
	}
}

// LogoutHandler ends the session and follows the reset to the root page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestFrom(r).store.Logout(r.Context())
		if !followReset(w, r) {
			redirectSuccess(w, r, RouteHome)
		}
	}
}

func (s *Server) renderRateLimited(w http.ResponseWriter, r *http.Request) {
	data := LoginPageData{Email: r.PostFormValue("email"), Next: safeNext(r.PostFormValue("next")), Message: msgLoginRateLimited}
	s.renderLogin(w, r, http.StatusTooManyRequests, data)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginPageData) {
	s.render(w, r, status, "login", s.newPage(r, "Connexion", RouteLogin, data))
}

// loginErrorMessage maps a failed login to what the visitor is told
func loginErrorMessage(err error) string {
	if apiclient.IsNetwork(err) {
		return msgLoginNetworkError
	}
	switch status := apiclient.StatusCode(err); {
	case status == http.StatusUnauthorized:
		return msgLoginInvalid
	case status == http.StatusBadRequest:
		return msgLoginBadRequest
	case status == http.StatusNotFound:
		return msgLoginUnknown
	case status == http.StatusTooManyRequests:
		return msgLoginRateLimited
	case status >= http.StatusInternalServerError:
		return msgLoginServerError
	}
	return msgLoginFailed
}

func loginFailureStatus(apiStatus int) int {
	switch apiStatus {
	case http.StatusUnauthorized, http.StatusNotFound:
		return http.StatusUnauthorized
	case http.StatusBadRequest, http.StatusTooManyRequests:
		return apiStatus
	}
	return http.StatusBadGateway
}

// landingPage is where a user goes after logging in
func landingPage(u *users.User, next string) string {
	if next != "" {
		return next
	}
	if u.IsAdmin() {
		return RouteAdmin
	}
	return RouteDashboard
}

type dashboardContent struct {
	Enrollments []apiclient.Enrollment
}

// DashboardHandler shows the member's profile and own applications
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollments, err := requestFrom(r).api.MyEnrollments(r.Context())
		if s.handleAPIError(w, r, err) {
			return
		}
		s.render(w, r, http.StatusOK, "dashboard", s.newPage(r, "Mon espace", RouteDashboard, dashboardContent{Enrollments: enrollments}))
	}
}
