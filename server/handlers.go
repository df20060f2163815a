package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/internal/utils"
	"github.com/rs/zerolog/log"
)

// home page section sizes
const (
	homeEvents   = 3
	homeProducts = 3
	homePosts    = 3
)

type homeContent struct {
	Events   []apiclient.Event
	Products []apiclient.Product
	Posts    []apiclient.Blog
}

// HomeHandler renders the landing page. A failing section is left empty rather than
// failing the whole page.
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := requestFrom(r).api
		ctx := r.Context()
		var content homeContent

		events, err := api.Events.List(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Home: events unavailable")
		}
		content.Events = upcomingEvents(events, time.Now(), homeEvents)

		products, err := api.Products.List(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Home: products unavailable")
		}
		content.Products = featuredProducts(products, homeProducts)

		posts, err := api.Blogs.List(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Home: blog unavailable")
		}
		content.Posts = latestPosts(posts, homePosts)

		// the API calls above may have invalidated a stale session
		if followReset(w, r) {
			return
		}
		s.render(w, r, http.StatusOK, "home", s.newPage(r, "Accueil", RouteHome, content))
	}
}

func (s *Server) AboutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "about", s.newPage(r, "À propos", RouteAbout, nil))
	}
}

func (s *Server) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := requestFrom(r).api.Events.List(r.Context())
		if s.handleAPIError(w, r, err) {
			return
		}
		slices.SortStableFunc(events, func(a, b apiclient.Event) int { return a.StartsAt.Compare(b.StartsAt) })
		s.render(w, r, http.StatusOK, "events", s.newPage(r, "Événements", RouteEvents, events))
	}
}

func (s *Server) EventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := requestFrom(r).api.Events.Get(r.Context(), r.PathValue("id"))
		if s.handleAPIError(w, r, err) {
			return
		}
		s.render(w, r, http.StatusOK, "event", s.newPage(r, event.Title, RouteEvents, event))
	}
}

func (s *Server) BlogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := requestFrom(r).api.Blogs.List(r.Context())
		if s.handleAPIError(w, r, err) {
			return
		}
		s.render(w, r, http.StatusOK, "blog", s.newPage(r, "Blog", RouteBlog, latestPosts(posts, len(posts))))
	}
}

func (s *Server) BlogPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := requestFrom(r).api.Blogs.Get(r.Context(), r.PathValue("id"))
		if s.handleAPIError(w, r, err) {
			return
		}
		s.render(w, r, http.StatusOK, "post", s.newPage(r, post.Title, RouteBlog, post))
	}
}

func (s *Server) FormationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formations, err := requestFrom(r).api.Formations.List(r.Context())
		if s.handleAPIError(w, r, err) {
			return
		}
		slices.SortStableFunc(formations, func(a, b apiclient.Formation) int { return a.StartDate.Compare(b.StartDate) })
		s.render(w, r, http.StatusOK, "formations", s.newPage(r, "Formations", RouteFormations, formations))
	}
}

// ProductsHandler lists products, optionally filtered with ?category=
func (s *Server) ProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := requestFrom(r).api.Products.List(r.Context())
		if s.handleAPIError(w, r, err) {
			return
		}
		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			products = slices.DeleteFunc(products, func(p apiclient.Product) bool {
				return !strings.EqualFold(p.Category, category)
			})
		}
		s.render(w, r, http.StatusOK, "products", s.newPage(r, "Produits", RouteProducts, products))
	}
}

type formContent[T any] struct {
	Form   T
	Errors fieldErrors
}

func (s *Server) ContactPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form apiclient.Contact
		if u := requestFrom(r).store.User(); u != nil {
			form.Name, form.Email = u.DisplayName(), u.Email
		}
		s.render(w, r, http.StatusOK, "contact", s.newPage(r, "Contact", RouteContact, formContent[apiclient.Contact]{Form: form}))
	}
}

func (s *Server) ContactSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form, fe := decodeContact(r)
		page := func(status int, fe fieldErrors, msg string) {
			p := s.newPage(r, "Contact", RouteContact, formContent[apiclient.Contact]{Form: form, Errors: fe})
			p.Error = msg
			s.render(w, r, status, "contact", p)
		}
		if fe = s.check(form, fe); fe != nil {
			page(http.StatusUnprocessableEntity, fe, "")
			return
		}

		_, err := requestFrom(r).api.Contacts.Create(r.Context(), form)
		if apiclient.StatusCode(err) == http.StatusBadRequest {
			page(http.StatusBadRequest, nil, "Votre message n'a pas pu être envoyé. Vérifiez les champs saisis.")
			return
		}
		if s.handleAPIError(w, r, err) {
			return
		}
		log.Info().Str("email", form.Email).Msg("Contact message sent")
		redirectWithFlash(w, r, RouteContact, "Merci, votre message a bien été envoyé.")
	}
}

func (s *Server) EnrollPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form apiclient.Enrollment
		if u := requestFrom(r).store.User(); u != nil {
			form.FirstName, form.LastName, form.Email, form.Phone = u.FirstName, u.LastName, u.Email, utils.Value(u.Phone)
			if u.Company != nil {
				form.Company, form.Sector, form.Country = u.Company.Name, u.Company.Sector, u.Company.Country
			}
		}
		s.render(w, r, http.StatusOK, "enroll", s.newPage(r, "Adhésion", RouteEnroll, formContent[apiclient.Enrollment]{Form: form}))
	}
}

func (s *Server) EnrollSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form, fe := decodeEnrollment(r)
		page := func(status int, fe fieldErrors, msg string) {
			p := s.newPage(r, "Adhésion", RouteEnroll, formContent[apiclient.Enrollment]{Form: form, Errors: fe})
			p.Error = msg
			s.render(w, r, status, "enroll", p)
		}
		if fe = s.check(form, fe); fe != nil {
			page(http.StatusUnprocessableEntity, fe, "")
			return
		}

		_, err := requestFrom(r).api.Enrollments.Create(r.Context(), form)
		if apiclient.StatusCode(err) == http.StatusBadRequest {
			page(http.StatusBadRequest, nil, "Votre candidature n'a pas pu être enregistrée. Vérifiez les champs saisis.")
			return
		}
		if s.handleAPIError(w, r, err) {
			return
		}
		log.Info().Str("email", form.Email).Msg("Enrollment submitted")
		redirectWithFlash(w, r, RouteHome, "Merci ! Votre candidature a été transmise, nous revenons vers vous rapidement.")
	}
}

// upcomingEvents returns at most n events that have not ended, soonest first
func upcomingEvents(events []apiclient.Event, now time.Time, n int) []apiclient.Event {
	out := make([]apiclient.Event, 0, len(events))
	for _, e := range events {
		end := e.EndsAt
		if end.IsZero() {
			end = e.StartsAt
		}
		if !end.Before(now) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b apiclient.Event) int { return a.StartsAt.Compare(b.StartsAt) })
	return out[:min(n, len(out))]
}

func featuredProducts(products []apiclient.Product, n int) []apiclient.Product {
	out := make([]apiclient.Product, 0, n)
	for _, p := range products {
		if p.Featured && len(out) < n {
			out = append(out, p)
		}
	}
	return out
}

// latestPosts returns at most n posts, newest first
func latestPosts(posts []apiclient.Blog, n int) []apiclient.Blog {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b apiclient.Blog) int { return b.PublishedAt.Compare(a.PublishedAt) })
	return out[:min(n, len(out))]
}
