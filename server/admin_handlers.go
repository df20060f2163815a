package server

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/internal/pagination"
	"github.com/rs/zerolog/log"
)

// maxImageUpload bounds the multipart body of a product image upload
const maxImageUpload = 10 << 20

// back-office tabs, also the {resource} segment of the admin form routes
const (
	tabEnrollments = "enrollments"
	tabProducts    = "products"
	tabBlogs       = "blogs"
	tabFormations  = "formations"
	tabEvents      = "events"
	tabContacts    = "contacts"
)

type adminTab struct {
	Key   string
	Label string
}

var adminTabs = []adminTab{
	{tabEnrollments, "Candidatures"},
	{tabProducts, "Produits"},
	{tabBlogs, "Blog"},
	{tabFormations, "Formations"},
	{tabEvents, "Événements"},
	{tabContacts, "Messages"},
}

func validTab(tab string) bool {
	return slices.ContainsFunc(adminTabs, func(t adminTab) bool { return t.Key == tab })
}

type adminContent struct {
	Tab   string
	Tabs  []adminTab
	Stats *apiclient.Stats

	Enrollments pagination.Page[apiclient.Enrollment]
	Products    pagination.Page[apiclient.Product]
	Blogs       pagination.Page[apiclient.Blog]
	Formations  pagination.Page[apiclient.Formation]
	Events      pagination.Page[apiclient.Event]
	Contacts    pagination.Page[apiclient.Contact]

	// blank models for the create forms
	NewProduct   apiclient.Product
	NewBlog      apiclient.Blog
	NewFormation apiclient.Formation
	NewEvent     apiclient.Event
}

// AdminHandler renders the back-office: the stats header and one paginated tab
func (s *Server) AdminHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := requestFrom(r).api
		ctx := r.Context()

		tab := r.URL.Query().Get("tab")
		if !validTab(tab) {
			tab = tabEnrollments
		}
		number, _ := strconv.Atoi(r.URL.Query().Get("page"))

		stats, err := api.AdminStats(ctx)
		if s.handleAPIError(w, r, err) {
			return
		}

		content := adminContent{
			Tab:        tab,
			Tabs:       adminTabs,
			Stats:      stats,
			NewProduct: apiclient.Product{Currency: "XOF"},
		}
		switch tab {
		case tabEnrollments:
			content.Enrollments, err = listPage(ctx, api.Enrollments, number)
		case tabProducts:
			content.Products, err = listPage(ctx, api.Products, number)
		case tabBlogs:
			content.Blogs, err = listPage(ctx, api.Blogs, number)
		case tabFormations:
			content.Formations, err = listPage(ctx, api.Formations, number)
		case tabEvents:
			content.Events, err = listPage(ctx, api.Events, number)
		case tabContacts:
			content.Contacts, err = listPage(ctx, api.Contacts, number)
		}
		if s.handleAPIError(w, r, err) {
			return
		}

		s.render(w, r, http.StatusOK, "admin", s.newPage(r, "Administration", RouteAdmin, content))
	}
}

func listPage[T any](ctx context.Context, res apiclient.Resource[T], number int) (pagination.Page[T], error) {
	items, err := res.List(ctx)
	if err != nil {
		return pagination.Page[T]{}, err
	}
	return pagination.Paginate(items, number, pagination.DefaultSize), nil
}

// adminResource is one back-office collection. Collections without a decoder are
// read and delete only.
type adminResource interface {
	create(ctx context.Context, r *http.Request) (fieldErrors, error)
	update(ctx context.Context, id string, r *http.Request) (fieldErrors, error)
	remove(ctx context.Context, id string) error
}

var errReadOnly = errors.New("resource does not accept form writes")

type crud[T any] struct {
	s      *Server
	res    apiclient.Resource[T]
	decode func(*http.Request) (T, fieldErrors)
}

func (c crud[T]) create(ctx context.Context, r *http.Request) (fieldErrors, error) {
	item, fe, err := c.decodeAndCheck(r)
	if fe != nil || err != nil {
		return fe, err
	}
	_, err = c.res.Create(ctx, item)
	return nil, err
}

func (c crud[T]) update(ctx context.Context, id string, r *http.Request) (fieldErrors, error) {
	item, fe, err := c.decodeAndCheck(r)
	if fe != nil || err != nil {
		return fe, err
	}
	_, err = c.res.Update(ctx, id, item)
	return nil, err
}

func (c crud[T]) remove(ctx context.Context, id string) error {
	return c.res.Delete(ctx, id)
}

func (c crud[T]) decodeAndCheck(r *http.Request) (T, fieldErrors, error) {
	var zero T
	if c.decode == nil {
		return zero, nil, errReadOnly
	}
	item, fe := c.decode(r)
	return item, c.s.check(item, fe), nil
}

func (s *Server) adminResources(api *apiclient.Client) map[string]adminResource {
	return map[string]adminResource{
		tabEnrollments: crud[apiclient.Enrollment]{s: s, res: api.Enrollments},
		tabProducts:    crud[apiclient.Product]{s: s, res: api.Products, decode: decodeProduct},
		tabBlogs:       crud[apiclient.Blog]{s: s, res: api.Blogs, decode: decodeBlog},
		tabFormations:  crud[apiclient.Formation]{s: s, res: api.Formations, decode: decodeFormation},
		tabEvents:      crud[apiclient.Event]{s: s, res: api.Events, decode: decodeEvent},
		tabContacts:    crud[apiclient.Contact]{s: s, res: api.Contacts},
	}
}

// adminAction resolves {resource} and runs fn, then redirects back to the tab
func (s *Server) adminAction(flash string, fn func(ctx context.Context, res adminResource, r *http.Request) (fieldErrors, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := r.PathValue("resource")
		res, ok := s.adminResources(requestFrom(r).api)[tab]
		if !ok {
			s.renderError(w, r, http.StatusNotFound, "La page demandée est introuvable.")
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		fe, err := fn(r.Context(), res, r)
		s.finishAdminAction(w, r, tab, flash, fe, err)
	}
}

func (s *Server) finishAdminAction(w http.ResponseWriter, r *http.Request, tab, flash string, fe fieldErrors, err error) {
	back := adminTabURL(tab)
	switch {
	case fe != nil:
		redirectWithError(w, r, back, fe.summary())
	case errors.Is(err, errReadOnly):
		s.renderError(w, r, http.StatusMethodNotAllowed, "Cette ressource ne peut pas être modifiée depuis le back-office.")
	case apiclient.StatusCode(err) == http.StatusBadRequest:
		redirectWithError(w, r, back, "Le service a refusé la modification. Vérifiez les champs saisis.")
	case s.handleAPIError(w, r, err):
	default:
		log.Info().Str("resource", tab).Str("path", r.URL.Path).Msg("Back-office change applied")
		redirectWithFlash(w, r, back, flash)
	}
}

func (s *Server) AdminCreateHandler() http.HandlerFunc {
	return s.adminAction("Élément créé.", func(ctx context.Context, res adminResource, r *http.Request) (fieldErrors, error) {
		return res.create(ctx, r)
	})
}

func (s *Server) AdminUpdateHandler() http.HandlerFunc {
	return s.adminAction("Modifications enregistrées.", func(ctx context.Context, res adminResource, r *http.Request) (fieldErrors, error) {
		return res.update(ctx, r.PathValue("id"), r)
	})
}

func (s *Server) AdminDeleteHandler() http.HandlerFunc {
	return s.adminAction("Élément supprimé.", func(ctx context.Context, res adminResource, r *http.Request) (fieldErrors, error) {
		return nil, res.remove(ctx, r.PathValue("id"))
	})
}

// AdminEnrollmentStatusHandler approves, rejects or reopens an application
func (s *Server) AdminEnrollmentStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		status := apiclient.EnrollmentStatus(r.PostFormValue("status"))
		if !status.Valid() {
			redirectWithError(w, r, adminTabURL(tabEnrollments), "Statut inconnu.")
			return
		}
		_, err := requestFrom(r).api.UpdateEnrollmentStatus(r.Context(), r.PathValue("id"), status)
		s.finishAdminAction(w, r, tabEnrollments, "Statut mis à jour.", nil, err)
	}
}

// AdminProductImageHandler forwards an uploaded image to the API
func (s *Server) AdminProductImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
		if err := r.ParseMultipartForm(maxImageUpload); err != nil {
			redirectWithError(w, r, adminTabURL(tabProducts), "Image trop volumineuse ou formulaire invalide.")
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			redirectWithError(w, r, adminTabURL(tabProducts), "Veuillez choisir une image.")
			return
		}
		defer file.Close()

		_, err = requestFrom(r).api.UploadProductImage(r.Context(), r.PathValue("id"), header.Filename, file)
		s.finishAdminAction(w, r, tabProducts, "Image envoyée.", nil, err)
	}
}

func adminTabURL(tab string) string {
	return RouteAdmin + "?tab=" + tab
}

// summary flattens field errors into one line, ordered by field name
func (fe fieldErrors) summary() string {
	parts := make([]string, 0, len(fe))
	for _, field := range slices.Sorted(maps.Keys(fe)) {
		parts = append(parts, field+" : "+fe[field])
	}
	return strings.Join(parts, " ")
}
