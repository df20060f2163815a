package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/session"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// pageSet holds every page parsed together with the shared layout
type pageSet map[string]*template.Template

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006 15:04")
	},
	"inputDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"inputDatetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02T15:04")
	},
	"money": func(amount float64, currency string) string {
		if currency == "" {
			currency = "XOF"
		}
		return fmt.Sprintf("%.0f %s", amount, currency)
	},
	"join": strings.Join,
	"statusLabel": func(s apiclient.EnrollmentStatus) string {
		switch s {
		case apiclient.EnrollmentApproved:
			return "Approuvée"
		case apiclient.EnrollmentRejected:
			return "Refusée"
		}
		return "En attente"
	},
	"add": func(a, b int) int { return a + b },
	"pager": func(tab string, number, pages, total int) pagerView {
		return pagerView{Tab: tab, Number: number, Pages: pages, Total: total}
	},
	"rowRef": func(tab, id string) rowRef { return rowRef{Tab: tab, ID: id} },
}

// pagerView feeds the admin "pager" partial
type pagerView struct {
	Tab    string
	Number int
	Pages  int
	Total  int
}

func (p pagerView) HasPrev() bool { return p.Number > 1 }
func (p pagerView) HasNext() bool { return p.Number < p.Pages }
func (p pagerView) Prev() int     { return p.Number - 1 }
func (p pagerView) Next() int     { return p.Number + 1 }

type rowRef struct {
	Tab string
	ID  string
}

// parsePages parses every file under templates/pages with layout.html
func parsePages() (pageSet, error) {
	fsys := TemplateFilesFS()
	names, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(pageSet, len(names))
	for _, name := range names {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(fsys, "layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("[server parsePages] %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = tmpl
	}
	return pages, nil
}

// pageData is what every page template receives
type pageData struct {
	AppName string
	Title   string
	Active  string
	User    *users.User
	Loading bool
	Flash   string
	Error   string
	Year    int
	Content any
}

func (s *Server) newPage(r *http.Request, title, active string, content any) pageData {
	p := pageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Active:  active,
		Flash:   r.URL.Query().Get("flash"),
		Error:   r.URL.Query().Get("error"),
		Year:    time.Now().Year(),
		Content: content,
	}
	if store, err := session.FromContext(r.Context()); err == nil {
		st := store.Snapshot()
		p.User = st.User
		p.Loading = st.IsLoading
	}
	return p
}

// render executes a page into a buffer first so that a template error never leaves a
// half written response
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error().Str("page", name).Msg("Unknown page template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Err(err).Str("page", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorContent struct {
	Status  int
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error", s.newPage(r, http.StatusText(status), "", errorContent{Status: status, Message: message}))
}

// handleAPIError turns a failed API call into a response. A reset requested by the
// call (401) wins over everything else. It reports whether a response was written.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	if followReset(w, r) {
		return true
	}

	status := apiclient.StatusCode(err)
	switch status {
	case http.StatusNotFound:
		s.renderError(w, r, http.StatusNotFound, "La page demandée est introuvable.")
	case http.StatusForbidden:
		s.renderError(w, r, http.StatusForbidden, "Vous n'avez pas accès à cette ressource.")
	default:
		log.Err(err).Str("path", r.URL.Path).Int("api_status", status).Msg("API call failed")
		s.renderError(w, r, http.StatusBadGateway, "Le service est momentanément indisponible. Veuillez réessayer plus tard.")
	}
	return true
}
