package mockapi

import (
	"net/http"
	"path"
	"strings"

	"github.com/jrsteele09/baysawarr-web/apiclient"
)

func (s *Server) initRoutes() {
	p := s.prefix

	s.mux.HandleFunc("POST "+p+"/auth/login", s.login)
	s.mux.HandleFunc("GET "+p+"/auth/me", s.me)

	// Public reads
	registerReads(s, p+"/products", s.products)
	registerReads(s, p+"/blogs", s.blogs)
	registerReads(s, p+"/formations", s.formations)
	registerReads(s, p+"/events", s.events)

	// Admin writes
	registerWrites(s, p+"/products", s.products)
	registerWrites(s, p+"/blogs", s.blogs)
	registerWrites(s, p+"/formations", s.formations)
	registerWrites(s, p+"/events", s.events)

	// Enrollments: public create, member read of own, admin for the rest
	s.mux.HandleFunc("POST "+p+"/enrollments", s.createEnrollment)
	s.mux.HandleFunc("GET "+p+"/enrollments/me", s.myEnrollments)
	s.mux.HandleFunc("GET "+p+"/enrollments", s.adminOnly(listHandler(s.enrollments)))
	s.mux.HandleFunc("GET "+p+"/enrollments/{id}", s.adminOnly(getHandler(s.enrollments)))
	s.mux.HandleFunc("PUT "+p+"/enrollments/{id}", s.adminOnly(updateHandler(s.enrollments)))
	s.mux.HandleFunc("DELETE "+p+"/enrollments/{id}", s.adminOnly(deleteHandler(s.enrollments)))
	s.mux.HandleFunc("PATCH "+p+"/enrollments/{id}/status", s.adminOnly(s.updateEnrollmentStatus))

	// Contacts: public create, admin read
	s.mux.HandleFunc("POST "+p+"/contacts", createHandler(s.contacts))
	s.mux.HandleFunc("GET "+p+"/contacts", s.adminOnly(listHandler(s.contacts)))
	s.mux.HandleFunc("DELETE "+p+"/contacts/{id}", s.adminOnly(deleteHandler(s.contacts)))

	s.mux.HandleFunc("POST "+p+"/products/{id}/image", s.adminOnly(s.uploadProductImage))
	s.mux.HandleFunc("GET "+p+"/admin/stats", s.adminOnly(s.stats))

	s.mux.HandleFunc(p+"/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
}

func registerReads[T any](s *Server, base string, c *collection[T]) {
	s.mux.HandleFunc("GET "+base, listHandler(c))
	s.mux.HandleFunc("GET "+base+"/{id}", getHandler(c))
}

func registerWrites[T any](s *Server, base string, c *collection[T]) {
	s.mux.HandleFunc("POST "+base, s.adminOnly(createHandler(c)))
	s.mux.HandleFunc("PUT "+base+"/{id}", s.adminOnly(updateHandler(c)))
	s.mux.HandleFunc("DELETE "+base+"/{id}", s.adminOnly(deleteHandler(c)))
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireAdmin(w, r) {
			return
		}
		next(w, r)
	}
}

func listHandler[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, c.list())
	}
}

func getHandler[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := c.get(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeData(w, http.StatusOK, item)
	}
}

func createHandler[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decodeBody(w, r, &item); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		*c.idOf(&item) = ""
		writeData(w, http.StatusCreated, c.create(item))
	}
}

func updateHandler[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decodeBody(w, r, &item); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, ok := c.update(r.PathValue("id"), item)
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeData(w, http.StatusOK, updated)
	}
}

func deleteHandler[T any](c *collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.delete(r.PathValue("id")) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req apiclient.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	acc, err := s.users.getByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if !checkPasswordHash(req.Password, acc.passwordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.IssueToken(acc.user.ID, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	user := acc.user
	writeJSON(w, http.StatusOK, apiclient.LoginResult{Token: token, User: &user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, p.user)
}

func (s *Server) createEnrollment(w http.ResponseWriter, r *http.Request) {
	var e apiclient.Enrollment
	if err := decodeBody(w, r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if e.Email == "" || e.FirstName == "" || e.LastName == "" {
		writeError(w, http.StatusBadRequest, "firstName, lastName and email are required")
		return
	}
	e.ID = ""
	e.Status = apiclient.EnrollmentPending
	e.CreatedAt = s.now().UTC()
	writeData(w, http.StatusCreated, s.enrollments.create(e))
}

func (s *Server) myEnrollments(w http.ResponseWriter, r *http.Request) {
	p, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	mine := []apiclient.Enrollment{}
	for _, e := range s.enrollments.list() {
		if strings.EqualFold(e.Email, p.user.Email) {
			mine = append(mine, e)
		}
	}
	writeData(w, http.StatusOK, mine)
}

func (s *Server) updateEnrollmentStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status apiclient.EnrollmentStatus `json:"status"`
	}
	if err := decodeBody(w, r, &body); err != nil || !body.Status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be pending, approved or rejected")
		return
	}
	updated, ok := s.enrollments.modify(r.PathValue("id"), func(e *apiclient.Enrollment) {
		e.Status = body.Status
	})
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	updated, ok := s.products.modify(id, func(p *apiclient.Product) {
		p.ImageURL = "/uploads/products/" + id + "/" + path.Base(header.Filename)
	})
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	pending := 0
	for _, e := range s.enrollments.list() {
		if e.Status == apiclient.EnrollmentPending {
			pending++
		}
	}
	writeData(w, http.StatusOK, apiclient.Stats{
		Enrollments:        s.enrollments.count(),
		PendingEnrollments: pending,
		Products:           s.products.count(),
		Blogs:              s.blogs.count(),
		Formations:         s.formations.count(),
		Events:             s.events.count(),
		Contacts:           s.contacts.count(),
	})
}
