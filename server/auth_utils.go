package server

import (
	"net/http"
	"net/url"
	"strings"
)

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// redirectWithFlash redirects and shows a confirmation on the next page
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, flash string) {
	redirectSuccess(w, r, withQuery(path, "flash", flash))
}

func withQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + key + "=" + url.QueryEscape(value)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// followReset redirects to the location of a reset requested during this request
// (logout, or an API 401). It reports whether a redirect was written.
func followReset(w http.ResponseWriter, r *http.Request) bool {
	location, ok := requestFrom(r).nav.Location()
	if !ok {
		return false
	}
	redirectSuccess(w, r, location)
	return true
}

// safeNext only accepts local paths as post-login destinations
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
