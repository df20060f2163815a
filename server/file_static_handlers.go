package server

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed static/*
var staticFiles embed.FS

var errHiddenAsset = errors.New("hidden asset")

// StaticFilesFS is the embedded static/ tree rooted at its top level.
var StaticFilesFS = sync.OnceValue(func() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("[server StaticFilesFS] " + err.Error())
	}
	return sub
})

// assetETags caches the content hash of each served asset; the embedded files never change.
var assetETags sync.Map

// StreamFile writes one embedded asset. Dot files and directories are reported as
// not found and a matching If-None-Match gets a 304.
func StreamFile(w http.ResponseWriter, r *http.Request, name string) error {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(name) || name == "." {
		return fmt.Errorf("[server StreamFile] %q: %w", name, fs.ErrInvalid)
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return fmt.Errorf("[server StreamFile] %q: %w", name, errHiddenAsset)
		}
	}

	data, err := fs.ReadFile(StaticFilesFS(), name)
	if err != nil {
		return fmt.Errorf("[server StreamFile] read %s: %w", name, err)
	}

	etag := assetETag(name, data)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("[server StreamFile] write %s: %w", name, err)
	}
	return nil
}

func assetETag(name string, data []byte) string {
	if v, ok := assetETags.Load(name); ok {
		return v.(string)
	}
	sum := sha256.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	assetETags.Store(name, etag)
	return etag
}
