package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/camden-git/castingvitrine/media"
	"github.com/go-chi/chi/v5"
)

// AssetServer serves stored files of one asset directory, mounted as /api/{subDir}/*. Names
// are resolved through the store, so nothing outside its root is reachable.
func AssetServer(store media.Store, subDir string) http.HandlerFunc {
	log.Printf("handlers: serving stored assets under /api/%s/", subDir)

	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "*")
		if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
			WriteAPIError(w, http.StatusBadRequest, CodeInvalidParameter, "invalid asset path")
			return
		}
		// dotfiles are writes still in flight
		if strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}

		rc, info, err := store.Get(path.Join(subDir, name))
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Printf("handlers: asset %s/%s: %v", subDir, name, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
			return
		}
		defer rc.Close()
		if info.IsDir() {
			http.NotFound(w, r)
			return
		}

		setPlaceholderHeaders(w)
		serveStored(w, r, rc, info)
	}
}

// serveStored writes an opened asset, with range and conditional request support when the
// reader can seek.
func serveStored(w http.ResponseWriter, r *http.Request, rc io.ReadCloser, info os.FileInfo) {
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, info.Name(), info.ModTime(), rs)
		return
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("handlers: error streaming %s: %v", info.Name(), err)
	}
}
