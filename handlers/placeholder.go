package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/camden-git/castingvitrine/media"
	"github.com/camden-git/castingvitrine/metrics"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPlaceholderWidth  = 400
	defaultPlaceholderHeight = 288
	placeholderCacheDuration = 365 * 24 * time.Hour
)

type PlaceholderHandler struct {
	Processor *media.Processor
	Store     media.Store
	Metrics   *metrics.Manager // may be nil
}

func (ph *PlaceholderHandler) served(result string) {
	if ph.Metrics != nil {
		ph.Metrics.PlaceholderServed(result)
	}
}

// dimension parses a path dimension. Empty means the default.
func dimension(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", media.ErrInvalidDimensions, raw)
	}
	return v, nil
}

func setPlaceholderHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", int(placeholderCacheDuration.Seconds())))
}

// ServePlaceholder handles GET /api/placeholder/{width}/{height}?text=. The image is immutable
// for a given URL, so it is cached for a year. Card-sized placeholders come from the store;
// anything else is rendered into the response.
func (ph *PlaceholderHandler) ServePlaceholder(w http.ResponseWriter, r *http.Request) {
	width, err := dimension(chi.URLParam(r, "width"), defaultPlaceholderWidth)
	if err != nil {
		ph.served(metrics.PlaceholderFailed)
		writeDomainError(w, err)
		return
	}
	height, err := dimension(chi.URLParam(r, "height"), defaultPlaceholderHeight)
	if err != nil {
		ph.served(metrics.PlaceholderFailed)
		writeDomainError(w, err)
		return
	}

	text := r.URL.Query().Get("text")
	relPath, cached, err := ph.Processor.Placeholder(width, height, text)
	if errors.Is(err, media.ErrNotCached) {
		ph.streamPlaceholder(w, width, height, text)
		return
	}
	if err != nil {
		ph.served(metrics.PlaceholderFailed)
		if !errors.Is(err, media.ErrInvalidDimensions) {
			log.Printf("handlers: placeholder %dx%d failed: %v", width, height, err)
		}
		writeDomainError(w, err)
		return
	}
	if cached {
		ph.served(metrics.PlaceholderCached)
	} else {
		ph.served(metrics.PlaceholderRendered)
	}

	rc, info, err := ph.Store.Get(relPath)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer rc.Close()

	setPlaceholderHeaders(w)
	serveStored(w, r, rc, info)
}

func (ph *PlaceholderHandler) streamPlaceholder(w http.ResponseWriter, width, height int, text string) {
	var buf bytes.Buffer
	if err := ph.Processor.Render(&buf, width, height, text); err != nil {
		ph.served(metrics.PlaceholderFailed)
		log.Printf("handlers: placeholder %dx%d failed: %v", width, height, err)
		writeDomainError(w, err)
		return
	}
	ph.served(metrics.PlaceholderStreamed)

	setPlaceholderHeaders(w)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("handlers: error writing placeholder %dx%d: %v", width, height, err)
	}
}
