package handlers

import (
	"net/http"
	"time"

	"github.com/camden-git/castingvitrine/store"
)

type HealthHandler struct {
	Catalog *store.Catalog
	Source  string
	Started time.Time
}

func (hh *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"talents":        hh.Catalog.Len(),
		"source":         hh.Source,
		"uptime_seconds": int(time.Since(hh.Started).Seconds()),
	})
}
