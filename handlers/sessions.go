package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/camden-git/castingvitrine/catalog"
	"github.com/camden-git/castingvitrine/layout"
	"github.com/camden-git/castingvitrine/session"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	Sessions *session.Manager
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// decodeOptionalBody is decodeBody for endpoints where the body may be left out.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		WriteAPIError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (sh *SessionHandler) reply(w http.ResponseWriter, snap session.Snapshot, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CreateSession handles POST /api/sessions. The body is optional: {"width": 1280}.
func (sh *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width int `json:"width"`
	}
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	if req.Width < 0 {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidParameter, "width must not be negative")
		return
	}
	writeJSON(w, http.StatusCreated, sh.Sessions.Create(req.Width))
}

func (sh *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := sh.Sessions.Get(chi.URLParam(r, "session_id"))
	sh.reply(w, snap, err)
}

func (sh *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := sh.Sessions.Delete(chi.URLParam(r, "session_id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCriteria handles PUT /api/sessions/{session_id}/criteria. The body is a full criteria
// object plus an optional sort order; fields left out take their defaults.
func (sh *SessionHandler) SetCriteria(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	req := struct {
		catalog.Criteria
		Sort *string `json:"sort"`
	}{Criteria: catalog.DefaultCriteria()}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateCriteria(req.Criteria); err != nil {
		writeDomainError(w, err)
		return
	}

	snap, err := sh.Sessions.SetQuery(id, req.Criteria, req.Sort)
	sh.reply(w, snap, err)
}

func (sh *SessionHandler) ClearCriteria(w http.ResponseWriter, r *http.Request) {
	snap, err := sh.Sessions.ClearCriteria(chi.URLParam(r, "session_id"))
	sh.reply(w, snap, err)
}

func (sh *SessionHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width int `json:"width"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Width < 0 {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidParameter, "width must not be negative")
		return
	}
	snap, err := sh.Sessions.Resize(chi.URLParam(r, "session_id"), req.Width)
	sh.reply(w, snap, err)
}

func (sh *SessionHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offset int `json:"offset"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := sh.Sessions.Scroll(chi.URLParam(r, "session_id"), req.Offset)
	sh.reply(w, snap, err)
}

// ToggleFilterBar handles POST /api/sessions/{session_id}/filter-bar. {"mode": "collapsed"} pins
// a mode; an empty body flips the current one.
func (sh *SessionHandler) ToggleFilterBar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode layout.Mode `json:"mode"`
	}
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	snap, err := sh.Sessions.ToggleFilterBar(chi.URLParam(r, "session_id"), req.Mode)
	sh.reply(w, snap, err)
}

func (sh *SessionHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := sh.Sessions.SetPage(chi.URLParam(r, "session_id"), req.Page)
	sh.reply(w, snap, err)
}

func (sh *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TalentID string `json:"talent_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TalentID == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidParameter, "talent_id is required")
		return
	}
	snap, err := sh.Sessions.Select(chi.URLParam(r, "session_id"), req.TalentID)
	sh.reply(w, snap, err)
}

func (sh *SessionHandler) CloseDetail(w http.ResponseWriter, r *http.Request) {
	snap, err := sh.Sessions.CloseDetail(chi.URLParam(r, "session_id"))
	sh.reply(w, snap, err)
}

// Routes mounts the session endpoints.
func (sh *SessionHandler) Routes(r chi.Router) {
	r.Post("/", sh.CreateSession)
	r.Route("/{session_id}", func(r chi.Router) {
		r.Get("/", sh.GetSession)
		r.Delete("/", sh.DeleteSession)
		r.Put("/criteria", sh.SetCriteria)
		r.Delete("/criteria", sh.ClearCriteria)
		r.Put("/viewport", sh.Resize)
		r.Post("/scroll", sh.Scroll)
		r.Post("/filter-bar", sh.ToggleFilterBar)
		r.Put("/page", sh.SetPage)
		r.Put("/selection", sh.Select)
		r.Delete("/selection", sh.CloseDetail)
	})
}
