package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/camden-git/castingvitrine/media"
	"github.com/camden-git/castingvitrine/session"
	"github.com/camden-git/castingvitrine/store"
)

// Error codes used in APIErrorDetail.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeInvalidParameter = "invalid_parameter"
	CodeTalentNotFound   = "talent_not_found"
	CodeSessionNotFound  = "session_not_found"
	CodeInternal         = "internal_error"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError maps the package sentinel errors to API errors. Anything unrecognised is
// logged and reported as a 500 without its message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTalentNotFound):
		WriteAPIError(w, http.StatusNotFound, CodeTalentNotFound, err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		WriteAPIError(w, http.StatusNotFound, CodeSessionNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidSort),
		errors.Is(err, session.ErrInvalidMode),
		errors.Is(err, media.ErrInvalidDimensions),
		errors.Is(err, errInvalidParam):
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
	default:
		log.Printf("handlers: unexpected error: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}
