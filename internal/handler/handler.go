package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"flora-kart/internal/auth"
	"flora-kart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// SuccessResponse is the envelope of every successful API response.
type SuccessResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessResponse{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, SuccessResponse{Status: "success", Message: message})
}

// writeError maps err to a status code and writes the error envelope.
// Errors that are not domain errors are logged and reported as internal.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status := model.HTTPStatus(err)
	resp := model.ErrorResponse{
		Status:        "error",
		CorrelationID: middleware.GetReqID(r.Context()),
	}

	var de *model.DomainError
	if errors.As(err, &de) && status != http.StatusInternalServerError {
		resp.Message = de.Message
		resp.Code = de.Code
		logger.Debug().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request rejected")
	} else {
		resp.Message = model.ErrInternal.Message
		resp.Code = model.ErrCodeInternalError
		logger.Error().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("handler error")
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewDomainError(model.KindInvalidInput, model.ErrCodeInvalidJSON, "Request body is required")
		}
		return model.NewDomainError(model.KindInvalidInput, model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}

// uuidParam parses the named chi URL parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.KindInvalidInput, model.ErrCodeInvalidID, "Invalid id: "+raw)
	}
	return id, nil
}

// principal returns the authenticated caller. Routes without Authenticate get ErrUnauthorized.
func principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, model.ErrUnauthorized
	}
	return p, nil
}

func pageFromQuery(r *http.Request) model.Page {
	q := r.URL.Query()
	return model.NewPage(q.Get("page"), q.Get("limit"))
}
