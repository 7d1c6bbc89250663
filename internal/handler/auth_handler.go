package handler

import (
	"net/http"

	"flora-kart/internal/model"
	"flora-kart/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and the caller's own profile.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, err := h.service.Profile(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), p.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), p.ID, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeMessage(w, "Password updated successfully")
}
