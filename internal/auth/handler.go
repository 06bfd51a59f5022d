// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/reviewdb/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/token", h.Token)
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.Signup(r.Context(), req); err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SignupResponse{Username: req.Username, Email: req.Email})
}

func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	token, err := h.service.IssueToken(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.ValidationError(
				"invalid username or confirmation code",
				nil,
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, TokenResponse{Token: token})
}
