// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/reviewdb/internal/core"
	"github.com/carterperez-dev/reviewdb/internal/middleware"
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

// RegisterRoutes mounts /users. The /me pair needs only a valid token;
// everything else on the collection is admin-only. chi resolves the
// static /me segment before /{username}, so an admin route can never
// receive "me" as a username.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, requireAdmin func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Patch("/me", h.UpdateMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(requireAdmin)

			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{username}", h.GetUser)
			r.Patch("/{username}", h.UpdateUser)
			r.Delete("/{username}", h.DeleteUser)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.UpdateMe(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.Created(w, ToUserResponse(u))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	u, err := h.service.GetUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.UpdateUser(r.Context(), username, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.service.DeleteUser(r.Context(), username); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid input")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
