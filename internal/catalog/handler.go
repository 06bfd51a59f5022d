// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/reviewdb/internal/core"
	"github.com/carterperez-dev/reviewdb/internal/middleware"
	"github.com/carterperez-dev/reviewdb/internal/permission"
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

// RegisterRoutes mounts the catalog resources. Reads are public; the
// optionalAuth middleware resolves an actor when a token is present so
// the write handlers can apply the admin-or-read-only rule themselves.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Delete("/{slug}", h.DeleteCategory)
		})

		r.Route("/genres", func(r chi.Router) {
			r.Get("/", h.ListGenres)
			r.Post("/", h.CreateGenre)
			r.Delete("/{slug}", h.DeleteGenre)
		})

		// Direct registrations: the review handler mounts deeper
		// routes under /titles/{titleID}, so /titles cannot own a
		// mounted subtree.
		r.Get("/titles", h.ListTitles)
		r.Post("/titles", h.CreateTitle)
		r.Get("/titles/{titleID}", h.GetTitle)
		r.Patch("/titles/{titleID}", h.UpdateTitle)
		r.Delete("/titles/{titleID}", h.DeleteTitle)
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	params := listParamsFromQuery(r)

	cats, total, err := h.service.ListCategories(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToCategoryResponseList(cats),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminWrite(w, r) {
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "category")
		return
	}

	core.Created(w, ToCategoryResponse(c))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminWrite(w, r) {
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.service.DeleteCategory(r.Context(), slug); err != nil {
		h.writeServiceError(w, err, "category")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	params := listParamsFromQuery(r)

	genres, total, err := h.service.ListGenres(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToGenreResponseList(genres),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminWrite(w, r) {
		return
	}

	var req CreateGenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	g, err := h.service.CreateGenre(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "genre")
		return
	}

	core.Created(w, ToGenreResponse(g))
}

func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminWrite(w, r) {
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.service.DeleteGenre(r.Context(), slug); err != nil {
		h.writeServiceError(w, err, "genre")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListTitlesParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Category: q.Get("category"),
		Genre:    q.Get("genre"),
		Name:     q.Get("name"),
	}
	if yearStr := q.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			core.BadRequest(w, "invalid year filter")
			return
		}
		params.Year = &year
	}

	titles, total, err := h.service.ListTitles(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToTitleResponseList(titles),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminWrite(w, r) {
		return
	}

	var req CreateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.CreateTitle(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "title")
		return
	}

	core.Created(w, ToTitleResponse(t))
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTitleID(w, r)
	if !ok {
		return
	}

	t, err := h.service.GetTitle(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "title")
		return
	}

	core.OK(w, ToTitleResponse(t))
}

func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminWrite(w, r) {
		return
	}

	id, ok := parseTitleID(w, r)
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.UpdateTitle(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err, "title")
		return
	}

	core.OK(w, ToTitleResponse(t))
}

func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdminWrite(w, r) {
		return
	}

	id, ok := parseTitleID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTitle(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "title")
		return
	}

	core.NoContent(w)
}

// requireAdminWrite applies the admin-or-read-only rule to a mutating
// request: anonymous callers get 401, authenticated non-admins 403.
func (h *Handler) requireAdminWrite(
	w http.ResponseWriter,
	r *http.Request,
) bool {
	actor := middleware.GetActor(r.Context())
	if permission.AdminOrReadOnly(actor, r.Method) {
		return true
	}

	if !actor.IsAuthenticated() {
		core.Unauthorized(w, "")
		return false
	}

	core.Forbidden(w, "admin access required")
	return false
}

func (h *Handler) writeServiceError(
	w http.ResponseWriter,
	err error,
	resource string,
) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	default:
		core.InternalServerError(w, err)
	}
}

func parseTitleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "titleID"), 10, 64)
	if err != nil {
		core.NotFound(w, "title")
		return 0, false
	}
	return id, true
}

func listParamsFromQuery(r *http.Request) ListParams {
	return ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
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
