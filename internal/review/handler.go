// AngelaMos | 2026
// handler.go

package review

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

// RegisterRoutes mounts the nested review and comment resources under
// /titles. Reads are public; writes check the collection-phase rule
// before the path is resolved, so an anonymous POST to a missing title
// is a 401, not a 404.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)

		r.Route("/titles/{titleID}/reviews", func(r chi.Router) {
			r.Get("/", h.ListReviews)
			r.Post("/", h.CreateReview)

			r.Route("/{reviewID}", func(r chi.Router) {
				r.Get("/", h.GetReview)
				r.Patch("/", h.UpdateReview)
				r.Delete("/", h.DeleteReview)

				r.Route("/comments", func(r chi.Router) {
					r.Get("/", h.ListComments)
					r.Post("/", h.CreateComment)
					r.Get("/{commentID}", h.GetComment)
					r.Patch("/{commentID}", h.UpdateComment)
					r.Delete("/{commentID}", h.DeleteComment)
				})
			})
		})
	})
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := parsePathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	params := listParamsFromQuery(r)
	reviews, total, err := h.service.ListReviews(r.Context(), titleID, params)
	if err != nil {
		h.writeServiceError(w, err, "title")
		return
	}

	core.Paginated(
		w,
		ToReviewResponseList(reviews),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireWriteActor(w, r)
	if !ok {
		return
	}

	titleID, ok := parsePathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	rv, err := h.service.CreateReview(r.Context(), actor, titleID, req)
	if err != nil {
		h.writeServiceError(w, err, "title")
		return
	}

	core.Created(w, ToReviewResponse(rv))
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := parseReviewPath(w, r)
	if !ok {
		return
	}

	rv, err := h.service.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		h.writeServiceError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(rv))
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireWriteActor(w, r)
	if !ok {
		return
	}

	titleID, reviewID, ok := parseReviewPath(w, r)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	rv, err := h.service.UpdateReview(
		r.Context(),
		actor,
		titleID,
		reviewID,
		req,
	)
	if err != nil {
		h.writeServiceError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(rv))
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireWriteActor(w, r)
	if !ok {
		return
	}

	titleID, reviewID, ok := parseReviewPath(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteReview(r.Context(), actor, titleID, reviewID)
	if err != nil {
		h.writeServiceError(w, err, "review")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := parseReviewPath(w, r)
	if !ok {
		return
	}

	params := listParamsFromQuery(r)
	comments, total, err := h.service.ListComments(
		r.Context(),
		titleID,
		reviewID,
		params,
	)
	if err != nil {
		h.writeServiceError(w, err, "review")
		return
	}

	core.Paginated(
		w,
		ToCommentResponseList(comments),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireWriteActor(w, r)
	if !ok {
		return
	}

	titleID, reviewID, ok := parseReviewPath(w, r)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.CreateComment(
		r.Context(),
		actor,
		titleID,
		reviewID,
		req,
	)
	if err != nil {
		h.writeServiceError(w, err, "review")
		return
	}

	core.Created(w, ToCommentResponse(c))
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := parseCommentPath(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		h.writeServiceError(w, err, "comment")
		return
	}

	core.OK(w, ToCommentResponse(c))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireWriteActor(w, r)
	if !ok {
		return
	}

	titleID, reviewID, commentID, ok := parseCommentPath(w, r)
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.UpdateComment(
		r.Context(),
		actor,
		titleID,
		reviewID,
		commentID,
		req,
	)
	if err != nil {
		h.writeServiceError(w, err, "comment")
		return
	}

	core.OK(w, ToCommentResponse(c))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireWriteActor(w, r)
	if !ok {
		return
	}

	titleID, reviewID, commentID, ok := parseCommentPath(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteComment(
		r.Context(),
		actor,
		titleID,
		reviewID,
		commentID,
	)
	if err != nil {
		h.writeServiceError(w, err, "comment")
		return
	}

	core.NoContent(w)
}

// requireWriteActor runs the collection-phase rule: any authenticated
// actor may attempt a write, anonymous callers are rejected before the
// path is resolved.
func (h *Handler) requireWriteActor(
	w http.ResponseWriter,
	r *http.Request,
) (permission.Actor, bool) {
	actor := middleware.GetActor(r.Context())
	if !permission.AuthorModeratorAdminCollection(actor, r.Method) {
		core.Unauthorized(w, "")
		return permission.Actor{}, false
	}
	return actor, true
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
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have permission to modify this resource")
	default:
		core.InternalServerError(w, err)
	}
}

func parseReviewPath(
	w http.ResponseWriter,
	r *http.Request,
) (int64, int64, bool) {
	titleID, ok := parsePathID(w, r, "titleID", "title")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok := parsePathID(w, r, "reviewID", "review")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func parseCommentPath(
	w http.ResponseWriter,
	r *http.Request,
) (int64, int64, int64, bool) {
	titleID, reviewID, ok := parseReviewPath(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	commentID, ok := parsePathID(w, r, "commentID", "comment")
	if !ok {
		return 0, 0, 0, false
	}
	return titleID, reviewID, commentID, true
}

func parsePathID(
	w http.ResponseWriter,
	r *http.Request,
	param, resource string,
) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		core.NotFound(w, resource)
		return 0, false
	}
	return id, true
}

func listParamsFromQuery(r *http.Request) ListParams {
	return ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
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
