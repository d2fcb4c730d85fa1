package handler

import (
	"log/slog"
	"net/http"

	"quill/internal/delivery/api/middleware"
	"quill/internal/delivery/api/response"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const postDeletedMessage = "Blog deleted successfully"

// PostHandlerParams holds dependencies for PostHandler, injected by Fx.
type PostHandlerParams struct {
	fx.In

	PostUC usecase.PostUsecase
	Logger *slog.Logger
}

// PostHandler serves the blog post endpoints.
type PostHandler struct {
	postUC usecase.PostUsecase
	logger *slog.Logger
}

// NewPostHandler is the constructor for PostHandler
func NewPostHandler(params PostHandlerParams) *PostHandler {
	return &PostHandler{
		postUC: params.PostUC,
		logger: params.Logger,
	}
}

// CreatePostRequest represents the request body for publishing a post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest represents a partial update; absent fields are left unchanged.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type pageQuery struct {
	Page int
	Size int
}

// Create publishes a post owned by the caller
func (h *PostHandler) Create(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing or invalid bearer token")
	}

	var req CreatePostRequest
	if ok, err := bindAndValidate(c, &req, nil); !ok {
		return err
	}

	post, err := h.postUC.Create(c.Request().Context(), userID, &usecase.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, post)
}

// List returns one page of all posts
func (h *PostHandler) List(c echo.Context) error {
	query, ok, err := bindPageQuery(c)
	if !ok {
		return err
	}

	page, err := h.postUC.List(c.Request().Context(), query.Page, query.Size)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, page)
}

// ListMine returns one page of the caller's own posts
func (h *PostHandler) ListMine(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing or invalid bearer token")
	}

	query, ok, err := bindPageQuery(c)
	if !ok {
		return err
	}

	page, err := h.postUC.ListByOwner(c.Request().Context(), userID, query.Page, query.Size)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, page)
}

// Get returns a single post
func (h *PostHandler) Get(c echo.Context) error {
	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := h.postUC.Get(c.Request().Context(), postID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, post)
}

// Update applies a partial update to a post owned by the caller
func (h *PostHandler) Update(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing or invalid bearer token")
	}

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if ok, err := bindAndValidate(c, &req, nil); !ok {
		return err
	}

	post, err := h.postUC.Update(c.Request().Context(), postID, userID, &usecase.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, post)
}

// Delete removes a post owned by the caller
func (h *PostHandler) Delete(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Missing or invalid bearer token")
	}

	postID, err := parsePostID(c)
	if err != nil {
		return err
	}

	if err := h.postUC.Delete(c.Request().Context(), postID, userID); err != nil {
		return err
	}

	return response.Message(c, http.StatusOK, postDeletedMessage)
}

// parsePostID reads the :id path parameter. An id that cannot name a post is reported as not found.
func parsePostID(c echo.Context) (uuid.UUID, error) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrPostNotFound.WrapMessage("invalid post id")
	}

	return postID, nil
}

func bindPageQuery(c echo.Context) (pageQuery, bool, error) {
	var query pageQuery
	if err := echo.QueryParamsBinder(c).
		Int("page", &query.Page).
		Int("size", &query.Size).
		BindError(); err != nil {
		return query, false, response.BadRequestWithDetails(c,
			domainerrors.ErrValidationFailed.ErrorCode(),
			domainerrors.ErrValidationFailed.Message(),
			"page and size must be integers",
		)
	}

	return query, true, nil
}
