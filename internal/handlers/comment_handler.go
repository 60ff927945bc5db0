package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/capsule-social/backend/internal/apperrors"
	"github.com/anonto42/capsule-social/backend/internal/middleware"
	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/anonto42/capsule-social/backend/internal/repositories"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PredicateSource resolves the visibility predicate of a viewer
type PredicateSource interface {
	Predicate(ctx context.Context, viewer visibility.Viewer) (visibility.Predicate, error)
}

// AvatarResolver maps stored profile image paths to public URLs
type AvatarResolver interface {
	AvatarURL(path *string) *string
}

// CommentHandler handles HTTP requests related to capsule comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	capsuleRepository repositories.CapsuleRepository
	userRepository    repositories.UserRepository // To fetch user details for comments
	filter            PredicateSource
	avatars           AvatarResolver
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	capsuleRepo repositories.CapsuleRepository,
	userRepo repositories.UserRepository,
	filter PredicateSource,
	avatars AvatarResolver,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		capsuleRepository: capsuleRepo,
		userRepository:    userRepo,
		filter:            filter,
		avatars:           avatars,
	}
}

// RegisterCommentRoutes registers comment-related routes. Creating a comment
// requires a signed-in user; reads are open to anonymous viewers and filtered
// by capsule visibility.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc, createLimiter ...echo.MiddlewareFunc) {
	g.POST("/capsule-comments", h.CreateComment, append([]echo.MiddlewareFunc{requireAuth}, createLimiter...)...)
	g.GET("/capsule-comments/:id", h.GetComment, optionalAuth)
	g.GET("/capsules/:id/comments", h.GetCommentsByCapsuleID, optionalAuth)
}

// CreateComment adds a comment to a capsule on behalf of the signed-in user
func (h *CommentHandler) CreateComment(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.ViewerFromContext(c)

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	// An unknown capsule_id is a rejected body, reported before the author check
	if _, err := h.capsuleRepository.GetCapsuleByID(ctx, req.CapsuleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewValidation("Invalid request body", map[string]any{"capsule_id": "exists"})
		}
		return apperrors.NewDataSource("loading capsule", err)
	}

	if !viewer.Is(req.UserID) {
		return apperrors.NewAuthorization("Unauthorized user ID")
	}

	comment := &models.CapsuleComment{
		CapsuleID: req.CapsuleID,
		UserID:    req.UserID,
		Comment:   req.Comment,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return apperrors.NewDataSource("creating comment", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// GetCommentsByCapsuleID lists the comments of a capsule, newest first
func (h *CommentHandler) GetCommentsByCapsuleID(c echo.Context) error {
	ctx := c.Request().Context()
	capsuleID, err := parseID(c, "id", "Invalid capsule ID")
	if err != nil {
		return err
	}

	capsule, err := h.capsuleRepository.GetCapsuleByID(ctx, capsuleID)
	if err != nil {
		return notFoundOr(err, "capsule", capsuleID, "loading capsule")
	}
	if err := h.ensureVisible(ctx, c, *capsule, "capsule", capsuleID); err != nil {
		return err
	}

	comments, err := h.commentRepository.GetCommentsByCapsuleID(ctx, capsuleID)
	if err != nil {
		return apperrors.NewDataSource("loading comments", err)
	}

	views, err := h.commentViews(ctx, comments)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"comments": views,
		"count":    len(views),
	})
}

// GetComment returns a single comment if its capsule is visible to the viewer
func (h *CommentHandler) GetComment(c echo.Context) error {
	ctx := c.Request().Context()
	commentID, err := parseID(c, "id", "Invalid comment ID")
	if err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return notFoundOr(err, "comment", commentID, "loading comment")
	}

	capsule, err := h.capsuleRepository.GetCapsuleByID(ctx, comment.CapsuleID)
	if err != nil {
		// A comment whose capsule is gone is treated as gone too
		return notFoundOr(err, "comment", commentID, "loading capsule")
	}
	if err := h.ensureVisible(ctx, c, *capsule, "comment", commentID); err != nil {
		return err
	}

	views, err := h.commentViews(ctx, []models.CapsuleComment{*comment})
	if err != nil {
		return err
	}
	if len(views) == 0 {
		return apperrors.NewNotFound("comment", commentID)
	}
	return c.JSON(http.StatusOK, views[0])
}

// ensureVisible reports a hidden capsule as a missing resource so that
// private capsules cannot be probed by id.
func (h *CommentHandler) ensureVisible(ctx context.Context, c echo.Context, capsule models.Capsule, resource string, id uint) error {
	pred, err := h.filter.Predicate(ctx, middleware.ViewerFromContext(c))
	if err != nil {
		return apperrors.AsDataSource("resolving visibility", err)
	}
	if !pred.Allows(capsule) {
		return apperrors.NewNotFound(resource, id)
	}
	return nil
}

func (h *CommentHandler) commentViews(ctx context.Context, comments []models.CapsuleComment) ([]models.CommentView, error) {
	ids := make([]uint, 0, len(comments))
	seen := make(map[uint]bool, len(comments))
	for _, cm := range comments {
		if !seen[cm.UserID] {
			seen[cm.UserID] = true
			ids = append(ids, cm.UserID)
		}
	}

	users, err := h.userRepository.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewDataSource("loading comment authors", err)
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, cm := range comments {
		author, ok := byID[cm.UserID]
		if !ok {
			continue
		}
		views = append(views, models.CommentView{
			ID:        cm.ID,
			Content:   cm.Comment,
			CreatedAt: cm.CreatedAt,
			User:      userSummary(author, h.avatars),
		})
	}
	return views, nil
}

func userSummary(u models.User, avatars AvatarResolver) models.UserSummary {
	return models.UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		ProfileImageURL: avatars.AvatarURL(u.ProfileImage),
	}
}

func parseID(c echo.Context, param, msg string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return uint(id), nil
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and anything
// else to a DataSource error.
func notFoundOr(err error, resource string, id uint, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound(resource, id)
	}
	return apperrors.NewDataSource(op, err)
}
