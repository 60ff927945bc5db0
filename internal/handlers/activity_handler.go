package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/capsule-social/backend/internal/middleware"
	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/labstack/echo/v4"
)

// FeedBuilder builds the comment activity feed of a viewer
type FeedBuilder interface {
	BuildFeed(ctx context.Context, viewer visibility.Viewer) ([]models.FeedItem, error)
}

// ActivityHandler serves the comment activity feed
type ActivityHandler struct {
	feed FeedBuilder
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(feed FeedBuilder) *ActivityHandler {
	return &ActivityHandler{feed: feed}
}

// RegisterActivityRoutes registers activity feed routes. The feed is served to
// anonymous viewers too.
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group, optionalAuth echo.MiddlewareFunc) {
	g.GET("/activities/comments", h.GetCommentActivities, optionalAuth)
}

// GetCommentActivities returns the most recent comments visible to the viewer
func (h *ActivityHandler) GetCommentActivities(c echo.Context) error {
	items, err := h.feed.BuildFeed(c.Request().Context(), middleware.ViewerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"activities": items,
	})
}
