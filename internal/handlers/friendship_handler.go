package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/capsule-social/backend/internal/apperrors"
	"github.com/anonto42/capsule-social/backend/internal/middleware"
	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/anonto42/capsule-social/backend/internal/repositories"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FriendCacheInvalidator drops cached friend lists after an edge changes
type FriendCacheInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uint) error
}

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	userRepository       repositories.UserRepository // To fetch user details for friends list
	friends              visibility.FriendSource
	cache                FriendCacheInvalidator
	avatars              AvatarResolver
	logger               *zap.Logger
}

// NewFriendshipHandler creates a new FriendshipHandler. friends answers the
// friends list and may be a cache in front of friendshipRepo; cache may be nil.
func NewFriendshipHandler(
	friendshipRepo repositories.FriendshipRepository,
	userRepo repositories.UserRepository,
	friends visibility.FriendSource,
	cache FriendCacheInvalidator,
	avatars AvatarResolver,
	logger *zap.Logger,
) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipRepository: friendshipRepo,
		userRepository:       userRepo,
		friends:              friends,
		cache:                cache,
		avatars:              avatars,
		logger:               logger,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/friends/request", h.SendFriendRequest, requireAuth)
	g.PUT("/friends/request/:id/status", h.UpdateFriendRequestStatus, requireAuth)
	g.GET("/friends", h.GetFriends, requireAuth)
	g.DELETE("/friends/:id", h.DeleteFriend, requireAuth) // Unfriend
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	ctx := c.Request().Context()
	senderID, _ := middleware.ViewerFromContext(c).UserID()

	var req models.CreateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if senderID == req.FriendID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send a friend request to yourself")
	}

	// Check if receiver exists
	if _, err := h.userRepository.GetUserByID(ctx, req.FriendID); err != nil {
		return notFoundOr(err, "user", req.FriendID, "loading user")
	}

	friendship := &models.Friendship{
		UserID:   senderID,
		FriendID: req.FriendID,
	}
	if err := h.friendshipRepository.SendFriendRequest(ctx, friendship); err != nil {
		switch {
		case errors.Is(err, repositories.ErrFriendRequestPending), errors.Is(err, repositories.ErrAlreadyFriends):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return apperrors.NewDataSource("sending friend request", err)
		}
	}
	h.invalidate(ctx, senderID, req.FriendID)

	return c.JSON(http.StatusCreated, friendship)
}

// UpdateFriendRequestStatus updates the status of a friend request (accept/reject)
func (h *FriendshipHandler) UpdateFriendRequestStatus(c echo.Context) error {
	ctx := c.Request().Context()
	receiverID, _ := middleware.ViewerFromContext(c).UserID()

	requestID, err := parseID(c, "id", "Invalid request ID")
	if err != nil {
		return err
	}

	var req models.UpdateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	friendship, err := h.friendshipRepository.GetFriendshipByID(ctx, requestID)
	if err != nil {
		return notFoundOr(err, "friend request", requestID, "loading friend request")
	}

	// Ensure the authenticated user is the receiver of the request
	if friendship.FriendID != receiverID {
		return apperrors.NewAuthorization("You are not authorized to modify this friend request")
	}
	if friendship.Status != models.FriendshipPending {
		return echo.NewHTTPError(http.StatusConflict, "Friend request has already been answered")
	}

	if err := h.friendshipRepository.UpdateFriendshipStatus(ctx, requestID, req.Status); err != nil {
		return apperrors.NewDataSource("updating friend request", err)
	}
	h.invalidate(ctx, friendship.UserID, friendship.FriendID)

	friendship.Status = req.Status
	return c.JSON(http.StatusOK, friendship)
}

// GetFriends retrieves the list of friends for the authenticated user
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.ViewerFromContext(c).UserID()

	ids, err := h.friends.AcceptedFriendIDs(ctx, userID)
	if err != nil {
		return apperrors.NewDataSource("loading friends", err)
	}
	users, err := h.userRepository.GetUsersByIDs(ctx, ids)
	if err != nil {
		return apperrors.NewDataSource("loading friends", err)
	}

	friends := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		friends = append(friends, userSummary(u, h.avatars))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"friends": friends,
		"count":   len(friends),
	})
}

// DeleteFriend handles unfriending (deleting an accepted friendship)
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := middleware.ViewerFromContext(c).UserID()

	friendUserID, err := parseID(c, "id", "Invalid friend user ID")
	if err != nil {
		return err
	}

	// The edge may have been sent by either side
	friendship, err := h.friendshipRepository.GetFriendshipBetween(ctx, userID, friendUserID)
	if err != nil {
		return notFoundOr(err, "friendship", friendUserID, "loading friendship")
	}
	if friendship.Status != models.FriendshipAccepted {
		return echo.NewHTTPError(http.StatusBadRequest, "Users are not friends")
	}

	if err := h.friendshipRepository.DeleteFriendship(ctx, friendship.ID); err != nil {
		return apperrors.NewDataSource("deleting friendship", err)
	}
	h.invalidate(ctx, userID, friendUserID)

	return c.NoContent(http.StatusNoContent)
}

// invalidate drops cached friend lists. Failures are logged; stale entries
// still expire with their TTL.
func (h *FriendshipHandler) invalidate(ctx context.Context, userIDs ...uint) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, userIDs...); err != nil {
		h.logger.Warn("friend cache invalidation failed", zap.Uints("user_ids", userIDs), zap.Error(err))
	}
}
