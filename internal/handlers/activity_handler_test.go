package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/capsule-social/backend/internal/apperrors"
	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type feedResponse struct {
	Activities []models.FeedItem `json:"activities"`
}

func TestGetCommentActivities(t *testing.T) {
	s := newTestServer(t)
	owner := s.seed.User("Grace Hopper")
	friend := s.seed.User("Friend")
	s.seed.Friendship(owner.ID, friend.ID, models.FriendshipAccepted)
	public := s.seed.Capsule(owner.ID, "A", models.PrivacyPublic)
	friendsOnly := s.seed.Capsule(owner.ID, "B", models.PrivacyFriends)
	onPublic := s.seed.Comment(public.ID, owner.ID, "on a", time.Now().Add(-time.Hour))
	onFriends := s.seed.Comment(friendsOnly.ID, owner.ID, "on b", time.Now().Add(-time.Minute))

	rec := s.request(t, http.MethodGet, "/api/v1/activities/comments", 0, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	anon := decode[feedResponse](t, rec)
	require.Len(t, anon.Activities, 1)
	assert.Equal(t, onPublic.ID, anon.Activities[0].ID)
	assert.Equal(t, "GH", anon.Activities[0].User.Initials)
	assert.Equal(t, "1h", anon.Activities[0].TimeElapsed)
	assert.False(t, anon.Activities[0].IsCurrentUser)

	rec = s.request(t, http.MethodGet, "/api/v1/activities/comments", friend.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[feedResponse](t, rec)
	require.Len(t, got.Activities, 2)
	assert.Equal(t, onFriends.ID, got.Activities[0].ID)
	assert.Equal(t, "commented on", got.Activities[0].Action)
	assert.Equal(t, models.FeedCapsule{ID: friendsOnly.ID, Title: "B"}, got.Activities[0].Capsule)

	rec = s.request(t, http.MethodGet, "/api/v1/activities/comments", owner.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[feedResponse](t, rec)
	require.Len(t, mine.Activities, 2)
	assert.True(t, mine.Activities[0].IsCurrentUser)
}

func TestGetCommentActivities_EmptyIsArray(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(t, http.MethodGet, "/api/v1/activities/comments", 0, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"activities":[]}`, rec.Body.String())
}

func TestGetCommentActivities_InvalidToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities/comments", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type failingFeed struct{}

func (failingFeed) BuildFeed(ctx context.Context, viewer visibility.Viewer) ([]models.FeedItem, error) {
	return nil, apperrors.NewDataSource("loading comment activity", errors.New("pq: password authentication failed"))
}

func TestGetCommentActivities_DataSourceFailure(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zap.NewNop())
	NewActivityHandler(failingFeed{}).RegisterActivityRoutes(e.Group("/api/v1"), func(next echo.HandlerFunc) echo.HandlerFunc { return next })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities/comments", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "data source failure during loading comment activity", decode[ErrorResponse](t, rec).Message)
	assert.NotContains(t, rec.Body.String(), "password")
}
