package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	s := newTestServer(t)
	ada := s.seed.User("Ada")
	bob := s.seed.User("Bob")
	capsule := s.seed.Capsule(ada.ID, "notes", models.PrivacyPublic)

	tests := []struct {
		name       string
		as         uint
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "anonymous",
			body:       fmt.Sprintf(`{"capsule_id":%d,"user_id":%d,"comment":"hi"}`, capsule.ID, ada.ID),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed json",
			as:         ada.ID,
			body:       `{"capsule_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing comment",
			as:         ada.ID,
			body:       fmt.Sprintf(`{"capsule_id":%d,"user_id":%d}`, capsule.ID, ada.ID),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Invalid request body",
		},
		{
			name:       "comment too long",
			as:         ada.ID,
			body:       fmt.Sprintf(`{"capsule_id":%d,"user_id":%d,"comment":"%s"}`, capsule.ID, ada.ID, strings.Repeat("x", 1001)),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "posting as someone else",
			as:         bob.ID,
			body:       fmt.Sprintf(`{"capsule_id":%d,"user_id":%d,"comment":"hi"}`, capsule.ID, ada.ID),
			wantStatus: http.StatusForbidden,
			wantMsg:    "Unauthorized user ID",
		},
		{
			name:       "unknown capsule",
			as:         ada.ID,
			body:       fmt.Sprintf(`{"capsule_id":%d,"user_id":%d,"comment":"hi"}`, capsule.ID+99, ada.ID),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Invalid request body",
		},
		{
			name:       "unknown capsule as someone else",
			as:         bob.ID,
			body:       fmt.Sprintf(`{"capsule_id":%d,"user_id":%d,"comment":"hi"}`, capsule.ID+99, ada.ID),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Invalid request body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.request(t, http.MethodPost, "/api/v1/capsule-comments", tt.as, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decode[ErrorResponse](t, rec).Message)
			}
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&models.CapsuleComment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateComment_UnknownCapsuleDetails(t *testing.T) {
	s := newTestServer(t)
	ada := s.seed.User("Ada")

	body := fmt.Sprintf(`{"capsule_id":%d,"user_id":%d,"comment":"hi"}`, 9999, ada.ID)
	rec := s.request(t, http.MethodPost, "/api/v1/capsule-comments", ada.ID, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"capsule_id": "exists"}, decode[ErrorResponse](t, rec).Details)
}

func TestCreateComment_Success(t *testing.T) {
	s := newTestServer(t)
	ada := s.seed.User("Ada")
	capsule := s.seed.Capsule(ada.ID, "notes", models.PrivacyPrivate)

	body := fmt.Sprintf(`{"capsule_id":%d,"user_id":%d,"comment":"first!"}`, capsule.ID, ada.ID)
	rec := s.request(t, http.MethodPost, "/api/v1/capsule-comments", ada.ID, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[struct {
		Message string                `json:"message"`
		Comment models.CapsuleComment `json:"comment"`
	}](t, rec)
	assert.Equal(t, "Comment added successfully", resp.Message)
	assert.NotZero(t, resp.Comment.ID)
	assert.Equal(t, "first!", resp.Comment.Comment)
	assert.Equal(t, capsule.ID, resp.Comment.CapsuleID)
	assert.False(t, resp.Comment.CreatedAt.IsZero())
}

type commentList struct {
	Comments []models.CommentView `json:"comments"`
	Count    int                  `json:"count"`
}

func TestGetCommentsByCapsuleID(t *testing.T) {
	s := newTestServer(t)
	now := time.Now().UTC().Truncate(time.Second)
	avatar := "avatars/ada.png"
	ada := models.User{Name: "Ada", Email: "ada@example.com", ProfileImage: &avatar}
	require.NoError(t, s.db.Create(&ada).Error)
	bob := s.seed.User("Bob")
	public := s.seed.Capsule(ada.ID, "public", models.PrivacyPublic)
	older := s.seed.Comment(public.ID, ada.ID, "older", now.Add(-time.Hour))
	newer := s.seed.Comment(public.ID, bob.ID, "newer", now)

	rec := s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/capsules/%d/comments", public.ID), 0, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decode[commentList](t, rec)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, newer.ID, list.Comments[0].ID)
	assert.Equal(t, "newer", list.Comments[0].Content)
	assert.Equal(t, "Bob", list.Comments[0].User.Name)
	assert.Nil(t, list.Comments[0].User.ProfileImageURL)
	assert.Equal(t, older.ID, list.Comments[1].ID)
	require.NotNil(t, list.Comments[1].User.ProfileImageURL)
	assert.Equal(t, "https://cdn.example.com/storage/avatars/ada.png", *list.Comments[1].User.ProfileImageURL)

	rec = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/capsules/%d/comments", public.ID+99), 0, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.request(t, http.MethodGet, "/api/v1/capsules/abc/comments", 0, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCommentsByCapsuleID_HiddenCapsule(t *testing.T) {
	s := newTestServer(t)
	owner := s.seed.User("Owner")
	stranger := s.seed.User("Stranger")
	private := s.seed.Capsule(owner.ID, "private", models.PrivacyPrivate)
	s.seed.Comment(private.ID, owner.ID, "secret", time.Now())
	path := fmt.Sprintf("/api/v1/capsules/%d/comments", private.ID)

	assert.Equal(t, http.StatusNotFound, s.request(t, http.MethodGet, path, 0, "").Code)
	assert.Equal(t, http.StatusNotFound, s.request(t, http.MethodGet, path, stranger.ID, "").Code)

	rec := s.request(t, http.MethodGet, path, owner.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[commentList](t, rec).Count)
}

func TestGetComment(t *testing.T) {
	s := newTestServer(t)
	owner := s.seed.User("Owner")
	friend := s.seed.User("Friend")
	stranger := s.seed.User("Stranger")
	s.seed.Friendship(friend.ID, owner.ID, models.FriendshipAccepted)
	capsule := s.seed.Capsule(owner.ID, "friends", models.PrivacyFriends)
	comment := s.seed.Comment(capsule.ID, owner.ID, "for friends", time.Now())
	path := fmt.Sprintf("/api/v1/capsule-comments/%d", comment.ID)

	rec := s.request(t, http.MethodGet, path, friend.ID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[models.CommentView](t, rec)
	assert.Equal(t, comment.ID, view.ID)
	assert.Equal(t, "for friends", view.Content)
	assert.Equal(t, owner.ID, view.User.ID)

	for name, as := range map[string]uint{"anonymous": 0, "stranger": stranger.ID} {
		rec := s.request(t, http.MethodGet, path, as, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, name)
		assert.Equal(t, "comment not found", decode[ErrorResponse](t, rec).Message, name)
	}

	rec = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/capsule-comments/%d", comment.ID+99), owner.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.request(t, http.MethodGet, "/api/v1/capsule-comments/0", owner.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
