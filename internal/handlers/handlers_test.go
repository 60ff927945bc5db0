package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/capsule-social/backend/internal/activity"
	"github.com/anonto42/capsule-social/backend/internal/middleware"
	"github.com/anonto42/capsule-social/backend/internal/repositories"
	"github.com/anonto42/capsule-social/backend/internal/testutil"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/anonto42/capsule-social/backend/pkg/assets"
	"github.com/anonto42/capsule-social/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingInvalidator struct {
	calls [][]uint
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, userIDs ...uint) error {
	r.calls = append(r.calls, userIDs)
	return nil
}

type testServer struct {
	e     *echo.Echo
	db    *gorm.DB
	seed  *testutil.Seeder
	jwt   *middleware.JWTVerifier
	cache *recordingInvalidator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repositories.NewPostgresUserRepository(db)
	capsuleRepo := repositories.NewPostgresCapsuleRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(db)
	filter := visibility.NewFilter(friendshipRepo, repositories.NewPostgresMembershipRepository(db))
	avatars := assets.NewURLResolver("https://cdn.example.com")
	invalidator := &recordingInvalidator{}

	jwtVerifier := middleware.NewJWTVerifier("handler-test-secret")
	auth := middleware.NewAuthenticator(zap.NewNop(), jwtVerifier)

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zap.NewNop())

	api := e.Group("/api/v1")
	NewCommentHandler(commentRepo, capsuleRepo, userRepo, filter, avatars).
		RegisterCommentRoutes(api, auth.Required(), auth.Optional())
	assembler := activity.NewAssembler(filter, commentRepo, userRepo, capsuleRepo, avatars)
	NewActivityHandler(assembler).RegisterActivityRoutes(api, auth.Optional())
	NewFriendshipHandler(friendshipRepo, userRepo, friendshipRepo, invalidator, avatars, zap.NewNop()).
		RegisterFriendshipRoutes(api, auth.Required())

	return &testServer{e: e, db: db, seed: testutil.NewSeeder(t, db), jwt: jwtVerifier, cache: invalidator}
}

// request performs a request as userID, or anonymously when userID is 0.
func (s *testServer) request(t *testing.T, method, path string, userID uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != 0 {
		token, err := s.jwt.IssueToken(userID, "", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
