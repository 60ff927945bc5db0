package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const viewerKey = "viewer"

var (
	errMissingHeader = errors.New("missing Authorization header")
	errHeaderFormat  = errors.New("invalid Authorization header format")
)

// TokenVerifier resolves a bearer token to the id of the user it was issued to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (uint, error)
}

// JWTVerifier verifies HMAC-signed tokens carrying models.JwtCustomClaims.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a JWTVerifier for tokens signed with secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// VerifyToken checks the signature and expiry of tokenString and returns its user id.
func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (uint, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, errors.New("invalid token")
	}
	return claims.UserID, nil
}

// IssueToken signs a token for userID. It is used by tests and local tooling.
func (v *JWTVerifier) IssueToken(userID uint, email string, ttl time.Duration) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Authenticator turns the Authorization header into a visibility.Viewer. The
// verifiers are tried in order and the first one that accepts the token wins.
type Authenticator struct {
	verifiers []TokenVerifier
	logger    *zap.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(logger *zap.Logger, verifiers ...TokenVerifier) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{verifiers: verifiers, logger: logger}
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			userID, err := a.verify(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.Set(viewerKey, visibility.Authenticated(userID))
			return next(c)
		}
	}
}

// Optional lets requests without an Authorization header through as
// anonymous viewers. A header that is present but invalid is still rejected.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if errors.Is(err, errMissingHeader) {
				c.Set(viewerKey, visibility.Anonymous())
				return next(c)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			userID, err := a.verify(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.Set(viewerKey, visibility.Authenticated(userID))
			return next(c)
		}
	}
}

func (a *Authenticator) verify(ctx context.Context, token string) (uint, error) {
	err := errors.New("no token verifier configured")
	for _, v := range a.verifiers {
		var userID uint
		userID, err = v.VerifyToken(ctx, token)
		if err == nil {
			return userID, nil
		}
	}
	a.logger.Debug("token rejected", zap.Error(err))
	return 0, err
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errMissingHeader
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errHeaderFormat
	}
	return parts[1], nil
}

// ViewerFromContext returns the viewer set by the Authenticator, or an
// anonymous viewer when none was set.
func ViewerFromContext(c echo.Context) visibility.Viewer {
	if v, ok := c.Get(viewerKey).(visibility.Viewer); ok {
		return v
	}
	return visibility.Anonymous()
}
