package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/capsule-social/backend/internal/models"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUserLookup finds the local user linked to a Firebase UID.
type FirebaseUserLookup interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseVerifier accepts Firebase ID tokens of users that exist locally.
type FirebaseVerifier struct {
	client IDTokenVerifier
	users  FirebaseUserLookup
}

// NewFirebaseVerifier creates a FirebaseVerifier.
func NewFirebaseVerifier(client IDTokenVerifier, users FirebaseUserLookup) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

// VerifyToken verifies the ID token and maps its UID to a local user id.
func (v *FirebaseVerifier) VerifyToken(ctx context.Context, idToken string) (uint, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return 0, fmt.Errorf("invalid or expired ID token: %w", err)
	}
	user, err := v.users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		return 0, fmt.Errorf("no user linked to firebase uid %s: %w", token.UID, err)
	}
	return user.ID, nil
}
