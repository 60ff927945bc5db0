// Package firebase builds the Firebase auth client used to verify ID tokens.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var (
	ErrNoCredentials       = errors.New("firebase credentials path not provided")
	ErrCredentialsNotFound = errors.New("firebase credentials file not found")
)

// NewAuthClient loads the service account at credentialsPath and returns an
// auth client for verifying Firebase ID tokens.
func NewAuthClient(ctx context.Context, credentialsPath string, logger *zap.Logger) (*auth.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}

	info, err := os.Stat(credentialsPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w at %s", ErrCredentialsNotFound, credentialsPath)
	case err != nil:
		return nil, fmt.Errorf("reading firebase credentials: %w", err)
	case info.IsDir():
		return nil, fmt.Errorf("firebase credentials path %s is a directory", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating firebase auth client: %w", err)
	}

	logger.Info("Firebase app and auth client initialized", zap.String("credentials", credentialsPath))
	return client, nil
}
