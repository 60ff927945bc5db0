package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewAuthClient_RejectsBadCredentialsPath(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantIs  error
		wantMsg string
	}{
		{name: "empty", path: "", wantIs: ErrNoCredentials},
		{name: "missing file", path: filepath.Join(dir, "creds.json"), wantIs: ErrCredentialsNotFound},
		{name: "directory", path: dir, wantMsg: "is a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewAuthClient(context.Background(), tt.path, logger)
			assert.Nil(t, client)
			assert.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.ErrorContains(t, err, tt.wantMsg)
			}
		})
	}

	assert.Zero(t, logs.Len())
}

func TestNewAuthClient_NilLogger(t *testing.T) {
	_, err := NewAuthClient(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoCredentials)
}
