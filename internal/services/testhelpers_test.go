package services

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"quipus-system/pkg/service"
)

func newTestJWTService(t *testing.T) service.JWTService {
	t.Helper()
	return service.NewJWTService("test-secret", time.Hour, 24*time.Hour, zap.NewNop())
}
