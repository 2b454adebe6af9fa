package utils

import (
	"context"

	"quipus-system/pkg/contextkeys"
	apperrors "quipus-system/pkg/errors"
)

// GetAdminIDFromCtx returns the authenticated administrator id placed in
// the context by the auth middleware.
func GetAdminIDFromCtx(ctx context.Context) (uint64, error) {
	id, ok := ctx.Value(contextkeys.AdminIDKey).(uint64)
	if !ok || id == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return id, nil
}

func GetAdminRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.AdminRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrUnauthorized
	}
	return role, nil
}
