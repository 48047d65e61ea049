package service

import (
	"fmt"

	"storefront-backend/internal/apperror"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// internalError logs the store failure and hides it behind a generic message.
func internalError(log *zap.Logger, msg string, err error, fields ...zap.Field) error {
	log.Error(msg, append(fields, zap.Error(err))...)
	return apperror.Internal(msg)
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
