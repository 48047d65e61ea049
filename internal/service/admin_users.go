package service

import (
	"context"
	"errors"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AdminUserService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	tx       repository.Transactor
	log      *zap.Logger
	hashCost int
}

func NewAdminUserService(
	users repository.UserRepository,
	orders repository.OrderRepository,
	tx repository.Transactor,
	log *zap.Logger,
) *AdminUserService {
	return &AdminUserService{
		users:    users,
		orders:   orders,
		tx:       tx,
		log:      log.Named("admin_users"),
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *AdminUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalError(s.log, "Failed to list users", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DeleteUser removes the user and every order placed with their email.
// Without transactions the two deletes commit separately: if the second one
// fails the user stays deleted and their orders remain.
func (s *AdminUserService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return internalError(s.log, "Failed to delete user", err, zap.String("user_id", userID))
	}

	var removedOrders int64
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Delete(ctx, userID); err != nil {
			return err
		}
		n, err := s.orders.DeleteByUserEmail(ctx, user.Email)
		if err != nil {
			return &cascadeError{err: err}
		}
		removedOrders = n
		return nil
	})
	if err != nil {
		var cascadeErr *cascadeError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperror.NotFound("User not found")
		case errors.As(err, &cascadeErr):
			return internalError(s.log, "Failed to remove user orders", cascadeErr.err,
				zap.String("user_id", userID),
				zap.String("user_email", user.Email),
			)
		default:
			return internalError(s.log, "Failed to delete user", err, zap.String("user_id", userID))
		}
	}

	s.log.Info("User removed",
		zap.String("user_id", userID),
		zap.Int64("orders_removed", removedOrders),
	)
	return nil
}

type cascadeError struct{ err error }

func (e *cascadeError) Error() string { return "cascade delete failed: " + e.err.Error() }

func (e *cascadeError) Unwrap() error { return e.err }

type UpdateCredentialsInput struct {
	CurrentEmail string
	NewEmail     string
	NewPassword  string
}

func (s *AdminUserService) UpdateCredentials(ctx context.Context, in UpdateCredentialsInput) error {
	if in.CurrentEmail == "" || in.NewEmail == "" || in.NewPassword == "" {
		return apperror.Validation("Missing required fields")
	}

	if _, err := s.users.GetByEmail(ctx, in.CurrentEmail); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Admin user not found")
		}
		return internalError(s.log, "Failed to update admin credentials", err)
	}

	hashed, err := hashPassword(in.NewPassword, s.hashCost)
	if err != nil {
		return internalError(s.log, "Failed to update admin credentials", err)
	}

	err = s.users.UpdateCredentials(ctx, repository.UpdateCredentialsParams{
		CurrentEmail: in.CurrentEmail,
		NewEmail:     in.NewEmail,
		PasswordHash: hashed,
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("Admin user not found")
	case errors.Is(err, repository.ErrAlreadyExists):
		return apperror.Conflict("Email already registered")
	case errors.Is(err, repository.ErrUpdateFailed):
		return apperror.Internal("Failed to update admin credentials")
	default:
		return internalError(s.log, "Failed to update admin credentials", err)
	}

	s.log.Info("Admin credentials updated", zap.String("email", in.NewEmail))
	return nil
}
