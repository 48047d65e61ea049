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

const msgInvalidCredentials = "Invalid email or password"

type AccountService struct {
	users    repository.UserRepository
	log      *zap.Logger
	hashCost int
}

func NewAccountService(users repository.UserRepository, log *zap.Logger) *AccountService {
	return &AccountService{
		users:    users,
		log:      log.Named("accounts"),
		hashCost: bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) error {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return apperror.Validation("Missing required fields")
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return apperror.Conflict("Email already registered")
	case !errors.Is(err, repository.ErrNotFound):
		return internalError(s.log, "Failed to register user", err, zap.String("email", in.Email))
	}

	hashed, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return internalError(s.log, "Failed to register user", err)
	}

	user := &model.User{Name: in.Name, Email: in.Email, Password: hashed}
	if _, err := s.users.Create(ctx, user); err != nil {
		// Lost a race against a concurrent registration; the unique index caught it.
		if errors.Is(err, repository.ErrAlreadyExists) {
			return apperror.Conflict("Email already registered")
		}
		return internalError(s.log, "Failed to register user", err, zap.String("email", in.Email))
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.Hex()))
	return nil
}

// Login checks the credentials and returns the user. Unknown email and wrong
// password produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("Missing email or password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Auth(msgInvalidCredentials)
		}
		return nil, internalError(s.log, "Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Auth(msgInvalidCredentials)
	}
	return user, nil
}
