package service

import (
	"context"
	"errors"
	"testing"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAccountService(users *MockUserRepository) *AccountService {
	s := NewAccountService(users, zap.NewNop())
	s.hashCost = bcrypt.MinCost
	return s
}

func TestAccountService_Register_Success(t *testing.T) {
	users := new(MockUserRepository)
	s := newAccountService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ann@example.com").Return(nil, repository.ErrNotFound)
	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Name == "Ann" && u.Email == "ann@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret")) == nil
	})).Return("665f1f77bcf86cd799439011", nil)

	err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "s3cret"})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAccountService_Register_MissingFields(t *testing.T) {
	s := newAccountService(new(MockUserRepository))

	for _, in := range []RegisterInput{
		{Email: "a@example.com", Password: "x"},
		{Name: "A", Password: "x"},
		{Name: "A", Email: "a@example.com"},
	} {
		err := s.Register(context.Background(), in)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	s := newAccountService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ann@example.com").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", ctx, mock.Anything).Return("id", nil).Once()
	require.NoError(t, s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "p"}))

	users.On("GetByEmail", ctx, "ann@example.com").Return(&model.User{Email: "ann@example.com"}, nil).Once()
	err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "p"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "Email already registered", err.Error())
	users.AssertNumberOfCalls(t, "Create", 1)
}

func TestAccountService_Register_UniqueIndexRace(t *testing.T) {
	users := new(MockUserRepository)
	s := newAccountService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ann@example.com").Return(nil, repository.ErrNotFound)
	users.On("Create", ctx, mock.Anything).Return("", repository.ErrAlreadyExists)

	err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "p"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestAccountService_Register_StoreFailure(t *testing.T) {
	users := new(MockUserRepository)
	s := newAccountService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ann@example.com").Return(nil, errors.New("connection refused"))

	err := s.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "p"})
	assert.ErrorIs(t, err, apperror.ErrInternal)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestAccountService_Login(t *testing.T) {
	users := new(MockUserRepository)
	s := newAccountService(users)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &model.User{Name: "Ann", Email: "ann@example.com", Password: string(hashed)}

	users.On("GetByEmail", ctx, "ann@example.com").Return(stored, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)

	user, err := s.Login(ctx, "ann@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	_, wrongPassword := s.Login(ctx, "ann@example.com", "wrong")
	_, unknownUser := s.Login(ctx, "ghost@example.com", "right")

	assert.ErrorIs(t, wrongPassword, apperror.ErrAuth)
	assert.ErrorIs(t, unknownUser, apperror.ErrAuth)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAccountService_Login_MissingFields(t *testing.T) {
	s := newAccountService(new(MockUserRepository))

	_, err := s.Login(context.Background(), "", "x")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = s.Login(context.Background(), "a@example.com", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
