package repository

import (
	"context"

	"storefront-backend/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (string, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateCredentials(ctx context.Context, params UpdateCredentialsParams) error
	Delete(ctx context.Context, userID string) error
}

type UpdateCredentialsParams struct {
	CurrentEmail string
	NewEmail     string
	PasswordHash string
}

type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	// GetByID matches the stored "id" against productID as given.
	GetByID(ctx context.Context, productID interface{}) (model.Product, error)
	UpdateStock(ctx context.Context, productID int64, stock int) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (string, error)
	ListByUserEmail(ctx context.Context, email string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	RequestCancellation(ctx context.Context, orderID string) error
	UpdateStatus(ctx context.Context, orderID, status string) error
	DeleteByUserEmail(ctx context.Context, email string) (int64, error)
}

type CartRepository interface {
	GetByUserEmail(ctx context.Context, email string) (*model.Cart, error)
	Save(ctx context.Context, email string, items []model.LineItem) error
}

// ProductListCache holds the whole catalog listing under a generation that
// Invalidate advances. Get reports the generation it saw, also on
// ErrCacheMiss, and Set stores products for that generation; an entry written
// for an older generation is never served.
type ProductListCache interface {
	Get(ctx context.Context) ([]model.Product, int64, error)
	Set(ctx context.Context, generation int64, products []model.Product) error
	Invalidate(ctx context.Context) error
}

// Transactor runs fn so that every store call made with the context it
// receives commits or aborts together, when the deployment supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
