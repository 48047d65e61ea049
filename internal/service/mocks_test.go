package service

import (
	"context"
	"sync"

	"storefront-backend/internal/model"
	"storefront-backend/internal/realtime"
	"storefront-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateCredentials(ctx context.Context, params repository.UpdateCredentialsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, productID interface{}) (model.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, productID int64, stock int) error {
	args := m.Called(ctx, productID, stock)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) ListByUserEmail(ctx context.Context, email string) ([]model.Order, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) RequestCancellation(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteByUserEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUserEmail(ctx context.Context, email string) (*model.Cart, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, email string, items []model.LineItem) error {
	args := m.Called(ctx, email, items)
	return args.Error(0)
}

type MockProductListCache struct {
	mock.Mock
}

func (m *MockProductListCache) Get(ctx context.Context) ([]model.Product, int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductListCache) Set(ctx context.Context, generation int64, products []model.Product) error {
	args := m.Called(ctx, generation, products)
	return args.Error(0)
}

func (m *MockProductListCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, ev realtime.Event) {
	m.Called(ctx, ev)
}

// memoryCatalogCache keeps the listing in memory with the same generation
// rules as the redis cache.
type memoryCatalogCache struct {
	mu         sync.Mutex
	generation int64
	entryGen   int64
	products   []model.Product
}

func (c *memoryCatalogCache) Get(ctx context.Context) ([]model.Product, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.products == nil || c.entryGen != c.generation {
		return nil, c.generation, repository.ErrCacheMiss
	}
	return c.products, c.generation, nil
}

func (c *memoryCatalogCache) Set(ctx context.Context, generation int64, products []model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entryGen, c.products = generation, products
	return nil
}

func (c *memoryCatalogCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.products = nil
	return nil
}

// directTx runs the callback inline, like a store without transactions.
type directTx struct{}

func (directTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
