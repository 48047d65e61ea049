package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrderService(orders *MockOrderRepository, products *MockProductRepository) *OrderService {
	s := NewOrderService(orders, products, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	return s
}

func TestOrderService_CreateOrder_SnapshotsImages(t *testing.T) {
	orders := new(MockOrderRepository)
	products := new(MockProductRepository)
	s := newOrderService(orders, products)
	ctx := context.Background()

	products.On("GetByID", ctx, int64(1)).Return(model.Product{"id": int64(1), "image": "img.png"}, nil)
	products.On("GetByID", ctx, int64(2)).Return(nil, repository.ErrNotFound)
	products.On("GetByID", ctx, "sku-3").Return(model.Product{"id": "sku-3"}, nil)
	orders.On("Create", ctx, mock.AnythingOfType("*model.Order")).Return("665f1f77bcf86cd799439011", nil)

	order, err := s.CreateOrder(ctx, CreateOrderInput{
		UserEmail: "ann@example.com",
		Items: []model.LineItem{
			{"id": int64(1), "name": "Lamp", "quantity": int64(2), "price": int64(10)},
			{"id": int64(2), "name": "Gone", "quantity": int64(1), "price": "5.00"},
			{"id": "sku-3", "quantity": int64(1)},
			{"name": "No id", "quantity": int64(1)},
		},
		City:       "Pune",
		Pincode:    "411001",
		TotalPrice: 25.0,
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 4)
	assert.Equal(t, model.LineItem{"id": int64(1), "name": "Lamp", "quantity": int64(2), "price": int64(10), "image": "img.png"}, order.Items[0])
	assert.Equal(t, model.LineItem{"id": int64(2), "name": "Gone", "quantity": int64(1), "price": "5.00", "image": ""}, order.Items[1])
	assert.Equal(t, "", order.Items[2]["image"])
	assert.Equal(t, "", order.Items[3]["image"])
	products.AssertNumberOfCalls(t, "GetByID", 3)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.False(t, order.CancellationRequested)
	assert.Equal(t, 25.0, order.TotalPrice)
	assert.Equal(t, "2024-05-01T10:30:00Z", order.OrderDate)
	orders.AssertExpectations(t)
}

func TestOrderService_CreateOrder_LookupFailureLeavesImageEmpty(t *testing.T) {
	orders := new(MockOrderRepository)
	products := new(MockProductRepository)
	s := newOrderService(orders, products)
	ctx := context.Background()

	products.On("GetByID", ctx, int64(1)).Return(nil, errors.New("socket closed"))
	orders.On("Create", ctx, mock.Anything).Return("id", nil)

	order, err := s.CreateOrder(ctx, CreateOrderInput{
		UserEmail:  "ann@example.com",
		Items:      []model.LineItem{{"id": int64(1), "quantity": int64(1)}},
		City:       "Pune",
		Pincode:    "411001",
		TotalPrice: int64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "", order.Items[0]["image"])
}

func TestOrderService_CreateOrder_MissingFields(t *testing.T) {
	s := newOrderService(new(MockOrderRepository), new(MockProductRepository))
	full := CreateOrderInput{
		UserEmail:  "ann@example.com",
		Items:      []model.LineItem{{"id": int64(1), "quantity": int64(1)}},
		City:       "Pune",
		Pincode:    "411001",
		TotalPrice: int64(1),
	}

	cases := map[string]func(in *CreateOrderInput){
		"email":   func(in *CreateOrderInput) { in.UserEmail = "" },
		"items":   func(in *CreateOrderInput) { in.Items = nil },
		"empty":   func(in *CreateOrderInput) { in.Items = []model.LineItem{} },
		"city":    func(in *CreateOrderInput) { in.City = "" },
		"pincode": func(in *CreateOrderInput) { in.Pincode = "" },
		"total":   func(in *CreateOrderInput) { in.TotalPrice = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := full
			mutate(&in)
			_, err := s.CreateOrder(context.Background(), in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, "Missing required order fields", err.Error())
		})
	}
}

func TestOrderService_RequestCancellation(t *testing.T) {
	orders := new(MockOrderRepository)
	s := newOrderService(orders, new(MockProductRepository))
	ctx := context.Background()

	orders.On("RequestCancellation", ctx, "a").Return(nil)
	orders.On("RequestCancellation", ctx, "b").Return(repository.ErrNotFound)

	assert.NoError(t, s.RequestCancellation(ctx, "a"))
	assert.NoError(t, s.RequestCancellation(ctx, "a"))

	err := s.RequestCancellation(ctx, "b")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "Order not found", err.Error())
}

func TestOrderService_AdminUpdateStatus(t *testing.T) {
	orders := new(MockOrderRepository)
	s := newOrderService(orders, new(MockProductRepository))
	ctx := context.Background()

	orders.On("UpdateStatus", ctx, "a", "Shipped").Return(nil)
	orders.On("UpdateStatus", ctx, "missing", "Shipped").Return(repository.ErrNotFound)

	assert.NoError(t, s.AdminUpdateStatus(ctx, "a", "Shipped"))
	assert.ErrorIs(t, s.AdminUpdateStatus(ctx, "missing", "Shipped"), apperror.ErrNotFound)

	err := s.AdminUpdateStatus(ctx, "a", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Missing status", err.Error())
	orders.AssertNumberOfCalls(t, "UpdateStatus", 2)
}

func TestOrderService_Listing(t *testing.T) {
	orders := new(MockOrderRepository)
	s := newOrderService(orders, new(MockProductRepository))
	ctx := context.Background()

	mine := []model.Order{{UserEmail: "ann@example.com", Status: "Pending"}}
	orders.On("ListByUserEmail", ctx, "ann@example.com").Return(mine, nil)
	orders.On("ListAll", ctx).Return(nil, errors.New("down"))

	got, err := s.ListForUser(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, mine, got)

	_, err = s.AdminList(ctx)
	assert.ErrorIs(t, err, apperror.ErrInternal)
}
