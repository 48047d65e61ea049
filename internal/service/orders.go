package service

import (
	"context"
	"errors"
	"time"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"go.uber.org/zap"
)

type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, log *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		log:      log.Named("orders"),
		now:      time.Now,
	}
}

type CreateOrderInput struct {
	UserEmail  string
	Items      []model.LineItem
	City       string
	Pincode    model.FlexString
	TotalPrice interface{}
}

// CreateOrder stores a new pending order. Every item gets the image its
// product has right now; later product changes do not touch the order.
// Stock is left alone.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if in.UserEmail == "" || len(in.Items) == 0 || in.City == "" || in.Pincode == "" || in.TotalPrice == nil {
		return nil, apperror.Validation("Missing required order fields")
	}

	items := make([]model.LineItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = item.WithImage(s.productImage(ctx, item.ProductID()))
	}

	order := &model.Order{
		UserEmail:             in.UserEmail,
		Items:                 items,
		City:                  in.City,
		Pincode:               in.Pincode,
		TotalPrice:            in.TotalPrice,
		Status:                model.OrderStatusPending,
		OrderDate:             s.now().UTC().Format(time.RFC3339Nano),
		CancellationRequested: false,
	}

	if _, err := s.orders.Create(ctx, order); err != nil {
		return nil, internalError(s.log, "Failed to place order", err, zap.String("user_email", in.UserEmail))
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_email", order.UserEmail),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// productImage returns "" when the item has no id, the product is gone or
// the lookup fails.
func (s *OrderService) productImage(ctx context.Context, productID interface{}) interface{} {
	if productID == nil {
		return ""
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Product lookup failed while placing order", zap.Any("product_id", productID), zap.Error(err))
		}
		return ""
	}
	return product.Image()
}

func (s *OrderService) ListForUser(ctx context.Context, email string) ([]model.Order, error) {
	orders, err := s.orders.ListByUserEmail(ctx, email)
	if err != nil {
		return nil, internalError(s.log, "Failed to list orders", err, zap.String("user_email", email))
	}
	return orders, nil
}

// RequestCancellation flags the order whatever its status. Repeating it is harmless.
func (s *OrderService) RequestCancellation(ctx context.Context, orderID string) error {
	if err := s.orders.RequestCancellation(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Order not found")
		}
		return internalError(s.log, "Failed to request cancellation", err, zap.String("order_id", orderID))
	}
	s.log.Info("Cancellation requested", zap.String("order_id", orderID))
	return nil
}

func (s *OrderService) AdminList(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, internalError(s.log, "Failed to list orders", err)
	}
	return orders, nil
}

// AdminUpdateStatus stores status verbatim; there is no fixed set of values.
func (s *OrderService) AdminUpdateStatus(ctx context.Context, orderID, status string) error {
	if status == "" {
		return apperror.Validation("Missing status")
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Order not found")
		}
		return internalError(s.log, "Failed to update order status", err, zap.String("order_id", orderID))
	}
	s.log.Info("Order status updated", zap.String("order_id", orderID), zap.String("status", status))
	return nil
}
