package service

import (
	"context"
	"errors"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/realtime"
	"storefront-backend/internal/repository"

	"go.uber.org/zap"
)

type CatalogService struct {
	products    repository.ProductRepository
	cache       repository.ProductListCache
	broadcaster realtime.Broadcaster
	log         *zap.Logger
}

// NewCatalogService wires the catalog. cache may be nil.
func NewCatalogService(
	products repository.ProductRepository,
	cache repository.ProductListCache,
	broadcaster realtime.Broadcaster,
	log *zap.Logger,
) *CatalogService {
	return &CatalogService{
		products:    products,
		cache:       cache,
		broadcaster: broadcaster,
		log:         log.Named("catalog"),
	}
}

// ListProducts serves the cached listing when it is current. On a miss the
// store is read and written back under the generation seen before the read,
// so a stock update landing in between leaves the cache empty.
func (s *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	var (
		generation int64
		refill     bool
	)
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx)
		switch {
		case err == nil:
			return cached, nil
		case errors.Is(err, repository.ErrCacheMiss):
			generation, refill = gen, true
		default:
			s.log.Warn("Catalog cache read failed, falling back to store", zap.Error(err))
		}
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, internalError(s.log, "Failed to list products", err)
	}

	if refill {
		if err := s.cache.Set(ctx, generation, products); err != nil {
			s.log.Warn("Failed to populate catalog cache", zap.Error(err))
		}
	}
	return products, nil
}

// UpdateStock sets the stock of a product and announces it to realtime
// listeners. Any integer is accepted, negative included.
func (s *CatalogService) UpdateStock(ctx context.Context, productID int64, stock *int) error {
	if stock == nil {
		return apperror.Validation("Missing stock value")
	}

	if err := s.products.UpdateStock(ctx, productID, *stock); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Product not found")
		}
		return internalError(s.log, "Failed to update stock", err, zap.Int64("product_id", productID))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
	}

	ev, err := realtime.NewEvent(realtime.EventStockUpdate, realtime.StockUpdate{ProductID: productID, Stock: *stock})
	if err != nil {
		s.log.Error("Failed to build stock event", zap.Error(err))
		return nil
	}
	s.broadcaster.Broadcast(ctx, ev)
	return nil
}
