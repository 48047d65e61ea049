package httpapi

import (
	"context"
	"net/http"

	"storefront-backend/internal/model"
	"storefront-backend/internal/platform/metrics"
	"storefront-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) error
	Login(ctx context.Context, email, password string) (*model.User, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateStock(ctx context.Context, productID int64, stock *int) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (*model.Order, error)
	ListForUser(ctx context.Context, email string) ([]model.Order, error)
	RequestCancellation(ctx context.Context, orderID string) error
	AdminList(ctx context.Context) ([]model.Order, error)
	AdminUpdateStatus(ctx context.Context, orderID, status string) error
}

type CartService interface {
	GetCart(ctx context.Context, email string) ([]model.LineItem, error)
	SaveCart(ctx context.Context, email string, items []model.LineItem) error
}

type AdminUserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, userID string) error
	UpdateCredentials(ctx context.Context, in service.UpdateCredentialsInput) error
}

// HealthCheck reports whether the backing store answers.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Accounts   AccountService
	Catalog    CatalogService
	Orders     OrderService
	Cart       CartService
	AdminUsers AdminUserService
}

type Options struct {
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	Realtime       http.Handler
	Health         HealthCheck
	AllowedOrigins []string
}

func NewRouter(svc Services, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{svc: svc, log: log.Named("http")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(h.log))
	if opts.Metrics != nil {
		r.Use(instrument(opts.Metrics))
	}
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/", h.index)
	r.GET("/health", health(opts.Health))
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.Realtime != nil {
		r.GET("/ws", gin.WrapH(opts.Realtime))
	}

	api := r.Group("/api")
	{
		// Auth
		api.POST("/register", h.register)
		api.POST("/login", h.login)

		// Products
		api.GET("/products", h.listProducts)
		api.POST("/products/:id/stock", h.updateStock)

		// Orders
		api.POST("/orders", h.createOrder)
		api.GET("/orders/:email", h.listOrdersForUser)
		api.POST("/orders/:id/request-cancellation", h.requestCancellation)

		// Cart
		api.GET("/cart/:email", h.getCart)
		api.POST("/cart", h.saveCart)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/orders", h.adminListOrders)
		admin.PUT("/orders/:id/status", h.adminUpdateStatus)
		admin.GET("/users", h.adminListUsers)
		admin.DELETE("/users/:id", h.adminDeleteUser)
		admin.PUT("/update-credentials", h.updateAdminCredentials)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func health(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
