package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc Services
	log *zap.Logger
}

func (h *Handler) fail(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), gin.H{"error": apperror.Message(err)})
}

// bind decodes the JSON body into dst and answers 400 when it cannot.
func (h *Handler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Debug("Invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		h.fail(c, apperror.Validation("Invalid request body"))
		return false
	}
	return true
}

func (h *Handler) index(c *gin.Context) {
	c.String(http.StatusOK, "E-commerce backend is running.")
}

// ----- Auth -----

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req) {
		return
	}
	err := h.svc.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	user, err := h.svc.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "name": user.Name})
}

// ----- Products -----

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.svc.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

func (h *Handler) updateStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	var req stockRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.Catalog.UpdateStock(c.Request.Context(), productID, req.Stock); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated"})
}

// ----- Orders -----

type createOrderRequest struct {
	UserEmail  string           `json:"user_email"`
	Items      []model.LineItem `json:"items"`
	City       string           `json:"city"`
	Pincode    model.FlexString `json:"pincode"`
	TotalPrice json.RawMessage  `json:"total_price"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if !h.bind(c, &req) {
		return
	}
	totalPrice, err := model.DecodeValue(req.TotalPrice)
	if err != nil {
		h.fail(c, apperror.Validation("Invalid request body"))
		return
	}
	_, err = h.svc.Orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserEmail:  req.UserEmail,
		Items:      req.Items,
		City:       req.City,
		Pincode:    req.Pincode,
		TotalPrice: totalPrice,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully"})
}

func (h *Handler) listOrdersForUser(c *gin.Context) {
	orders, err := h.svc.Orders.ListForUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) requestCancellation(c *gin.Context) {
	if err := h.svc.Orders.RequestCancellation(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cancellation requested successfully"})
}

func (h *Handler) adminListOrders(c *gin.Context) {
	orders, err := h.svc.Orders.AdminList(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) adminUpdateStatus(c *gin.Context) {
	var req statusRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.Orders.AdminUpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
}

// ----- Cart -----

func (h *Handler) getCart(c *gin.Context) {
	items, err := h.svc.Cart.GetCart(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type saveCartRequest struct {
	UserEmail string           `json:"user_email"`
	Items     []model.LineItem `json:"items"`
}

func (h *Handler) saveCart(c *gin.Context) {
	var req saveCartRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.Cart.SaveCart(c.Request.Context(), req.UserEmail, req.Items); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart saved successfully"})
}

// ----- Admin users -----

func (h *Handler) adminListUsers(c *gin.Context) {
	users, err := h.svc.AdminUsers.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	if err := h.svc.AdminUsers.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User and their orders removed successfully"})
}

type updateCredentialsRequest struct {
	CurrentEmail string `json:"current_email"`
	NewEmail     string `json:"new_email"`
	NewPassword  string `json:"new_password"`
}

func (h *Handler) updateAdminCredentials(c *gin.Context) {
	var req updateCredentialsRequest
	if !h.bind(c, &req) {
		return
	}
	err := h.svc.AdminUsers.UpdateCredentials(c.Request.Context(), service.UpdateCredentialsInput{
		CurrentEmail: req.CurrentEmail,
		NewEmail:     req.NewEmail,
		NewPassword:  req.NewPassword,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin credentials updated successfully"})
}
