package api

import (
	"net/http"
	"time"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler contains HTTP handlers
type Handler struct {
	checkoutService *service.CheckoutService
	cartService     *service.CartService
	orderService    *service.OrderService
	productService  *service.ProductService
	jwtSecret       string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	checkoutService *service.CheckoutService,
	cartService *service.CartService,
	orderService *service.OrderService,
	productService *service.ProductService,
	jwtSecret string,
) *Handler {
	return &Handler{
		checkoutService: checkoutService,
		cartService:     cartService,
		orderService:    orderService,
		productService:  productService,
		jwtSecret:       jwtSecret,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
	}

	authed := v1.Group("", Authenticate(h.jwtSecret))
	{
		authed.GET("/cart", h.getCart)
		authed.POST("/cart", h.addCartItem)
		authed.PUT("/cart/:itemId", h.updateCartItem)
		authed.DELETE("/cart/:itemId", h.removeCartItem)
		authed.DELETE("/cart", h.clearCart)

		authed.POST("/orders", h.checkout)
		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.PUT("/orders/:id/cancel", h.cancelOrder)

		admin := authed.Group("", RequireAdmin())
		{
			admin.DELETE("/orders/:id", h.deleteOrder)
			admin.DELETE("/orders", h.deleteAllOrders)

			admin.POST("/products", h.createProduct)
			admin.PUT("/products/:id", h.updateProduct)
			admin.DELETE("/products/:id", h.deleteProduct)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// checkout converts the caller's cart into an order.
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), userID(c), &req)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, CheckoutResponse{
		Message: "order created successfully",
		Order:   order,
	})
}

// listOrders returns the caller's orders with a count.
func (h *Handler) listOrders(c *gin.Context) {
	list, err := h.orderService.ListOrders(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// getOrder returns one of the caller's orders.
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := objectID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID(c), orderID)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// cancelOrder cancels one of the caller's pending orders.
func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := objectID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), userID(c), orderID)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// deleteOrder hard-deletes one order (admin).
func (h *Handler) deleteOrder(c *gin.Context) {
	orderID, ok := objectID(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "order deleted successfully"})
}

// deleteAllOrders hard-deletes every order (admin).
func (h *Handler) deleteAllOrders(c *gin.Context) {
	deleted, err := h.orderService.DeleteAllOrders(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, PurgeResponse{Message: "all orders deleted", Deleted: deleted})
}

// getCart returns the caller's populated cart.
func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CartResponse{Cart: cart})
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// addCartItem adds or merges one product into the caller's cart.
func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
		return
	}

	item, err := h.cartService.AddItem(c.Request.Context(), userID(c), productID, req.Quantity)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CartItemResponse{
		Message: "item added to cart",
		Item:    item,
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// updateCartItem sets the quantity of one cart line.
func (h *Handler) updateCartItem(c *gin.Context) {
	itemID, ok := objectID(c, "itemId")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), userID(c), itemID, req.Quantity)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CartResponse{Cart: cart})
}

// removeCartItem removes one cart line. Removing an already-removed line
// returns the unchanged cart.
func (h *Handler) removeCartItem(c *gin.Context) {
	itemID, ok := objectID(c, "itemId")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), userID(c), itemID)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CartResponse{Cart: cart})
}

// clearCart empties the caller's cart.
func (h *Handler) clearCart(c *gin.Context) {
	cart, err := h.cartService.ClearCart(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CartResponse{Message: "cart cleared", Cart: cart})
}

// listProducts returns the catalog.
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns one product.
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// createProduct adds a product to the catalog (admin).
func (h *Handler) createProduct(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ProductResponse{Message: "product created successfully", Product: product})
}

// updateProduct patches product fields (admin).
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ProductResponse{Message: "product updated successfully", Product: product})
}

// deleteProduct removes a product (admin).
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "product deleted successfully"})
}

// objectID parses a path parameter as an ObjectID, writing a 400 on failure.
func objectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param})
		return primitive.NilObjectID, false
	}
	return id, true
}
