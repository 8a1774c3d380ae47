package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/service"
)

// Server is the HTTP adapter over the order and inventory services.
// Identity resolution is an external concern, so handlers take
// explicit user ids the way the original API paths do.
type Server struct {
	engine    *gin.Engine
	orders    *service.OrderService
	inventory *service.InventoryService
}

func NewServer(orders *service.OrderService, inventory *service.InventoryService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())
	s := &Server{engine: r, orders: orders, inventory: inventory}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	user := s.engine.Group("/api/user")
	{
		user.POST("/order/place", s.placeOrder)
		user.GET("/order/all/:userId", s.ordersForBuyer)
	}

	seller := s.engine.Group("/api/seller")
	{
		seller.GET("/order/all/:sellerId", s.ordersForSeller)
		seller.PUT("/order/accept/:orderId", s.acceptOrder)
		seller.PUT("/order/complete/:orderId", s.completeOrder)

		seller.POST("/products/add", s.addProducts)
		seller.PUT("/products/update", s.updateQuantity)
		seller.DELETE("/products/:productId", s.removeProduct)
		seller.GET("/products/listed/:sellerId", s.listedProducts)
		seller.GET("/products/unlisted/:sellerId", s.unlistedProducts)
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type placeOrderRequest struct {
	RequestID  string  `json:"requestId"`
	UserID     int64   `json:"userId"`
	SellerID   int64   `json:"sellerId"`
	ProductIDs []int64 `json:"productId"`
	Quantities []int   `json:"quantity"`
	Price      int     `json:"price"`
}

func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.ProductIDs) == 0 || len(req.ProductIDs) != len(req.Quantities) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product quantities"})
		return
	}
	items := make([]domain.LineInput, 0, len(req.ProductIDs))
	for i, id := range req.ProductIDs {
		items = append(items, domain.LineInput{ProductID: id, Quantity: req.Quantities[i]})
	}

	orderID, err := s.orders.Place(c.Request.Context(), req.RequestID, req.UserID, req.SellerID, req.Price, items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"orderId": orderID,
		"message": "Order placed successfully",
	})
}

func (s *Server) ordersForBuyer(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	summaries, err := s.orders.OrdersForBuyer(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": summaries})
}

func (s *Server) ordersForSeller(c *gin.Context) {
	sellerID, ok := pathID(c, "sellerId")
	if !ok {
		return
	}
	summaries, err := s.orders.OrdersForSeller(c.Request.Context(), sellerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": summaries})
}

func (s *Server) acceptOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	if err := s.orders.Accept(c.Request.Context(), orderID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order accepted."})
}

func (s *Server) completeOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	done, err := s.orders.Complete(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !done {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order not found or not accepted yet."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order completed."})
}

type addProductsRequest struct {
	SellerID   int64   `json:"sellerId"`
	ProductIDs []int64 `json:"productIds"`
}

func (s *Server) addProducts(c *gin.Context) {
	var req addProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.inventory.ListProducts(c.Request.Context(), req.SellerID, req.ProductIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Products added successfully"})
}

type updateQuantityRequest struct {
	SellerID  int64 `json:"sellerId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (s *Server) updateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.inventory.UpdateQuantity(c.Request.Context(), req.SellerID, req.ProductID, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

func (s *Server) removeProduct(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	sellerID, err := strconv.ParseInt(c.Query("sellerId"), 10, 64)
	if err != nil || sellerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sellerId"})
		return
	}
	if err := s.inventory.RemoveProduct(c.Request.Context(), sellerID, productID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (s *Server) listedProducts(c *gin.Context) {
	sellerID, ok := pathID(c, "sellerId")
	if !ok {
		return
	}
	listings, err := s.inventory.ListedProducts(c.Request.Context(), sellerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": listings})
}

func (s *Server) unlistedProducts(c *gin.Context) {
	sellerID, ok := pathID(c, "sellerId")
	if !ok {
		return
	}
	listings, err := s.inventory.UnlistedProducts(c.Request.Context(), sellerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": listings})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// writeError maps the engine's error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrBuyerNotFound),
		errors.Is(err, service.ErrSellerNotFound),
		errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     stockErr.Error(),
			"productId": stockErr.ProductID,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error please try again later"})
	}
}
