package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/example/shopcore/pkg/backend"
	"github.com/example/shopcore/pkg/config"
	"github.com/example/shopcore/pkg/models"
	"github.com/example/shopcore/pkg/store"
	"github.com/example/shopcore/pkg/workflow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gateway is the HTTP facade over the orchestration core: it translates
// REST intents into workflow triggers and selector reads into JSON.
type Gateway struct {
	config  *config.Config
	engine  *workflow.Engine
	views   *store.Views
	backend backend.Gateway
	logger  *zap.Logger
	router  *gin.Engine
}

func NewGateway(cfg *config.Config, logger *zap.Logger, engine *workflow.Engine, views *store.Views, be backend.Gateway) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Gateway{
		config:  cfg,
		engine:  engine,
		views:   views,
		backend: be,
		logger:  logger,
		router:  router,
	}
}

func (g *Gateway) SetupRoutes() {
	// Health check
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := g.router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", g.listProducts)
			products.GET("/:id", g.getProduct)
			products.POST("/refresh", g.refreshProducts)
			products.POST("/more", g.loadMoreProducts)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", g.getCart)
			cart.POST("/items", g.addToCart)
			cart.PUT("/items/:id", g.updateQuantity)
			cart.DELETE("/items/:id", g.removeFromCart)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", g.placeOrder)
			orders.GET("", g.listOrders)
			orders.GET("/current", g.currentOrder)
			orders.DELETE("/current", g.clearCurrentOrder)
		}
	}
}

// Router exposes the underlying engine for serving and tests.
func (g *Gateway) Router() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Server.Host, g.config.Server.Port)
	g.logger.Info("Gateway starting", zap.String("address", addr))
	return g.router.Run(addr)
}

func (g *Gateway) productsPayload() gin.H {
	return gin.H{
		"products":   g.views.AllProducts(),
		"pagination": g.views.Pagination(),
		"filters":    g.views.Filters(),
		"loading":    g.views.ProductsLoading(),
		"error":      g.views.ProductsError(),
	}
}

func (g *Gateway) cartPayload() gin.H {
	return gin.H{
		"items":   g.views.CartLinesWithProducts(),
		"total":   g.views.CartTotal(),
		"count":   g.views.CartCount(),
		"loading": g.views.CartLoading(),
		"error":   g.views.CartError(),
	}
}

// browseQuery translates optional query params into a batch filter change.
func browseQuery(c *gin.Context) (workflow.BrowseQuery, error) {
	var q workflow.BrowseQuery
	if search, ok := c.GetQuery("search"); ok {
		q.Search = &search
	}
	if category, ok := c.GetQuery("category"); ok {
		cat := models.Category(category)
		if cat != "" && !cat.Valid() {
			return q, fmt.Errorf("unknown category %q", category)
		}
		q.Category = &cat
	}
	if sortBy, ok := c.GetQuery("sort"); ok {
		s := models.SortOption(sortBy)
		q.SortBy = &s
	}
	if page, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return q, fmt.Errorf("invalid page %q", page)
		}
		q.Page = &n
	}
	return q, nil
}

// listProducts serves the loaded catalog window. When the request carries
// filter params it re-browses first, so the response reflects them.
func (g *Gateway) listProducts(c *gin.Context) {
	q, err := browseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Search != nil || q.Category != nil || q.SortBy != nil || q.Page != nil {
		if err := <-g.engine.Browse(q); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, g.productsPayload())
}

func (g *Gateway) refreshProducts(c *gin.Context) {
	q, err := browseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := <-g.engine.Browse(q); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, g.productsPayload())
}

func (g *Gateway) loadMoreProducts(c *gin.Context) {
	if err := <-g.engine.LoadMore(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, g.productsPayload())
}

func (g *Gateway) getProduct(c *gin.Context) {
	id := c.Param("id")
	if product := g.views.ProductByID(id); product != nil {
		c.JSON(http.StatusOK, product)
		return
	}

	// Not in the loaded catalog window; ask the backend directly.
	product, err := g.backend.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, g.cartPayload())
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (g *Gateway) addToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := <-g.engine.AddToCart(req.ProductID, req.Quantity); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, g.cartPayload())
}

func (g *Gateway) updateQuantity(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := <-g.engine.UpdateQuantity(c.Param("id"), req.Quantity); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, g.cartPayload())
}

func (g *Gateway) removeFromCart(c *gin.Context) {
	g.engine.RemoveFromCart(c.Param("id"))
	c.JSON(http.StatusOK, g.cartPayload())
}

func (g *Gateway) placeOrder(c *gin.Context) {
	if err := <-g.engine.PlaceOrder(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": g.views.CurrentOrder()})
}

func (g *Gateway) listOrders(c *gin.Context) {
	if err := <-g.engine.FetchOrders(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": g.views.AllOrders(),
		"total":  len(g.views.AllOrders()),
	})
}

func (g *Gateway) currentOrder(c *gin.Context) {
	order := g.views.CurrentOrder()
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no current order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (g *Gateway) clearCurrentOrder(c *gin.Context) {
	g.engine.ClearCurrentOrder()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// statusFor maps workflow failures onto HTTP statuses.
func statusFor(err error) int {
	var exceeded *workflow.StockExceededError
	var limit *workflow.StockLimitError
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrEmptyCart),
		errors.Is(err, workflow.ErrOutOfStock),
		errors.As(err, &exceeded),
		errors.As(err, &limit):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrSuperseded):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
