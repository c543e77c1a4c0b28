package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	"storefront/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CartService interface {
	CreateOrGet(ctx context.Context, cartID string) (*domain.Cart, bool, error)
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	List(ctx context.Context) ([]domain.Cart, error)
	AddItem(ctx context.Context, cartID string, in cartsvc.AddItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID string, productID int) (*domain.Cart, bool, error)
	Clear(ctx context.Context, cartID string) (*domain.Cart, error)
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, in checkoutsvc.PlaceOrderInput) (*checkoutsvc.Placement, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ReconcileUnclearedCarts(ctx context.Context) (int, error)
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int) (*domain.Product, error)
	ListAttributePrices(ctx context.Context, productID int) ([]domain.AttributePrice, error)
	Create(ctx context.Context, in productsvc.UpsertInput) (*domain.Product, error)
	Update(ctx context.Context, id int, in productsvc.UpsertInput) (*domain.Product, error)
}

// Deps holds the services the routes dispatch to.
type Deps struct {
	CartSvc     CartService
	CheckoutSvc CheckoutService
	ProductSvc  ProductService
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.CheckoutSvc == nil || deps.ProductSvc == nil {
		return nil, errors.New("httpserver: cart, checkout and product services are required")
	}
	logger = logging.OrNop(logger)

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(telemetry.RouteMiddleware(), logging.Middleware(logger), gin.Recovery(), corsMiddleware(corsOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	carts := router.Group("/carts")
	carts.POST("", createCartHandler(deps.CartSvc, logger))
	carts.GET("/:cartId", getCartHandler(deps.CartSvc, logger))
	carts.POST("/:cartId/items", addItemHandler(deps.CartSvc, logger))
	carts.DELETE("/:cartId/items/:productId", removeItemHandler(deps.CartSvc, logger))
	carts.DELETE("/:cartId/items", clearCartHandler(deps.CartSvc, logger))

	router.POST("/orders", placeOrderHandler(deps.CheckoutSvc, logger))

	items := router.Group("/items")
	items.GET("", listProductsHandler(deps.ProductSvc, logger))
	items.GET("/:itemId", getProductHandler(deps.ProductSvc, logger))
	items.GET("/:itemId/attributes", listAttributePricesHandler(deps.ProductSvc, logger))

	admin := router.Group("/admin")
	admin.GET("/carts", listCartsHandler(deps.CartSvc, logger))
	admin.GET("/orders", listOrdersHandler(deps.CheckoutSvc, logger))
	admin.POST("/orders/reconcile", reconcileHandler(deps.CheckoutSvc, logger))
	admin.POST("/items", createProductHandler(deps.ProductSvc, logger))
	admin.PUT("/items/:itemId", updateProductHandler(deps.ProductSvc, logger))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found", "code": codeNotFound})
	})

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
