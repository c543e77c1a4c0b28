package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type placeOrderRequest struct {
	ShopperName   string             `json:"shopperName" binding:"required"`
	CartID        string             `json:"cartId" binding:"required"`
	Items         []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	TotalQuantity int                `json:"totalQuantity" binding:"required,gt=0"`
	TotalPrice    *float64           `json:"totalPrice" binding:"required,gte=0"`
}

type orderItemRequest struct {
	ProductID         int     `json:"productId" binding:"required,gt=0"`
	Title             string  `json:"title"`
	ImageURL          string  `json:"imageUrl"`
	Price             float64 `json:"price" binding:"gte=0"`
	Quantity          int     `json:"quantity" binding:"required,gt=0"`
	SelectedAttribute string  `json:"selectedAttribute"`
}

func placeOrderHandler(svc CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		items := make([]domain.LineItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, domain.LineItem{
				ProductID:         it.ProductID,
				Title:             it.Title,
				ImageURL:          it.ImageURL,
				Price:             it.Price,
				Quantity:          it.Quantity,
				SelectedAttribute: it.SelectedAttribute,
			})
		}

		placement, err := svc.PlaceOrder(c.Request.Context(), checkoutsvc.PlaceOrderInput{
			ShopperName:   req.ShopperName,
			CartID:        req.CartID,
			Items:         items,
			TotalQuantity: req.TotalQuantity,
			TotalPrice:    req.TotalPrice,
		})
		if err != nil {
			writeError(c, logger, err, "Failed to place order.")
			return
		}

		message := "Order placed and cart cleared successfully."
		if !placement.CartCleared {
			message = "Order placed, but cart could not be cleared. Please contact support."
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":     message,
			"result":      placement.Order,
			"cartCleared": placement.CartCleared,
		})
	}
}

func listOrdersHandler(svc CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListOrders(c.Request.Context())
		if err != nil {
			writeError(c, logger, err, "Failed to fetch orders.")
			return
		}
		respond(c, http.StatusOK, "Orders fetched successfully.", orders)
	}
}

func reconcileHandler(svc CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.ReconcileUnclearedCarts(c.Request.Context())
		if err != nil {
			logger.Error("reconcile", zap.Int("reconciled", n), zap.Error(err))
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, codeStore, "Failed to reconcile orders.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reconciliation finished.", "reconciled": n})
	}
}
