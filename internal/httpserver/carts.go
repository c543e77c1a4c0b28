package httpserver

import (
	"net/http"

	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createCartRequest struct {
	CartID string `json:"cartId" binding:"required"`
}

type addItemRequest struct {
	ProductID         int      `json:"productId" binding:"required,gt=0"`
	Quantity          int      `json:"quantity" binding:"required,gt=0"`
	SelectedAttribute string   `json:"selectedAttribute"`
	SelectedPrice     *float64 `json:"selectedPrice"`
}

func createCartHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		cart, created, err := svc.CreateOrGet(c.Request.Context(), req.CartID)
		if err != nil {
			writeError(c, logger, err, "Failed to create shopping cart.")
			return
		}
		if !created {
			c.JSON(http.StatusOK, gin.H{"message": "Cart already exists.", "cartId": cart.ID, "result": cart})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "New cart created successfully.", "cartId": cart.ID, "result": cart})
	}
}

func getCartHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), c.Param("cartId"))
		if err != nil {
			writeError(c, logger, err, "Failed to fetch shopping cart.")
			return
		}
		respond(c, http.StatusOK, "Cart fetched successfully.", cart)
	}
}

func addItemHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), c.Param("cartId"), cartsvc.AddItemInput{
			ProductID:         req.ProductID,
			Quantity:          req.Quantity,
			SelectedAttribute: req.SelectedAttribute,
			SelectedPrice:     req.SelectedPrice,
		})
		if err != nil {
			writeError(c, logger, err, "Failed to add item to shopping cart.")
			return
		}
		respond(c, http.StatusOK, "Item added to cart successfully.", cart)
	}
}

func removeItemHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := positiveIntParam(c, "productId")
		if !ok {
			return
		}
		cart, removed, err := svc.RemoveItem(c.Request.Context(), c.Param("cartId"), productID)
		if err != nil {
			writeError(c, logger, err, "Failed to remove item from shopping cart.")
			return
		}
		if !removed {
			respond(c, http.StatusOK, "Item not found in cart, no changes applied.", cart)
			return
		}
		respond(c, http.StatusOK, "Item removed from cart successfully.", cart)
	}
}

func clearCartHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Clear(c.Request.Context(), c.Param("cartId"))
		if err != nil {
			writeError(c, logger, err, "Failed to clear shopping cart.")
			return
		}
		respond(c, http.StatusOK, "Shopping cart cleared successfully.", cart)
	}
}

func listCartsHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		carts, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, logger, err, "Failed to fetch shopping carts.")
			return
		}
		respond(c, http.StatusOK, "Shopping carts fetched successfully.", carts)
	}
}
