package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type productRequest struct {
	ID          int                `json:"id" binding:"gte=0"`
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Price       float64            `json:"price" binding:"gte=0"`
	ImageURL    string             `json:"imageUrl"`
	Attributes  []attributeRequest `json:"attributes" binding:"omitempty,dive"`
}

type attributeRequest struct {
	AttributeValue string  `json:"attributeValue" binding:"required"`
	Price          float64 `json:"price" binding:"gte=0"`
}

func (r productRequest) input() productsvc.UpsertInput {
	in := productsvc.UpsertInput{
		Product: domain.Product{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Category:    r.Category,
			Price:       r.Price,
			ImageURL:    r.ImageURL,
		},
	}
	if r.Attributes != nil {
		in.Attributes = make([]domain.AttributePrice, 0, len(r.Attributes))
		for _, a := range r.Attributes {
			in.Attributes = append(in.Attributes, domain.AttributePrice{AttributeValue: a.AttributeValue, Price: a.Price})
		}
	}
	return in
}

func listProductsHandler(svc ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, logger, err, "Failed to fetch items.")
			return
		}
		respond(c, http.StatusOK, "Items fetched successfully.", products)
	}
}

func getProductHandler(svc ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := positiveIntParam(c, "itemId")
		if !ok {
			return
		}
		product, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, logger, err, "Failed to fetch item.")
			return
		}
		respond(c, http.StatusOK, "Item fetched successfully.", product)
	}
}

func listAttributePricesHandler(svc ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := positiveIntParam(c, "itemId")
		if !ok {
			return
		}
		prices, err := svc.ListAttributePrices(c.Request.Context(), id)
		if err != nil {
			writeError(c, logger, err, "Failed to fetch item attributes.")
			return
		}
		respond(c, http.StatusOK, "Item attributes fetched successfully.", prices)
	}
}

func createProductHandler(svc ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		product, err := svc.Create(c.Request.Context(), req.input())
		if err != nil {
			writeError(c, logger, err, "Failed to add item.")
			return
		}
		respond(c, http.StatusCreated, "Item added successfully.", product)
	}
}

func updateProductHandler(svc ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := positiveIntParam(c, "itemId")
		if !ok {
			return
		}
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		product, err := svc.Update(c.Request.Context(), id, req.input())
		if err != nil {
			writeError(c, logger, err, "Failed to update item.")
			return
		}
		respond(c, http.StatusOK, "Item updated successfully.", product)
	}
}
