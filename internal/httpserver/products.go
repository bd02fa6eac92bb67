package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-sync/internal/domain"
	productsvc "catalog-sync/internal/service/product"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset := intQuery(c, "skip", 0)
		limit := intQuery(c, "limit", 100)

		products, err := svc.List(c.Request.Context(), offset, limit)
		if err != nil {
			writeError(c, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, products)
	}
}

func createProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		product, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c)
		if !ok {
			return
		}
		product, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func updateProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		id, ok := uuidParam(c)
		if !ok {
			return
		}
		product, err := svc.Update(c.Request.Context(), id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func deleteProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c)
		if !ok {
			return
		}
		product, err := svc.Delete(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func productOffersHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c)
		if !ok {
			return
		}
		offers, err := svc.Offers(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if len(offers) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "No offers found"})
			return
		}
		c.JSON(http.StatusOK, offers)
	}
}

// writeError maps domain errors to status codes; registry failures keep the
// upstream status where one exists.
func writeError(c *gin.Context, err error) {
	var regErr *domain.RegistryError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found"})
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrIdentityMismatch):
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrAuthFieldMissing):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.As(err, &regErr):
		c.JSON(regErr.StatusCode, gin.H{"detail": regErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

// uuidParam validates the :id path segment before it reaches storage, so a
// malformed id is a 400 rather than a database error.
func uuidParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "id must be a UUID"})
		return "", false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
