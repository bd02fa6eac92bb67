package httpserver

import (
	"context"
	"log"

	"catalog-sync/internal/domain"
	productsvc "catalog-sync/internal/service/product"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductService is the surface the handlers need from the product service.
type ProductService interface {
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, offset, limit int) ([]domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	Offers(ctx context.Context, id string) ([]domain.Offer, error)
}

// OfferService is the read surface over locally mirrored offers.
type OfferService interface {
	Get(ctx context.Context, id string) (*domain.Offer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Offer, error)
}

// Deps carries the collaborators the router hands to handlers.
type Deps struct {
	ProductSvc ProductService
	OfferSvc   OfferService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", listProductsHandler(deps.ProductSvc))
		v1.POST("/products", createProductHandler(deps.ProductSvc))
		v1.GET("/products/:id", getProductHandler(deps.ProductSvc))
		v1.PUT("/products/:id", updateProductHandler(deps.ProductSvc))
		v1.DELETE("/products/:id", deleteProductHandler(deps.ProductSvc))
		v1.GET("/products/:id/offers", productOffersHandler(deps.ProductSvc))
		v1.GET("/offers", listOffersHandler(deps.OfferSvc))
		v1.GET("/offers/:id", getOfferHandler(deps.OfferSvc))
	}

	return router
}
