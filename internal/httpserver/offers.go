package httpserver

import (
	"errors"
	"net/http"

	"catalog-sync/internal/domain"
	"github.com/gin-gonic/gin"
)

func listOffersHandler(svc OfferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset := intQuery(c, "skip", 0)
		limit := intQuery(c, "limit", 100)

		offers, err := svc.List(c.Request.Context(), offset, limit)
		if err != nil {
			writeError(c, err)
			return
		}
		if offers == nil {
			offers = []domain.Offer{}
		}
		c.JSON(http.StatusOK, offers)
	}
}

func getOfferHandler(svc OfferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c)
		if !ok {
			return
		}
		offer, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"detail": "Offer not found"})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, offer)
	}
}
