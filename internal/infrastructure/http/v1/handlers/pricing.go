package handlers

import (
	"github.com/gin-gonic/gin"

	"centavo/internal/domain/pricing"
	"centavo/internal/infrastructure/http/v1/dto"
)

// PricingHandler exposes the pricing engine for basket previews.
type PricingHandler struct {
	*BaseHandler
}

// NewPricingHandler creates a new pricing handler.
func NewPricingHandler(base *BaseHandler) *PricingHandler {
	return &PricingHandler{BaseHandler: base}
}

// Preview prices a basket without persisting anything.
// POST /pricing/preview
func (h *PricingHandler) Preview(c *gin.Context) {
	var req dto.PricingPreviewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	totals, err := pricing.ComputeTotals(req.Input(), pricing.Options{IncludeItems: true})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, totals)
}

// RegisterRoutes registers pricing endpoints.
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/preview", h.Preview)
}
