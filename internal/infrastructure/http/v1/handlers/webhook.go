package handlers

import (
	"github.com/gin-gonic/gin"

	"centavo/internal/domain/receipt"
	"centavo/internal/infrastructure/http/v1/dto"
)

// WebhookHandler receives courier status callbacks.
type WebhookHandler struct {
	*BaseHandler
	service *receipt.Service
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(base *BaseHandler, service *receipt.Service) *WebhookHandler {
	return &WebhookHandler{BaseHandler: base, service: service}
}

// DeliveryStatus merges a pushed courier status into the owning receipt.
// A status whose lifecycle edge is not allowed is acknowledged but not
// applied; couriers retry on non-2xx, so rejection is reserved for
// payloads we cannot attribute to a receipt.
// POST /webhooks/delivery/:provider
func (h *WebhookHandler) DeliveryStatus(c *gin.Context) {
	var req dto.DeliveryWebhookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.ApplyProviderStatusByRef(
		c.Request.Context(), c.Param("provider"), req.ExternalID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, res)
}

// RegisterRoutes registers webhook endpoints.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/delivery/:provider", h.DeliveryStatus)
}
