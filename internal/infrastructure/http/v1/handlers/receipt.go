package handlers

import (
	"github.com/gin-gonic/gin"

	"centavo/internal/domain/receipt"
	"centavo/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler exposes receipt CRUD, lifecycle and delivery endpoints.
type ReceiptHandler struct {
	*BaseHandler
	service *receipt.Service
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service}
}

// Create opens a new receipt in pending status.
// POST /receipts
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.service.Create(c.Request.Context(), req.Input())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, r)
}

// Get returns one receipt.
// GET /receipts/:id
func (h *ReceiptHandler) Get(c *gin.Context) {
	receiptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, r)
}

// Update replaces the editable fields and reprices.
// PUT /receipts/:id
func (h *ReceiptHandler) Update(c *gin.Context) {
	receiptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := h.service.Update(c.Request.Context(), receiptID, req.Input())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, r)
}

// ChangeStatus applies a guarded lifecycle transition.
// POST /receipts/:id/status
func (h *ReceiptHandler) ChangeStatus(c *gin.Context) {
	receiptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	status, err := h.service.ChangeStatus(c.Request.Context(), receiptID, receipt.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.StatusResponse{ID: receiptID.String(), Status: string(status)})
}

// AssignDelivery dispatches a sale through the selected courier.
// POST /receipts/:id/delivery
func (h *ReceiptHandler) AssignDelivery(c *gin.Context) {
	receiptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ref, err := h.service.AssignDelivery(c.Request.Context(), receiptID, receipt.AssignDeliveryInput{
		CompanyKey:  req.Company,
		Destination: req.Destination,
		Items:       req.Items,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, ref)
}

// RefreshDelivery polls the courier and merges the mapped status.
// POST /receipts/:id/delivery/refresh
func (h *ReceiptHandler) RefreshDelivery(c *gin.Context) {
	receiptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.RefreshDeliveryStatus(c.Request.Context(), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, res)
}

// CollectPayment records in-person cash collection for a sale. The
// receipt transition and the cashbox movement land in one transaction.
// POST /receipts/:id/collect-payment
func (h *ReceiptHandler) CollectPayment(c *gin.Context) {
	receiptID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CollectPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.CollectPayment(c.Request.Context(), receiptID, req.Method); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "payment collected")
}

// RegisterRoutes registers receipt endpoints.
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/status", h.ChangeStatus)
	rg.POST("/:id/delivery", h.AssignDelivery)
	rg.POST("/:id/delivery/refresh", h.RefreshDelivery)
	rg.POST("/:id/collect-payment", h.CollectPayment)
}
