package handlers

import (
	"github.com/gin-gonic/gin"

	"centavo/internal/core/apperror"
	"centavo/internal/domain/cashbox"
	"centavo/internal/infrastructure/http/v1/dto"
)

// CashboxHandler exposes the cash drawer session and movement endpoints.
type CashboxHandler struct {
	*BaseHandler
	service *cashbox.Service
}

// NewCashboxHandler creates a new cashbox handler.
func NewCashboxHandler(base *BaseHandler, service *cashbox.Service) *CashboxHandler {
	return &CashboxHandler{BaseHandler: base, service: service}
}

// Open starts a session with the counted opening float.
// POST /cashbox/open
func (h *CashboxHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sess, err := h.service.Open(c.Request.Context(), req.OpeningAmount, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sess)
}

// Current returns the open session.
// GET /cashbox/current
func (h *CashboxHandler) Current(c *gin.Context) {
	sess, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sess)
}

// PostMovement appends one cash movement to the open session.
// POST /cashbox/movements
func (h *CashboxHandler) PostMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.Input()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid receipt id").WithDetail("receiptId", req.ReceiptID))
		return
	}
	in.UserID = h.GetUserID(c)

	movement, err := h.service.PostMovement(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, movement)
}

// Close ends the open session and reports the variance.
// POST /cashbox/close
func (h *CashboxHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sess, err := h.service.Close(c.Request.Context(), req.CountedAmount, req.Note, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sess)
}

// Movements lists a session's ledger rows in posting order.
// GET /cashbox/sessions/:id/movements
func (h *CashboxHandler) Movements(c *gin.Context) {
	sessionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	movements, err := h.service.Movements(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, movements)
}

// RegisterRoutes registers cashbox endpoints.
func (h *CashboxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/open", h.Open)
	rg.GET("/current", h.Current)
	rg.POST("/movements", h.PostMovement)
	rg.POST("/close", h.Close)
	rg.GET("/sessions/:id/movements", h.Movements)
}
