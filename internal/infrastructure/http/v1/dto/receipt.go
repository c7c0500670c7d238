package dto

import (
	"centavo/internal/core/types"
	"centavo/internal/domain/delivery"
	"centavo/internal/domain/pricing"
	"centavo/internal/domain/receipt"
)

// CreateReceiptRequest opens a new sale or purchase receipt.
type CreateReceiptRequest struct {
	Kind          string             `json:"kind" binding:"required,oneof=sale purchase"`
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Items         []pricing.LineItem `json:"items" binding:"required,min=1"`
	BillDiscount  *pricing.Discount  `json:"billDiscount"`
	TaxPercent    types.Money        `json:"taxPercent"`
}

// Input converts the request to service input.
func (r CreateReceiptRequest) Input() receipt.CreateInput {
	return receipt.CreateInput{
		Kind:          receipt.Kind(r.Kind),
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Items:         r.Items,
		BillDiscount:  r.BillDiscount,
		TaxPercent:    r.TaxPercent,
	}
}

// UpdateReceiptRequest replaces the editable receipt fields.
type UpdateReceiptRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Items         []pricing.LineItem `json:"items" binding:"required,min=1"`
	BillDiscount  *pricing.Discount  `json:"billDiscount"`
	TaxPercent    types.Money        `json:"taxPercent"`
}

// Input converts the request to service input.
func (r UpdateReceiptRequest) Input() receipt.UpdateInput {
	return receipt.UpdateInput{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Items:         r.Items,
		BillDiscount:  r.BillDiscount,
		TaxPercent:    r.TaxPercent,
	}
}

// ChangeStatusRequest moves a receipt along its lifecycle.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// StatusResponse reports the receipt status after a transition.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// AssignDeliveryRequest dispatches a receipt through a courier.
type AssignDeliveryRequest struct {
	Company     string               `json:"company" binding:"required"`
	Destination delivery.Destination `json:"destination" binding:"required"`
	Items       []delivery.OrderItem `json:"items"`
}

// CollectPaymentRequest records in-person cash collection for a sale.
type CollectPaymentRequest struct {
	Method string `json:"method" binding:"required"`
}

// DeliveryWebhookRequest is the payload couriers push on status change.
// The shipment is identified by the provider's own tracking ID.
type DeliveryWebhookRequest struct {
	ExternalID string `json:"externalId" binding:"required"`
	Status     string `json:"status" binding:"required"`
}
