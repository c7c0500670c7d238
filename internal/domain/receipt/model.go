// Package receipt provides the receipt document and its lifecycle guard.
// A receipt is a sale or purchase priced by the pricing engine; its status
// advances through a fixed transition graph and locks at completion.
package receipt

import (
	"time"

	"centavo/internal/core/id"
	"centavo/internal/core/types"
	"centavo/internal/domain/delivery"
	"centavo/internal/domain/pricing"
)

// Kind distinguishes sale from purchase receipts.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

// Status is the receipt lifecycle state. Completed is terminal and locks
// the receipt for edits.
type Status string

const (
	StatusPending          Status = "pending"
	StatusOrdered          Status = "ordered"
	StatusOnDelivery       Status = "on_delivery"
	StatusPaymentCollected Status = "payment_collected"
	StatusReadyToReceive   Status = "ready_to_receive"
	StatusCompleted        Status = "completed"
)

// DeliveryRef links a receipt to a courier order.
type DeliveryRef struct {
	Provider       string `db:"delivery_provider" json:"provider"`
	ExternalID     string `db:"delivery_external_id" json:"externalId"`
	ProviderStatus string `db:"delivery_provider_status" json:"providerStatus"`
}

// Receipt is a priced sale or purchase document.
type Receipt struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`
	Kind   Kind   `db:"kind" json:"kind"`
	Status Status `db:"status" json:"status"`

	CustomerName  string `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone,omitempty"`

	Items        []pricing.LineItem `db:"-" json:"items"`
	BillDiscount *pricing.Discount  `db:"-" json:"billDiscount,omitempty"`
	TaxPercent   types.Money        `db:"tax_percent" json:"taxPercent"`

	// Totals computed by the pricing engine at last save.
	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
	TaxableBase types.Money `db:"taxable_base" json:"taxableBase"`
	TaxAmount   types.Money `db:"tax_amount" json:"taxAmount"`
	GrandTotal  types.Money `db:"grand_total" json:"grandTotal"`

	Delivery *DeliveryRef `db:"-" json:"delivery,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsCompleted reports whether the receipt is locked.
func (r *Receipt) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// statusFromDelivery maps an internal delivery status onto the receipt
// lifecycle. Returning and cancelled shipments have no receipt-side state;
// they keep the receipt where it is until staff resolve the shipment.
func statusFromDelivery(ds delivery.Status) (Status, bool) {
	switch ds {
	case delivery.StatusOrdered:
		return StatusOrdered, true
	case delivery.StatusOnDelivery:
		return StatusOnDelivery, true
	case delivery.StatusPaymentCollected:
		return StatusPaymentCollected, true
	case delivery.StatusReadyToReceive:
		return StatusReadyToReceive, true
	case delivery.StatusCompleted:
		return StatusCompleted, true
	default:
		return "", false
	}
}
