package dto

import (
	"centavo/internal/core/types"
	"centavo/internal/domain/pricing"
)

// PricingPreviewRequest prices a basket without creating a receipt.
// Amounts accept JSON numbers or numeric strings; strings are preferred
// so clients never round through float64.
type PricingPreviewRequest struct {
	Items        []pricing.LineItem `json:"items" binding:"required,min=1"`
	BillDiscount *pricing.Discount  `json:"billDiscount"`
	TaxPercent   types.Money        `json:"taxPercent"`
}

// Input converts the request to engine input.
func (r PricingPreviewRequest) Input() pricing.Input {
	return pricing.Input{
		Items:        r.Items,
		BillDiscount: r.BillDiscount,
		TaxPercent:   r.TaxPercent,
	}
}
