package delivery

import (
	"centavo/internal/core/types"
)

// Customer is the recipient of a delivery order.
type Customer struct {
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
}

// Destination addresses the order in provider terms. City and area IDs are
// the provider's own identifiers, resolved by the caller beforehand.
type Destination struct {
	ProviderCityID string `json:"providerCityId"`
	ProviderAreaID string `json:"providerAreaId"`
	AddressLine    string `json:"addressLine"`
}

// OrderItem is a snapshot of a receipt line at dispatch time.
type OrderItem struct {
	ProductCode  string      `json:"productCode"`
	Size         string      `json:"size,omitempty"`
	Color        string      `json:"color,omitempty"`
	SupplierName string      `json:"supplierName,omitempty"`
	Quantity     int64       `json:"quantity"`
	UnitPrice    types.Money `json:"unitPrice"`
}

// Order is the normalized adapter input. It is constructed fresh per
// dispatch and never mutated after submission.
type Order struct {
	Customer    Customer    `json:"customer"`
	Destination Destination `json:"destination"`
	Items       []OrderItem `json:"items"`
	CODAmount   types.Money `json:"codAmount"`
}

// OrderRef is what a successful dispatch returns: the provider's handle
// for the order plus its initial raw status.
type OrderRef struct {
	Provider       Provider `json:"provider"`
	ExternalID     string   `json:"externalId"`
	ProviderStatus string   `json:"providerStatus"`
}

// StatusResult pairs a provider's raw status with its internal mapping.
type StatusResult struct {
	ProviderStatus string `json:"providerStatus"`
	Internal       Status `json:"internal"`
}
