package receipt

import (
	"context"

	"centavo/internal/core/id"
)

// Repository defines the interface for receipt persistence.
// Implementations return NOT_FOUND apperrors for missing receipts.
type Repository interface {
	Create(ctx context.Context, r *Receipt) error

	Get(ctx context.Context, receiptID id.ID) (*Receipt, error)

	// FindByDeliveryRef resolves the receipt a courier order belongs to.
	// Used by webhook pushes, which identify shipments by external ID.
	FindByDeliveryRef(ctx context.Context, provider, externalID string) (*Receipt, error)

	// GetStatus loads only the current status (editability checks).
	GetStatus(ctx context.Context, receiptID id.ID) (Status, error)

	// Update persists items, discounts and recomputed totals.
	Update(ctx context.Context, r *Receipt) error

	UpdateStatus(ctx context.Context, receiptID id.ID, status Status) error

	// SetDeliveryRef stores the courier handle after a successful dispatch.
	SetDeliveryRef(ctx context.Context, receiptID id.ID, ref DeliveryRef) error

	// UpdateProviderStatus refreshes the stored raw courier status.
	UpdateProviderStatus(ctx context.Context, receiptID id.ID, providerStatus string) error
}
