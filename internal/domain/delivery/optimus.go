package delivery

import (
	"context"
	"fmt"
	"strings"

	"centavo/internal/core/apperror"
)

// NoteMaxLen is the hard ceiling Optimus accepts for the order note.
// Truncation is silent but deterministic: always cut at this character.
const NoteMaxLen = 500

// OptimusCreateRequest is the adapter's view of the Optimus create call.
type OptimusCreateRequest struct {
	CustomerName string
	Phone        string
	CityID       string
	AreaID       string
	Address      string
	Note         string
	CODAmount    string
}

// OptimusCreateResponse carries the fields the adapter needs back.
type OptimusCreateResponse struct {
	TrackingID string
	Status     string
}

// OptimusClient is the wire contract implemented by the infrastructure
// HTTP client. Errors it returns are transport-level and get wrapped as
// UPSTREAM_ERROR by the adapter.
type OptimusClient interface {
	CreateOrder(ctx context.Context, req OptimusCreateRequest) (*OptimusCreateResponse, error)
	OrderStatus(ctx context.Context, trackingID string) (string, error)
}

// OptimusAdapter integrates the Optimus courier. Its provider-specific
// policy: destination phones must normalize to exactly 10 digits, and a
// human-readable note is built from the item snapshots plus the COD line.
type OptimusAdapter struct {
	client OptimusClient
}

// NewOptimusAdapter creates the adapter over a wire client.
func NewOptimusAdapter(client OptimusClient) *OptimusAdapter {
	return &OptimusAdapter{client: client}
}

// CreateOrder implements Adapter.
func (a *OptimusAdapter) CreateOrder(ctx context.Context, order Order) (*OrderRef, error) {
	phone, err := NormalizePhone(order.Customer.Phone)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.CreateOrder(ctx, OptimusCreateRequest{
		CustomerName: order.Customer.Name,
		Phone:        phone,
		CityID:       order.Destination.ProviderCityID,
		AreaID:       order.Destination.ProviderAreaID,
		Address:      order.Destination.AddressLine,
		Note:         BuildOrderNote(order),
		CODAmount:    order.CODAmount.StringFixed(2),
	})
	if err != nil {
		return nil, apperror.NewUpstream(string(ProviderOptimus), err)
	}

	return &OrderRef{
		Provider:       ProviderOptimus,
		ExternalID:     resp.TrackingID,
		ProviderStatus: resp.Status,
	}, nil
}

// GetStatus implements Adapter.
func (a *OptimusAdapter) GetStatus(ctx context.Context, externalID string) (string, error) {
	raw, err := a.client.OrderStatus(ctx, externalID)
	if err != nil {
		return "", apperror.NewUpstream(string(ProviderOptimus), err)
	}
	return raw, nil
}

// NormalizePhone strips formatting characters and requires exactly
// 10 digits, the format Optimus dispatchers dial.
func NormalizePhone(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() != 10 {
		return "", apperror.NewInvalidPhone(phone)
	}
	return digits.String(), nil
}

// BuildOrderNote concatenates, per item, product code + size/color +
// supplier company name, followed by a COD line, truncated to NoteMaxLen.
func BuildOrderNote(order Order) string {
	var b strings.Builder
	for _, item := range order.Items {
		b.WriteString(item.ProductCode)
		if item.Size != "" || item.Color != "" {
			b.WriteString(" ")
			b.WriteString(item.Size)
			b.WriteString("/")
			b.WriteString(item.Color)
		}
		if item.SupplierName != "" {
			b.WriteString(" ")
			b.WriteString(item.SupplierName)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "COD: %s", order.CODAmount.StringFixed(2))

	note := b.String()
	if runes := []rune(note); len(runes) > NoteMaxLen {
		return string(runes[:NoteMaxLen])
	}
	return note
}
