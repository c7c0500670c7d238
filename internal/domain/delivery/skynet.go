package delivery

import (
	"context"

	"centavo/internal/core/apperror"
)

// SkynetCreateRequest is the adapter's view of the Skynet booking call.
// Skynet takes a single parcel per booking; item details travel in the
// remark field.
type SkynetCreateRequest struct {
	ReceiverName  string
	ReceiverPhone string
	TownshipID    string
	ZoneID        string
	Address       string
	Remark        string
	CODValue      string
}

// SkynetCreateResponse carries the fields the adapter needs back.
type SkynetCreateResponse struct {
	WaybillNo string
	State     string
}

// SkynetClient is the wire contract implemented by the infrastructure
// HTTP client.
type SkynetClient interface {
	Book(ctx context.Context, req SkynetCreateRequest) (*SkynetCreateResponse, error)
	Track(ctx context.Context, waybillNo string) (string, error)
}

// SkynetAdapter integrates the Skynet courier. Skynet has no phone-format
// policy of its own; numbers pass through as the caller provides them.
type SkynetAdapter struct {
	client SkynetClient
}

// NewSkynetAdapter creates the adapter over a wire client.
func NewSkynetAdapter(client SkynetClient) *SkynetAdapter {
	return &SkynetAdapter{client: client}
}

// CreateOrder implements Adapter.
func (a *SkynetAdapter) CreateOrder(ctx context.Context, order Order) (*OrderRef, error) {
	resp, err := a.client.Book(ctx, SkynetCreateRequest{
		ReceiverName:  order.Customer.Name,
		ReceiverPhone: order.Customer.Phone,
		TownshipID:    order.Destination.ProviderCityID,
		ZoneID:        order.Destination.ProviderAreaID,
		Address:       order.Destination.AddressLine,
		Remark:        BuildOrderNote(order),
		CODValue:      order.CODAmount.StringFixed(2),
	})
	if err != nil {
		return nil, apperror.NewUpstream(string(ProviderSkynet), err)
	}

	return &OrderRef{
		Provider:       ProviderSkynet,
		ExternalID:     resp.WaybillNo,
		ProviderStatus: resp.State,
	}, nil
}

// GetStatus implements Adapter.
func (a *SkynetAdapter) GetStatus(ctx context.Context, externalID string) (string, error) {
	raw, err := a.client.Track(ctx, externalID)
	if err != nil {
		return "", apperror.NewUpstream(string(ProviderSkynet), err)
	}
	return raw, nil
}
