package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centavo/internal/core/apperror"
)

type stubAdapter struct {
	ref       *OrderRef
	rawStatus string
	err       error

	createdWith *Order
	statusID    string
}

func (s *stubAdapter) CreateOrder(_ context.Context, order Order) (*OrderRef, error) {
	s.createdWith = &order
	if s.err != nil {
		return nil, s.err
	}
	return s.ref, nil
}

func (s *stubAdapter) GetStatus(_ context.Context, externalID string) (string, error) {
	s.statusID = externalID
	if s.err != nil {
		return "", s.err
	}
	return s.rawStatus, nil
}

func TestRegistry_Dispatch(t *testing.T) {
	stub := &stubAdapter{ref: &OrderRef{Provider: ProviderOptimus, ExternalID: "TRK-1", ProviderStatus: "pending_pickup"}}
	reg := NewRegistry()
	reg.Register(ProviderOptimus, stub)

	ref, err := reg.Dispatch(context.Background(), "optimus", Order{})
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", ref.ExternalID)
	require.NotNil(t, stub.createdWith)
}

func TestRegistry_UnsupportedProvider(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ProviderOptimus, &stubAdapter{})

	_, err := reg.Dispatch(context.Background(), "pigeon-express", Order{})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnsupportedProvider))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "pigeon-express", appErr.Details["provider"], "error must name the offending key")

	_, err = reg.PollStatus(context.Background(), "pigeon-express", "X")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnsupportedProvider))
}

func TestRegistry_PollStatusMapsTaxonomy(t *testing.T) {
	stub := &stubAdapter{rawStatus: "DELIVERED"}
	reg := NewRegistry()
	reg.Register(ProviderOptimus, stub)

	res, err := reg.PollStatus(context.Background(), "optimus", "TRK-9")
	require.NoError(t, err)
	assert.Equal(t, "TRK-9", stub.statusID)
	assert.Equal(t, "DELIVERED", res.ProviderStatus)
	assert.Equal(t, StatusPaymentCollected, res.Internal)
}

func TestRegistry_PollStatusUnknownRawDefaults(t *testing.T) {
	stub := &stubAdapter{rawStatus: "warehouse_scan_37"}
	reg := NewRegistry()
	reg.Register(ProviderSkynet, stub)

	res, err := reg.PollStatus(context.Background(), "skynet", "WB-1")
	require.NoError(t, err)
	assert.Equal(t, StatusOnDelivery, res.Internal)
}
