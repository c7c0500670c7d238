package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		provider Provider
		raw      string
		want     Status
	}{
		{ProviderOptimus, "DELIVERED", StatusPaymentCollected},
		{ProviderOptimus, "delivered", StatusPaymentCollected},
		{ProviderOptimus, "  Pending_Pickup ", StatusOrdered},
		{ProviderOptimus, "cash_ready", StatusReadyToReceive},
		{ProviderOptimus, "settled", StatusCompleted},
		{ProviderOptimus, "cancelled", StatusCancelled},
		{ProviderSkynet, "COD_COLLECTED", StatusPaymentCollected},
		{ProviderSkynet, "return_to_sender", StatusReturning},
		{ProviderSkynet, "void", StatusCancelled},
	}

	for _, tc := range cases {
		got := MapProviderStatus(tc.provider, tc.raw)
		assert.Equal(t, tc.want, got, "%s/%s", tc.provider, tc.raw)
	}
}

func TestMapProviderStatus_UnknownDefaultsToOnDelivery(t *testing.T) {
	// Conservative fallback: an unknown raw status must never look more
	// final than reality.
	assert.Equal(t, StatusOnDelivery, MapProviderStatus(ProviderOptimus, "unknown_code"))
	assert.Equal(t, StatusOnDelivery, MapProviderStatus(ProviderSkynet, ""))
	assert.Equal(t, StatusOnDelivery, MapProviderStatus(Provider("nobody"), "delivered"))
}
