package delivery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centavo/internal/core/apperror"
	"centavo/internal/core/types"
)

type fakeOptimusClient struct {
	req  *OptimusCreateRequest
	resp *OptimusCreateResponse
	raw  string
	err  error
}

func (f *fakeOptimusClient) CreateOrder(_ context.Context, req OptimusCreateRequest) (*OptimusCreateResponse, error) {
	f.req = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeOptimusClient) OrderStatus(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.raw, nil
}

func testOrder() Order {
	return Order{
		Customer: Customer{Phone: "(555) 123-4567", Name: "Daw Mya"},
		Destination: Destination{
			ProviderCityID: "YGN-01",
			ProviderAreaID: "A-77",
			AddressLine:    "12 Strand Rd",
		},
		Items: []OrderItem{
			{ProductCode: "SHIRT-09", Size: "M", Color: "navy", SupplierName: "Golden Lotus Co", Quantity: 2, UnitPrice: types.MustMoney("18.00")},
		},
		CODAmount: types.MustMoney("36.00"),
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "5551234567", got)

	_, err = NormalizePhone("12345")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPhone))

	// 11 digits is just as wrong as 9.
	_, err = NormalizePhone("05551234567")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPhone))
}

func TestOptimusAdapter_CreateOrder(t *testing.T) {
	client := &fakeOptimusClient{resp: &OptimusCreateResponse{TrackingID: "OPT-100", Status: "pending_pickup"}}
	adapter := NewOptimusAdapter(client)

	ref, err := adapter.CreateOrder(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, ProviderOptimus, ref.Provider)
	assert.Equal(t, "OPT-100", ref.ExternalID)
	assert.Equal(t, "pending_pickup", ref.ProviderStatus)

	require.NotNil(t, client.req)
	assert.Equal(t, "5551234567", client.req.Phone)
	assert.Equal(t, "36.00", client.req.CODAmount)
	assert.Contains(t, client.req.Note, "SHIRT-09 M/navy Golden Lotus Co")
	assert.Contains(t, client.req.Note, "COD: 36.00")
}

func TestOptimusAdapter_CreateOrderRejectsBadPhone(t *testing.T) {
	client := &fakeOptimusClient{}
	adapter := NewOptimusAdapter(client)

	order := testOrder()
	order.Customer.Phone = "12345"

	_, err := adapter.CreateOrder(context.Background(), order)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPhone))
	assert.Nil(t, client.req, "wire call must not happen on policy failure")
}

func TestOptimusAdapter_UpstreamFailure(t *testing.T) {
	client := &fakeOptimusClient{err: errors.New("connection reset")}
	adapter := NewOptimusAdapter(client)

	_, err := adapter.CreateOrder(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUpstream))

	_, err = adapter.GetStatus(context.Background(), "OPT-100")
	assert.True(t, apperror.HasCode(err, apperror.CodeUpstream))
}

func TestBuildOrderNote_Truncation(t *testing.T) {
	order := testOrder()
	order.Items = nil
	for i := 0; i < 40; i++ {
		order.Items = append(order.Items, OrderItem{
			ProductCode:  "LONGCODE-000000",
			Size:         "XXL",
			Color:        "burgundy",
			SupplierName: "Very Long Supplier Company Name Ltd",
		})
	}

	note := BuildOrderNote(order)
	assert.Equal(t, NoteMaxLen, len([]rune(note)), "note must be cut at exactly the ceiling")

	// Deterministic: same input, same cut.
	assert.Equal(t, note, BuildOrderNote(order))
}

func TestBuildOrderNote_ShortNoteKeepsCODLine(t *testing.T) {
	note := BuildOrderNote(testOrder())
	assert.True(t, strings.HasSuffix(note, "COD: 36.00"))
	assert.Less(t, len(note), NoteMaxLen)
}
