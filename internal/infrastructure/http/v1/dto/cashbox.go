package dto

import (
	"centavo/internal/core/id"
	"centavo/internal/core/types"
	"centavo/internal/domain/cashbox"
)

// OpenSessionRequest starts a cashbox session with a counted float.
type OpenSessionRequest struct {
	OpeningAmount types.Money `json:"openingAmount"`
}

// CloseSessionRequest ends the open session with the physically counted cash.
type CloseSessionRequest struct {
	CountedAmount types.Money `json:"countedAmount"`
	Note          string      `json:"note"`
}

// MovementRequest posts one cash movement to the open session.
type MovementRequest struct {
	Direction string      `json:"direction" binding:"required,oneof=in out"`
	Amount    types.Money `json:"amount"`
	Source    string      `json:"source" binding:"required,oneof=sale return payment adjustment"`
	Method    string      `json:"method"`
	ReceiptID *string     `json:"receiptId"`
	Note      *string     `json:"note"`
}

// Input converts the request to service input. Returns an error detail
// key when the receipt ID is malformed; the handler wraps it.
func (r MovementRequest) Input() (cashbox.MovementInput, error) {
	in := cashbox.MovementInput{
		Direction: cashbox.Direction(r.Direction),
		Amount:    r.Amount,
		Source:    cashbox.Source(r.Source),
		Method:    r.Method,
		Note:      r.Note,
	}
	if r.ReceiptID != nil {
		rid, err := id.Parse(*r.ReceiptID)
		if err != nil {
			return in, err
		}
		in.ReceiptID = &rid
	}
	return in, nil
}
