// Package cashbox provides the cash-drawer reconciliation ledger: one open
// session system-wide, append-only cash movements, and an auditable
// variance at close time.
package cashbox

import (
	"time"

	"centavo/internal/core/id"
	"centavo/internal/core/types"
)

// SessionStatus is the session lifecycle state.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// Direction of a cash movement relative to the drawer.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Source categorizes what caused a movement.
type Source string

const (
	SourceSale       Source = "sale"
	SourceReturn     Source = "return"
	SourcePayment    Source = "payment"
	SourceAdjustment Source = "adjustment"
)

// Session is a bounded accounting period for the physical cash drawer.
// At most one session is open system-wide at any time. Once closed, a
// session is immutable.
type Session struct {
	ID     id.ID         `db:"id" json:"id"`
	Status SessionStatus `db:"status" json:"status"`

	OpeningAmount types.Money `db:"opening_amount" json:"openingAmount"`
	OpenedAt      time.Time   `db:"opened_at" json:"openedAt"`
	OpenedBy      string      `db:"opened_by" json:"openedBy"`

	// CashIn/CashOut are an incrementally maintained cache of the movement
	// log; close recomputes from the log and the two must agree.
	CashIn  types.Money `db:"cash_in" json:"cashIn"`
	CashOut types.Money `db:"cash_out" json:"cashOut"`

	ClosedAt      *time.Time   `db:"closed_at" json:"closedAt,omitempty"`
	ClosedBy      *string      `db:"closed_by" json:"closedBy,omitempty"`
	CountedAmount *types.Money `db:"counted_amount" json:"countedAmount,omitempty"`
	Variance      *types.Money `db:"variance" json:"variance,omitempty"`
	CloseNote     *string      `db:"close_note" json:"closeNote,omitempty"`
}

// ExpectedAmount is the drawer balance the movement log predicts.
func (s *Session) ExpectedAmount() types.Money {
	return s.OpeningAmount.Add(s.CashIn).Sub(s.CashOut)
}

// Movement is one append-only cash ledger row. Movements are never
// updated or deleted once posted.
type Movement struct {
	ID        id.ID       `db:"id" json:"id"`
	SessionID id.ID       `db:"session_id" json:"sessionId"`
	At        time.Time   `db:"at" json:"at"`
	Amount    types.Money `db:"amount" json:"amount"`
	Direction Direction   `db:"direction" json:"direction"`
	Source    Source      `db:"source" json:"source"`
	Method    string      `db:"method" json:"method"`
	ReceiptID *id.ID      `db:"receipt_id" json:"receiptId,omitempty"`
	Note      *string     `db:"note" json:"note,omitempty"`
	UserID    string      `db:"user_id" json:"userId"`
}

// Totals aggregates the movement log for one session.
type Totals struct {
	CashIn   types.Money           `json:"cashIn"`
	CashOut  types.Money           `json:"cashOut"`
	BySource map[Source]types.Money `json:"bySource"`
}
