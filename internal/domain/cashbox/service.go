package cashbox

import (
	"context"
	"time"

	"centavo/internal/core/apperror"
	appctx "centavo/internal/core/context"
	"centavo/internal/core/id"
	"centavo/internal/core/tx"
	"centavo/internal/core/types"
	"centavo/internal/domain/audit"
	"centavo/pkg/logger"
)

// Service provides the cashbox ledger operations. All mutating operations
// run inside a transaction so the open-session check and the write are one
// indivisible unit.
type Service struct {
	repo      Repository
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a cashbox service.
func NewService(repo Repository, txManager tx.Manager, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{repo: repo, txManager: txManager, auditor: auditor}
}

// Open starts a new session. Fails with ALREADY_OPEN if any session is
// currently open; the check-and-create is a single atomic write in the
// repository, so exactly one of two concurrent opens succeeds.
func (s *Service) Open(ctx context.Context, openingAmount types.Money, userID string) (*Session, error) {
	if openingAmount.IsNegative() {
		return nil, apperror.NewValidation("opening amount must not be negative")
	}
	if userID == "" {
		userID = appctx.GetUserID(ctx)
	}

	sess := &Session{
		ID:            id.New(),
		Status:        SessionOpen,
		OpeningAmount: types.Round2(openingAmount),
		OpenedAt:      time.Now(),
		OpenedBy:      userID,
		CashIn:        types.Zero(),
		CashOut:       types.Zero(),
	}

	if err := s.repo.CreateOpen(ctx, sess); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, "cashbox_session", sess.ID, audit.ActionOpen, sess)
	logger.Info(ctx, "cashbox session opened",
		"session_id", sess.ID, "opening_amount", sess.OpeningAmount)
	return sess, nil
}

// Current returns the open session.
func (s *Service) Current(ctx context.Context) (*Session, error) {
	return s.repo.GetOpen(ctx)
}

// MovementInput describes one cash movement to post.
type MovementInput struct {
	Direction Direction
	Amount    types.Money
	Source    Source
	Method    string
	ReceiptID *id.ID
	Note      *string
	UserID    string
}

func (in MovementInput) validate() error {
	if in.Direction != DirectionIn && in.Direction != DirectionOut {
		return apperror.NewValidation("direction must be in or out").
			WithDetail("direction", string(in.Direction))
	}
	if !in.Amount.IsPositive() {
		return apperror.NewValidation("movement amount must be positive").
			WithDetail("amount", in.Amount.String())
	}
	switch in.Source {
	case SourceSale, SourceReturn, SourcePayment, SourceAdjustment:
	default:
		return apperror.NewValidation("source must be sale, return, payment or adjustment").
			WithDetail("source", string(in.Source))
	}
	return nil
}

// PostMovement appends a movement to the open session's ledger. The
// "session still open" check and the append happen in one transaction with
// the session row locked, so a movement can never land after closing
// totals were computed.
func (s *Service) PostMovement(ctx context.Context, in MovementInput) (*Movement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.UserID == "" {
		in.UserID = appctx.GetUserID(ctx)
	}

	var movement *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sess, err := s.repo.GetOpenForUpdate(ctx)
		if err != nil {
			return err
		}

		movement = &Movement{
			ID:        id.New(),
			SessionID: sess.ID,
			At:        time.Now(),
			Amount:    types.Round2(in.Amount),
			Direction: in.Direction,
			Source:    in.Source,
			Method:    in.Method,
			ReceiptID: in.ReceiptID,
			Note:      in.Note,
			UserID:    in.UserID,
		}

		if err := s.repo.AppendMovement(ctx, movement); err != nil {
			return err
		}
		return s.repo.AddToTotals(ctx, sess.ID, in.Direction, movement.Amount)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// PostSaleCollection posts the cash effect of a collected sale.
// Satisfies the receipt package's CashLedger interface.
func (s *Service) PostSaleCollection(ctx context.Context, receiptID id.ID, amount types.Money, method string) error {
	_, err := s.PostMovement(ctx, MovementInput{
		Direction: DirectionIn,
		Amount:    amount,
		Source:    SourceSale,
		Method:    method,
		ReceiptID: &receiptID,
	})
	return err
}

// Close ends the open session: expected cash is recomputed from the
// movement log, variance = counted - expected, and the session becomes
// immutable. Fails with NO_OPEN_SESSION when nothing is open.
func (s *Service) Close(ctx context.Context, countedAmount types.Money, note string, userID string) (*Session, error) {
	if countedAmount.IsNegative() {
		return nil, apperror.NewValidation("counted amount must not be negative")
	}
	if userID == "" {
		userID = appctx.GetUserID(ctx)
	}

	var closed *Session
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sess, err := s.repo.GetOpenForUpdate(ctx)
		if err != nil {
			return err
		}

		totals, err := s.repo.SumMovements(ctx, sess.ID)
		if err != nil {
			return err
		}

		// The incremental cache must agree with the log. The log wins;
		// a mismatch means a write path skipped AddToTotals.
		if !sess.CashIn.Equal(totals.CashIn) || !sess.CashOut.Equal(totals.CashOut) {
			logger.Error(ctx, "cashbox totals cache diverged from movement log",
				"session_id", sess.ID,
				"cached_in", sess.CashIn, "log_in", totals.CashIn,
				"cached_out", sess.CashOut, "log_out", totals.CashOut)
		}

		expected := sess.OpeningAmount.Add(totals.CashIn).Sub(totals.CashOut)
		variance := types.Round2(countedAmount.Sub(expected))
		counted := types.Round2(countedAmount)
		now := time.Now()

		sess.Status = SessionClosed
		sess.CashIn = totals.CashIn
		sess.CashOut = totals.CashOut
		sess.ClosedAt = &now
		sess.ClosedBy = &userID
		sess.CountedAmount = &counted
		sess.Variance = &variance
		if note != "" {
			sess.CloseNote = &note
		}

		if err := s.repo.Close(ctx, sess); err != nil {
			return err
		}
		closed = sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, "cashbox_session", closed.ID, audit.ActionClose, closed)
	logger.Info(ctx, "cashbox session closed",
		"session_id", closed.ID, "variance", closed.Variance)
	return closed, nil
}

// Movements lists a session's ledger rows.
func (s *Service) Movements(ctx context.Context, sessionID id.ID) ([]Movement, error) {
	if _, err := s.repo.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, sessionID)
}
