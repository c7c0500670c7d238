package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"centavo/internal/core/apperror"
	"centavo/internal/core/id"
	"centavo/internal/core/types"
	"centavo/internal/domain/cashbox"
)

// Compile-time check.
var _ cashbox.Repository = (*CashboxRepo)(nil)

var sessionColumns = []string{
	"id", "status", "opening_amount", "opened_at", "opened_by",
	"cash_in", "cash_out",
	"closed_at", "closed_by", "counted_amount", "variance", "close_note",
}

var movementColumns = []string{
	"id", "session_id", "at", "amount", "direction", "source",
	"method", "receipt_id", "note", "user_id",
}

// CashboxRepo is the PostgreSQL cashbox repository.
//
// The singleton-open-session invariant rests on a partial unique index:
//
//	CREATE UNIQUE INDEX cash_sessions_single_open
//	    ON cash_sessions ((status)) WHERE status = 'open';
//
// CreateOpen is a plain INSERT; a second open session violates the index
// and the unique-violation code maps to ALREADY_OPEN. No check-then-insert
// window exists, so exactly one of two concurrent opens succeeds.
type CashboxRepo struct {
	txManager *TxManager
}

// NewCashboxRepo creates a cashbox repository.
func NewCashboxRepo(txManager *TxManager) *CashboxRepo {
	return &CashboxRepo{txManager: txManager}
}

func (r *CashboxRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CreateOpen inserts a new open session iff no session is currently open.
func (r *CashboxRepo) CreateOpen(ctx context.Context, s *cashbox.Session) error {
	q := r.builder().
		Insert("cash_sessions").
		Columns("id", "status", "opening_amount", "opened_at", "opened_by", "cash_in", "cash_out").
		Values(s.ID, s.Status, s.OpeningAmount, s.OpenedAt, s.OpenedBy, s.CashIn, s.CashOut)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewAlreadyOpen()
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

// GetOpen returns the currently open session.
func (r *CashboxRepo) GetOpen(ctx context.Context) (*cashbox.Session, error) {
	return r.getOpen(ctx, false)
}

// GetOpenForUpdate is GetOpen with a row lock; must run inside a transaction.
func (r *CashboxRepo) GetOpenForUpdate(ctx context.Context) (*cashbox.Session, error) {
	return r.getOpen(ctx, true)
}

func (r *CashboxRepo) getOpen(ctx context.Context, forUpdate bool) (*cashbox.Session, error) {
	q := r.builder().
		Select(sessionColumns...).
		From("cash_sessions").
		Where(squirrel.Eq{"status": cashbox.SessionOpen}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s cashbox.Session
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNoOpenSession()
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return &s, nil
}

// Get loads a session by ID.
func (r *CashboxRepo) Get(ctx context.Context, sessionID id.ID) (*cashbox.Session, error) {
	sql, args, err := r.builder().
		Select(sessionColumns...).
		From("cash_sessions").
		Where(squirrel.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s cashbox.Session
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("cashbox session", sessionID.String())
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// AppendMovement inserts one movement row. Movements are append-only:
// there is no update or delete path in this repository.
func (r *CashboxRepo) AppendMovement(ctx context.Context, m *cashbox.Movement) error {
	q := r.builder().
		Insert("cash_movements").
		Columns(movementColumns...).
		Values(m.ID, m.SessionID, m.At, m.Amount, m.Direction, m.Source,
			m.Method, m.ReceiptID, m.Note, m.UserID)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// AddToTotals maintains the session's incremental cash-in/out cache.
func (r *CashboxRepo) AddToTotals(ctx context.Context, sessionID id.ID, direction cashbox.Direction, amount types.Money) error {
	col := "cash_in"
	if direction == cashbox.DirectionOut {
		col = "cash_out"
	}

	sql, args, err := r.builder().
		Update("cash_sessions").
		Set(col, squirrel.Expr(col+" + ?", amount)).
		Where(squirrel.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("add to totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("cashbox session", sessionID.String())
	}
	return nil
}

// SumMovements recomputes totals from the movement log.
func (r *CashboxRepo) SumMovements(ctx context.Context, sessionID id.ID) (*cashbox.Totals, error) {
	sql := `
		SELECT direction, source, COALESCE(SUM(amount), 0) AS total
		FROM cash_movements
		WHERE session_id = $1
		GROUP BY direction, source
	`

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	defer rows.Close()

	totals := &cashbox.Totals{
		CashIn:   types.Zero(),
		CashOut:  types.Zero(),
		BySource: make(map[cashbox.Source]types.Money),
	}
	for rows.Next() {
		var (
			direction cashbox.Direction
			source    cashbox.Source
			total     types.Money
		)
		if err := rows.Scan(&direction, &source, &total); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}

		if direction == cashbox.DirectionIn {
			totals.CashIn = totals.CashIn.Add(total)
		} else {
			totals.CashOut = totals.CashOut.Add(total)
		}
		prev, ok := totals.BySource[source]
		if !ok {
			prev = types.Zero()
		}
		totals.BySource[source] = prev.Add(total)
	}
	return totals, rows.Err()
}

// ListMovements returns a session's ledger rows in posting order.
func (r *CashboxRepo) ListMovements(ctx context.Context, sessionID id.ID) ([]cashbox.Movement, error) {
	sql, args, err := r.builder().
		Select(movementColumns...).
		From("cash_movements").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []cashbox.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// Close persists the closing fields and flips status to closed. The WHERE
// clause on open status makes a double close fail cleanly.
func (r *CashboxRepo) Close(ctx context.Context, s *cashbox.Session) error {
	sql, args, err := r.builder().
		Update("cash_sessions").
		Set("status", cashbox.SessionClosed).
		Set("cash_in", s.CashIn).
		Set("cash_out", s.CashOut).
		Set("closed_at", s.ClosedAt).
		Set("closed_by", s.ClosedBy).
		Set("counted_amount", s.CountedAmount).
		Set("variance", s.Variance).
		Set("close_note", s.CloseNote).
		Where(squirrel.Eq{"id": s.ID}).
		Where(squirrel.Eq{"status": cashbox.SessionOpen}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build close: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewSessionClosed(s.ID.String())
	}
	return nil
}
