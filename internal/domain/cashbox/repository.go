package cashbox

import (
	"context"

	"centavo/internal/core/id"
	"centavo/internal/core/types"
)

// Repository defines the interface for cashbox persistence.
//
// The singleton-open-session invariant is enforced here, not in service
// code: CreateOpen must be one atomic conditional write (a partial unique
// index on open status, or an equivalent compare-and-swap), so two
// concurrent opens can never both succeed.
type Repository interface {
	// CreateOpen inserts a new open session iff no session is currently
	// open. Returns ALREADY_OPEN otherwise.
	CreateOpen(ctx context.Context, s *Session) error

	// GetOpen returns the currently open session, or NO_OPEN_SESSION.
	GetOpen(ctx context.Context) (*Session, error)

	// GetOpenForUpdate is GetOpen with a row lock; must run inside a
	// transaction. Serializes movement posting against a concurrent close.
	GetOpenForUpdate(ctx context.Context) (*Session, error)

	Get(ctx context.Context, sessionID id.ID) (*Session, error)

	// AppendMovement inserts one movement row. Movements are append-only.
	AppendMovement(ctx context.Context, m *Movement) error

	// AddToTotals maintains the session's incremental cash-in/out cache.
	AddToTotals(ctx context.Context, sessionID id.ID, direction Direction, amount types.Money) error

	// SumMovements recomputes totals from the movement log.
	SumMovements(ctx context.Context, sessionID id.ID) (*Totals, error)

	ListMovements(ctx context.Context, sessionID id.ID) ([]Movement, error)

	// Close persists the closing fields and flips status to closed.
	Close(ctx context.Context, s *Session) error
}
