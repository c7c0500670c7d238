// Package audit defines the domain contract for the append-only audit trail.
// The postgres implementation compresses large change payloads.
package audit

import (
	"context"

	"centavo/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionStatusChange Action = "status_change"
	ActionOpen         Action = "open"
	ActionClose        Action = "close"
)

// Recorder appends audit entries. Recording failures must not fail the
// business operation; implementations log and move on.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes any)
}

// Nop is a Recorder that discards everything. Used in tests.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, string, id.ID, Action, any) {}
