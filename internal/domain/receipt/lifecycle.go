package receipt

import (
	"centavo/internal/core/apperror"
)

// transitions is the allowed status edge table. Absence means the edge is
// forbidden; completed has no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:          {StatusCompleted},
	StatusOrdered:          {StatusOnDelivery, StatusCompleted},
	StatusOnDelivery:       {StatusPaymentCollected, StatusCompleted},
	StatusPaymentCollected: {StatusReadyToReceive},
	StatusReadyToReceive:   {StatusCompleted},
	StatusCompleted:        {},
}

// AssertTransition validates a status change. Same-status is a no-op,
// an empty target fails with STATUS_REQUIRED, and any edge outside the
// table fails with INVALID_TRANSITION naming both states.
func AssertTransition(current, next Status) error {
	if next == "" {
		return apperror.NewStatusRequired()
	}
	if current == next {
		return nil
	}
	for _, allowed := range transitions[current] {
		if allowed == next {
			return nil
		}
	}
	return apperror.NewInvalidTransition(string(current), string(next))
}
