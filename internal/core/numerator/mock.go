package numerator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Mock is an in-memory Generator for tests.
type Mock struct {
	counter int64
}

// NewMock creates a mock generator starting at 1.
func NewMock() *Mock {
	return &Mock{}
}

// GetNextNumber implements Generator.
func (m *Mock) GetNextNumber(_ context.Context, cfg Config, period time.Time) (string, error) {
	n := atomic.AddInt64(&m.counter, 1)
	pad := cfg.PadWidth
	if pad <= 0 {
		pad = 5
	}
	return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, period.Year(), pad, n), nil
}
