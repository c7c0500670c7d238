package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_Format(t *testing.T) {
	m := NewMock()
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	num, err := m.GetNextNumber(context.Background(), DefaultConfig("RCP"), period)
	require.NoError(t, err)
	assert.Equal(t, "RCP-2026-00001", num)

	num, err = m.GetNextNumber(context.Background(), DefaultConfig("RCP"), period)
	require.NoError(t, err)
	assert.Equal(t, "RCP-2026-00002", num)
}

func TestMock_ConcurrentNumbersAreUnique(t *testing.T) {
	m := NewMock()
	period := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	const n = 50
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := m.GetNextNumber(context.Background(), DefaultConfig("PUR"), period)
			require.NoError(t, err)
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for num := range results {
		assert.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}
