package numbering_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jhoicas/printshop-api/internal/application/numbering"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounters struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func (m *memCounters) NextValue(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.values == nil {
		m.values = map[string]int64{}
	}
	m.values[name]++
	return m.values[name], nil
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "JKDP-JOB-0001", numbering.Format("JKDP-JOB", 1))
	assert.Equal(t, "JKDP-EST-0420", numbering.Format("JKDP-EST", 420))
	assert.Equal(t, "JKDP-INV-9999", numbering.Format("JKDP-INV", 9999))
	assert.Equal(t, "JKDP-INV-10000", numbering.Format("JKDP-INV", 10000))
}

func TestIssuer_StrictlyIncreasing(t *testing.T) {
	iss := numbering.NewIssuer(&memCounters{})
	ctx := context.Background()

	first, err := iss.Next(ctx, numbering.Job)
	require.NoError(t, err)
	second, err := iss.Next(ctx, numbering.Job)
	require.NoError(t, err)
	inv, err := iss.Next(ctx, numbering.Invoice)
	require.NoError(t, err)

	assert.Equal(t, "JKDP-JOB-0001", first)
	assert.Equal(t, "JKDP-JOB-0002", second)
	assert.Equal(t, "JKDP-INV-0001", inv)
}

func TestIssuer_ConcurrentCallersNeverCollide(t *testing.T) {
	iss := numbering.NewIssuer(&memCounters{})
	const n = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := iss.NextValue(context.Background(), "estimates")
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestIssuer_BackendFailure(t *testing.T) {
	iss := numbering.NewIssuer(&memCounters{err: errors.New("connection refused")})

	_, err := iss.Next(context.Background(), numbering.Estimate)

	assert.ErrorIs(t, err, domain.ErrCounterUnavailable)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
