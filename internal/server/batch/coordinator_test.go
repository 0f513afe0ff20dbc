package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("file-%d.jpg", i)
	}
	return out
}

func TestRun_GroupsOfThreeStrictOrder(t *testing.T) {
	c := NewCoordinator(3, logging.NewJSONLogger())

	var mu sync.Mutex
	var order []int

	p := c.Run(context.Background(), names(7), func(ctx context.Context, i int) error {
		mu.Lock()
		order = append(order, i)
		mu.Unlock()
		return nil
	})

	require.Len(t, order, 7)
	// groups run to completion before the next one starts: every index in
	// group g appears before any index of group g+1
	pos := make(map[int]int, len(order))
	for at, i := range order {
		pos[i] = at
	}
	for _, earlier := range []int{0, 1, 2} {
		for _, later := range []int{3, 4, 5, 6} {
			assert.Less(t, pos[earlier], pos[later])
		}
	}
	for _, earlier := range []int{3, 4, 5} {
		assert.Less(t, pos[earlier], pos[6])
	}

	assert.Equal(t, 7, p.Total)
	assert.Equal(t, 7, p.Completed)
	assert.Zero(t, p.Failed)
	assert.Equal(t, 3, p.CurrentBatch)
}

func TestRun_SiblingFailuresAreIsolated(t *testing.T) {
	c := NewCoordinator(3, logging.NewJSONLogger())

	fail := map[int]bool{1: true, 4: true}
	p := c.Run(context.Background(), names(7), func(ctx context.Context, i int) error {
		if fail[i] {
			return fmt.Errorf("upload rejected")
		}
		return nil
	})

	assert.Equal(t, 5, p.Completed)
	assert.Equal(t, 2, p.Failed)
	assert.Equal(t, p.Total, p.Completed+p.Failed)

	for i, it := range p.Items {
		if fail[i] {
			assert.Equal(t, StatusError, it.Status)
			assert.Equal(t, "upload rejected", it.Error)
		} else {
			assert.Equal(t, StatusSuccess, it.Status)
			assert.Empty(t, it.Error)
		}
	}
}

func TestRun_ConcurrencyNeverExceedsGroupSize(t *testing.T) {
	c := NewCoordinator(3, logging.NewJSONLogger())

	var mu sync.Mutex
	inflight, peak := 0, 0

	c.Run(context.Background(), names(9), func(ctx context.Context, i int) error {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		mu.Lock()
		inflight--
		mu.Unlock()
		return nil
	})

	assert.LessOrEqual(t, peak, 3)
}

func TestRun_EmptyInput(t *testing.T) {
	c := NewCoordinator(3, logging.NewJSONLogger())
	p := c.Run(context.Background(), nil, func(ctx context.Context, i int) error {
		t.Fatal("upload must not be called")
		return nil
	})
	assert.Zero(t, p.Total)
	assert.Zero(t, p.CurrentBatch)
}

func TestSnapshot_IsACopy(t *testing.T) {
	c := NewCoordinator(3, logging.NewJSONLogger())
	c.Run(context.Background(), names(2), func(ctx context.Context, i int) error { return nil })

	s1 := c.Snapshot()
	s1.Items[0].Status = StatusPending
	s2 := c.Snapshot()
	assert.Equal(t, StatusSuccess, s2.Items[0].Status)
}

func TestNewCoordinator_DefaultsBatchSize(t *testing.T) {
	c := NewCoordinator(0, logging.NewJSONLogger())
	assert.Equal(t, defaultBatchSize, c.batchSize)
}
