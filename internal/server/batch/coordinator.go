package batch

import (
	"context"
	"sync"

	"github.com/drewsiph/sitekeeper/internal/logging"
)

// Status of a single item within a batch run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Item is one unit of work in a batch upload.
type Item struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Progress is a point-in-time view of a batch run. Completed+Failed equals
// Total once the run returns.
type Progress struct {
	Total        int    `json:"total"`
	Completed    int    `json:"completed"`
	Failed       int    `json:"failed"`
	CurrentBatch int    `json:"currentBatch"`
	Items        []Item `json:"items"`
}

// UploadFunc uploads the item at the given index.
type UploadFunc func(ctx context.Context, index int) error

// Coordinator runs uploads in fixed-size groups. Groups run strictly in
// order; items within a group run concurrently. A failed item never stops
// its siblings or later groups.
type Coordinator struct {
	batchSize int
	logger    logging.Logger

	mu        sync.Mutex
	items     []Item
	current   int
	completed int
	failed    int
}

const defaultBatchSize = 3

func NewCoordinator(batchSize int, logger logging.Logger) *Coordinator {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Coordinator{batchSize: batchSize, logger: logger}
}

// Run processes every item and returns the final progress. It blocks until
// all groups have finished.
func (c *Coordinator) Run(ctx context.Context, names []string, upload UploadFunc) Progress {
	c.mu.Lock()
	c.items = make([]Item, len(names))
	for i, n := range names {
		c.items[i] = Item{Name: n, Status: StatusPending}
	}
	c.completed, c.failed, c.current = 0, 0, 0
	c.mu.Unlock()

	for start := 0; start < len(names); start += c.batchSize {
		end := min(start+c.batchSize, len(names))

		c.mu.Lock()
		c.current = start/c.batchSize + 1
		c.mu.Unlock()

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				c.setStatus(i, StatusUploading, nil)
				if err := upload(ctx, i); err != nil {
					c.logger.Warn(ctx, "batch item failed", "item", names[i], "error", err)
					c.setStatus(i, StatusError, err)
					return
				}
				c.setStatus(i, StatusSuccess, nil)
			}(i)
		}
		wg.Wait()
	}

	return c.Snapshot()
}

func (c *Coordinator) setStatus(i int, s Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[i].Status = s
	switch s {
	case StatusSuccess:
		c.completed++
	case StatusError:
		c.items[i].Error = err.Error()
		c.failed++
	}
}

// Snapshot returns a copy of the current progress, safe to read while a run
// is in flight.
func (c *Coordinator) Snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return Progress{
		Total:        len(c.items),
		Completed:    c.completed,
		Failed:       c.failed,
		CurrentBatch: c.current,
		Items:        items,
	}
}
