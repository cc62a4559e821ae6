package journal

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryJournal is an in-process Journal. It is safe for concurrent use.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Append stores a copy of entry.
func (j *MemoryJournal) Append(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}

// Entries returns the stored entries, oldest first.
func (j *MemoryJournal) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out, nil
}

// Len returns the number of stored entries.
func (j *MemoryJournal) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries), nil
}

// Close is a no-op.
func (j *MemoryJournal) Close() error {
	return nil
}
