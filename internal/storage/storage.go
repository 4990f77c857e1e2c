package storage

import (
	"context"

	"eventScope/internal/model"
)

// Sink receives entries that a run newly added to the event store.
type Sink interface {
	PutEntries(ctx context.Context, entries []model.EventEntry) error
}
