package jobs

import (
	"context"
	"strings"
)

// Store holds the job collection. The only writes are the liked/applied
// flags the UI toggles; postings themselves are read-only.
type Store interface {
	List(ctx context.Context) ([]Job, error)
	Get(ctx context.Context, id string) (Job, error)
	SetLiked(ctx context.Context, id string, liked bool) (Job, error)
	SetApplied(ctx context.Context, id string) (Job, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise
// an in-memory store seeded with the built-in postings.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(SeedJobs()), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
