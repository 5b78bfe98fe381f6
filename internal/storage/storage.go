// Package storage defines persistence contracts for snapshot state.
package storage

import (
	"context"

	"github.com/louisbranch/pbpkeeper/internal/snapshot"
)

// StateStore persists the whole state snapshot between runs. The core is
// the sole writer between a Load and the matching Save; last write wins,
// no merging.
type StateStore interface {
	Load(ctx context.Context) (snapshot.Snapshot, error)
	Save(ctx context.Context, snap snapshot.Snapshot) error
	Close() error
}
