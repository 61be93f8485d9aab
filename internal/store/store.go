// Package store provides a SQLite-backed snapshot of the country record set
// that can stand in for the REST API.
package store

import (
	"context"
	"time"

	"github.com/rcliao/country-explorer/internal/model"
	"github.com/rcliao/country-explorer/internal/source"
)

// Snapshot describes one saved copy of the record set.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Origin    string    `json:"origin"`
	Count     int       `json:"count"`
}

// Store saves record sets and serves the latest one as a source.Source.
type Store interface {
	source.Source

	// Save writes countries as a new snapshot, preserving their order.
	Save(ctx context.Context, origin string, countries []model.Country) (*Snapshot, error)

	// Latest returns the newest snapshot.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the newest keep snapshots. Returns how many were removed.
	Prune(ctx context.Context, keep int) (int, error)

	// Close closes the store.
	Close() error
}
