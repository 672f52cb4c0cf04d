package station

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

const latestSnapshotSQL = `
    SELECT payload
    FROM plantstation.snapshots
    ORDER BY captured_at DESC
    LIMIT 1
`

// PGSource reads the newest snapshot a station mirrored into Postgres.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource creates a PGSource backed by a pgx pool.
func NewPGSource(ctx context.Context, databaseURL string) (*PGSource, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &PGSource{pool: pool}, nil
}

// Close releases the pool resources.
func (s *PGSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Snapshot loads and decodes the newest stored payload.
func (s *PGSource) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, latestSnapshotSQL).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: query snapshot: %v", ErrUnavailable, err)
	}

	snap, err := models.Parse(payload)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("decode stored snapshot: %w", err)
	}
	return snap, nil
}
