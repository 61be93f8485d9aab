package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string        `json:"db_path"`
	DBSizeBytes int64         `json:"db_size_bytes"`
	Snapshots   int           `json:"snapshots"`
	Latest      *Snapshot     `json:"latest,omitempty"`
	Regions     []RegionStats `json:"regions"`
}

// RegionStats holds per-region counts for the latest snapshot.
type RegionStats struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Regions: []RegionStats{}}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&st.Snapshots)
	if st.Snapshots == 0 {
		return st, nil
	}

	latest, err := s.Latest(ctx)
	if err != nil {
		return st, err
	}
	st.Latest = latest

	rows, err := s.db.QueryContext(ctx, `
		SELECT region, COUNT(*) AS cnt
		FROM countries WHERE snapshot_id = ?
		GROUP BY region ORDER BY cnt DESC, region`, latest.ID)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var r RegionStats
		rows.Scan(&r.Region, &r.Count)
		st.Regions = append(st.Regions, r)
	}

	return st, rows.Err()
}
