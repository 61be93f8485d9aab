package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/country-explorer/internal/model"
	"github.com/rcliao/country-explorer/internal/source"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID returns a ULID; IDs from one store sort in creation order.
func (s *SQLiteStore) newID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		origin      TEXT NOT NULL,
		count       INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS countries (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		name        TEXT NOT NULL,
		cca3        TEXT,
		region      TEXT,
		data        TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_countries_name ON countries(snapshot_id, name);
	CREATE INDEX IF NOT EXISTS idx_countries_cca3 ON countries(snapshot_id, cca3);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, origin string, countries []model.Country) (*Snapshot, error) {
	now := time.Now().UTC()
	snap := &Snapshot{ID: s.newID(), CreatedAt: now, Origin: origin, Count: len(countries)}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, origin, count) VALUES (?, ?, ?, ?)`,
		snap.ID, now.Format(time.RFC3339Nano), origin, len(countries))
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	for i, c := range countries {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Name.Common, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO countries (snapshot_id, seq, name, cca3, region, data)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			snap.ID, i, c.Name.Common, strings.ToUpper(c.CCA3), c.Region, string(data))
		if err != nil {
			return nil, fmt.Errorf("insert country: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) Latest(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, origin, count FROM snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&snap.ID, &createdAt, &snap.Origin, &snap.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no snapshot saved: %w", source.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &snap, nil
}

func (s *SQLiteStore) FetchAll(ctx context.Context) ([]model.Country, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	countries, err := s.query(ctx, `SELECT data FROM countries WHERE snapshot_id = ? ORDER BY seq`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	return countries, nil
}

func (s *SQLiteStore) FetchByName(ctx context.Context, name string) (model.Country, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return model.Country{}, fmt.Errorf("fetch name %q: %w", name, err)
	}
	countries, err := s.query(ctx,
		`SELECT data FROM countries WHERE snapshot_id = ? AND name = ? ORDER BY seq`, snap.ID, name)
	if err != nil {
		return model.Country{}, fmt.Errorf("fetch name %q: %w", name, err)
	}
	switch len(countries) {
	case 0:
		return model.Country{}, fmt.Errorf("fetch name %q: %w", name, source.ErrNotFound)
	case 1:
		return countries[0], nil
	}
	return model.Country{}, fmt.Errorf("fetch name %q: %w", name, source.ErrAmbiguous)
}

func (s *SQLiteStore) FetchByCode(ctx context.Context, code string) (model.Country, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return model.Country{}, fmt.Errorf("fetch code %q: %w", code, err)
	}
	countries, err := s.query(ctx,
		`SELECT data FROM countries WHERE snapshot_id = ? AND cca3 = ? ORDER BY seq LIMIT 1`,
		snap.ID, strings.ToUpper(code))
	if err != nil {
		return model.Country{}, fmt.Errorf("fetch code %q: %w", code, err)
	}
	if len(countries) == 0 {
		return model.Country{}, fmt.Errorf("fetch code %q: %w", code, source.ErrNotFound)
	}
	return countries[0], nil
}

func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1, got %d", keep)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Countries first: foreign_keys may be off for this connection.
	const older = `SELECT id FROM snapshots ORDER BY id DESC LIMIT -1 OFFSET ?`
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM countries WHERE snapshot_id IN (`+older+`)`, keep); err != nil {
		return 0, fmt.Errorf("delete countries: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id IN (`+older+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]model.Country, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var c model.Country
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, fmt.Errorf("%w: %w", source.ErrParse, err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}
