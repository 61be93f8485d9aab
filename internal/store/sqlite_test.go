package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rcliao/country-explorer/internal/model"
	"github.com/rcliao/country-explorer/internal/source"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(name, cca3, region string, borders ...string) model.Country {
	c := model.Country{
		Name:    model.Name{Common: name},
		CCA3:    cca3,
		Region:  region,
		Borders: borders,
	}
	c.Languages.OrderedMap = model.OrderedMap{{Code: "nld", Name: "Dutch"}, {Code: "fra", Name: "French"}}
	return c
}

var sample = []model.Country{
	rec("Germany", "DEU", "Europe", "AUT"),
	rec("Brazil", "BRA", "Americas", "ARG"),
	rec("Austria", "AUT", "Europe", "DEU"),
	rec("Argentina", "ARG", "Americas", "BRA"),
}

func TestSaveAndFetchAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, err := s.Save(ctx, "test", sample)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap.ID == "" {
		t.Error("expected non-empty snapshot ID")
	}
	if snap.Count != 4 {
		t.Errorf("expected count 4, got %d", snap.Count)
	}

	all, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if !reflect.DeepEqual(model.Names(all), model.Names(sample)) {
		t.Errorf("expected record set order %v, got %v", model.Names(sample), model.Names(all))
	}
	// Ordered maps survive the round trip.
	if got := all[0].Languages.Join(", "); got != "Dutch, French" {
		t.Errorf("expected 'Dutch, French', got %q", got)
	}
}

func TestFetchByNameAndCode(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Save(ctx, "test", sample)

	c, err := s.FetchByName(ctx, "Brazil")
	if err != nil {
		t.Fatalf("fetch name: %v", err)
	}
	if !reflect.DeepEqual(c.Borders, []string{"ARG"}) {
		t.Errorf("expected borders [ARG], got %v", c.Borders)
	}

	// Name lookups are exact and case-sensitive.
	if _, err := s.FetchByName(ctx, "brazil"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	c, err = s.FetchByCode(ctx, "arg")
	if err != nil {
		t.Fatalf("fetch code: %v", err)
	}
	if c.Name.Common != "Argentina" {
		t.Errorf("expected Argentina, got %q", c.Name.Common)
	}

	if _, err := s.FetchByCode(ctx, "XXX"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchByNameAmbiguous(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Save(ctx, "test", []model.Country{rec("Congo", "COG", "Africa"), rec("Congo", "COD", "Africa")})

	if _, err := s.FetchByName(ctx, "Congo"); !errors.Is(err, source.ErrAmbiguous) {
		t.Errorf("expected ErrAmbiguous, got %v", err)
	}
}

func TestEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.FetchAll(ctx); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Latest(ctx); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestSnapshotWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Save(ctx, "first", sample)
	second, _ := s.Save(ctx, "second", sample[:1])

	latest, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != second.ID || latest.Origin != "second" {
		t.Errorf("expected second snapshot, got %+v", latest)
	}

	all, _ := s.FetchAll(ctx)
	if len(all) != 1 {
		t.Errorf("expected 1 record from latest snapshot, got %d", len(all))
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Save(ctx, "a", sample)
	s.Save(ctx, "b", sample)
	last, _ := s.Save(ctx, "c", sample[:2])

	n, err := s.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 pruned, got %d", n)
	}

	st, err := s.Stats(ctx, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Snapshots != 1 || st.Latest.ID != last.ID {
		t.Errorf("unexpected stats after prune: %+v", st)
	}

	var rows int
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM countries`).Scan(&rows)
	if rows != 2 {
		t.Errorf("expected 2 country rows left, got %d", rows)
	}

	if _, err := s.Prune(ctx, 0); err == nil {
		t.Error("expected error for keep=0")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	empty, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if empty.Snapshots != 0 || empty.Latest != nil {
		t.Errorf("expected empty stats, got %+v", empty)
	}

	s.Save(ctx, "test", sample)
	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(st.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %+v", st.Regions)
	}
	// Equal counts sort by region name.
	if st.Regions[0].Region != "Americas" || st.Regions[0].Count != 2 {
		t.Errorf("unexpected first region %+v", st.Regions[0])
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
