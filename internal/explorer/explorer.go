// Package explorer holds the application state and the gallery/detail
// state machine that drives the country data source.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/country-explorer/internal/filter"
	"github.com/rcliao/country-explorer/internal/model"
	"github.com/rcliao/country-explorer/internal/source"
)

// ErrStale is returned by Select when a later transition superseded it
// before its lookups finished. The result is dropped.
var ErrStale = errors.New("selection superseded")

// View is the presentation mode.
type View int

const (
	Gallery View = iota
	Detail
)

func (v View) String() string {
	if v == Detail {
		return "detail"
	}
	return "gallery"
}

// BorderPolicy decides what happens when some border lookups fail.
type BorderPolicy string

const (
	// AllOrNothing fails the whole selection if any border lookup fails.
	AllOrNothing BorderPolicy = "all-or-nothing"
	// Partial keeps the names that resolved and omits the rest.
	Partial BorderPolicy = "partial"
)

// ParseBorderPolicy validates a policy name. Empty selects AllOrNothing.
func ParseBorderPolicy(s string) (BorderPolicy, error) {
	switch BorderPolicy(s) {
	case "", AllOrNothing:
		return AllOrNothing, nil
	case Partial:
		return Partial, nil
	}
	return "", fmt.Errorf("unknown border policy %q (use %s or %s)", s, AllOrNothing, Partial)
}

// Options configures an Explorer.
type Options struct {
	// InitialCountries names the curated gallery shown when no region is
	// selected. Empty shows every record.
	InitialCountries []string
	BorderPolicy     BorderPolicy
	// BorderConcurrency caps in-flight border lookups. Zero is unlimited.
	BorderConcurrency int
}

// State is the application state owned by an Explorer.
type State struct {
	Records   []model.Country
	Initial   []model.Country
	Region    string
	Query     string
	Displayed []model.Country
	Selection *model.Country
	Borders   []string
}

// View reports which presentation the state calls for.
func (s State) View() View {
	if s.Selection != nil {
		return Detail
	}
	return Gallery
}

// Explorer owns the state and mediates every data source call.
type Explorer struct {
	src    source.Source
	opts   Options
	logger *zap.Logger

	mu    sync.Mutex
	state State
	gen   uint64
}

// New creates an Explorer in the gallery view with an empty record set.
func New(src source.Source, opts Options, logger *zap.Logger) *Explorer {
	if opts.BorderPolicy == "" {
		opts.BorderPolicy = AllOrNothing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explorer{
		src:    src,
		opts:   opts,
		logger: logger,
		state:  State{Displayed: []model.Country{}, Borders: []string{}},
	}
}

// Load fetches the record set and recomputes the displayed subset. On
// failure the error is logged and the prior state is kept.
func (e *Explorer) Load(ctx context.Context) error {
	records, err := e.src.FetchAll(ctx)
	if err != nil {
		e.logger.Error("load countries", zap.Error(err))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Records = records
	e.state.Initial = filter.Curate(records, e.opts.InitialCountries)
	e.recompute()
	e.logger.Info("countries loaded",
		zap.Int("records", len(records)),
		zap.Int("initial", len(e.state.Initial)))
	return nil
}

// SetRegion changes the region filter. Empty clears it.
func (e *Explorer) SetRegion(region string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Region = region
	e.recompute()
}

// SetQuery changes the free-text query.
func (e *Explorer) SetQuery(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Query = query
	e.recompute()
}

func (e *Explorer) recompute() {
	e.state.Displayed = filter.Apply(e.state.Records, e.state.Initial, filter.Params{
		Region: e.state.Region,
		Query:  e.state.Query,
	})
}

// Select moves from the gallery to the detail view. The record is fetched
// again by name, then its border codes are resolved concurrently and kept
// in code order. On any failure the error is logged and the state is left
// untouched.
func (e *Explorer) Select(ctx context.Context, name string) error {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	country, err := e.src.FetchByName(ctx, name)
	if err != nil {
		e.logger.Error("select country", zap.String("name", name), zap.Error(err))
		return err
	}

	borders, err := e.resolveBorders(ctx, country.Borders)
	if err != nil {
		e.logger.Error("resolve borders", zap.String("name", name), zap.Error(err))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.logger.Debug("discarding stale selection", zap.String("name", name))
		return ErrStale
	}
	e.state.Selection = &country
	e.state.Borders = borders
	return nil
}

func (e *Explorer) resolveBorders(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return []string{}, nil
	}

	names := make([]string, len(codes))
	resolved := make([]bool, len(codes))

	// No derived context: a failed lookup does not abort its siblings.
	var g errgroup.Group
	if e.opts.BorderConcurrency > 0 {
		g.SetLimit(e.opts.BorderConcurrency)
	}
	for i, code := range codes {
		g.Go(func() error {
			c, err := e.src.FetchByCode(ctx, code)
			if err != nil {
				if e.opts.BorderPolicy == Partial {
					e.logger.Warn("border lookup failed", zap.String("code", code), zap.Error(err))
					return nil
				}
				return fmt.Errorf("border %s: %w", code, err)
			}
			names[i] = c.Name.Common
			resolved[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(codes))
	for i, name := range names {
		if resolved[i] {
			out = append(out, name)
		}
	}
	return out, nil
}

// Back returns to the gallery view. It always succeeds.
func (e *Explorer) Back() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.state.Selection = nil
	e.state.Borders = []string{}
}

// State returns a copy of the current state.
func (e *Explorer) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	if s.Selection != nil {
		sel := *s.Selection
		s.Selection = &sel
	}
	return s
}

// Regions lists the regions present in the record set.
func (e *Explorer) Regions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return filter.Regions(e.state.Records)
}
