// Package filter derives the displayed subset of countries from the record
// set, a region selector and a free-text query.
package filter

import (
	"strings"

	"github.com/rcliao/country-explorer/internal/model"
)

// Params holds the filter inputs.
type Params struct {
	Region string // empty means no region filter
	Query  string
}

// Apply returns the displayed subset. With a region set, the base set is
// every record in that region; otherwise it is the initial subset. A
// non-blank query then keeps records whose common name contains it,
// case-insensitively. Input order is preserved and inputs are never
// modified.
func Apply(records, initial []model.Country, p Params) []model.Country {
	base := initial
	if p.Region != "" {
		base = byRegion(records, p.Region)
	}

	q := strings.ToLower(strings.TrimSpace(p.Query))
	out := make([]model.Country, 0, len(base))
	for _, c := range base {
		if q == "" || strings.Contains(strings.ToLower(c.Name.Common), q) {
			out = append(out, c)
		}
	}
	return out
}

func byRegion(records []model.Country, region string) []model.Country {
	var out []model.Country
	for _, c := range records {
		if c.Region == region {
			out = append(out, c)
		}
	}
	return out
}

// Curate returns the records whose common name is listed in names, in record
// set order. An empty names list selects every record.
func Curate(records []model.Country, names []string) []model.Country {
	if len(names) == 0 {
		return append([]model.Country(nil), records...)
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []model.Country
	for _, c := range records {
		if want[c.Name.Common] {
			out = append(out, c)
		}
	}
	return out
}

// Regions lists the distinct non-empty regions in first-appearance order.
func Regions(records []model.Country) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range records {
		if c.Region == "" || seen[c.Region] {
			continue
		}
		seen[c.Region] = true
		out = append(out, c.Region)
	}
	return out
}
