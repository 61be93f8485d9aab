// Package render formats countries for the terminal as text or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rcliao/country-explorer/internal/model"
)

// Placeholders shown when a field has no value.
const (
	Missing   = "Can't Find Value"
	NoBorders = "No Borders"
)

// Format selects the output encoding.
type Format string

const (
	JSON Format = "json"
	Text Format = "text"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case JSON, Text:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (use json or text)", s)
}

// DetailView is the JSON shape of the detail view.
type DetailView struct {
	Country model.Country `json:"country"`
	Borders []string      `json:"borders"`
}

// Gallery writes the displayed subset.
func Gallery(w io.Writer, countries []model.Country, f Format) error {
	if f == JSON {
		return writeJSON(w, countries)
	}
	for i, c := range countries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, Card(c))
	}
	return nil
}

// Detail writes the selected country and its resolved border names.
func Detail(w io.Writer, c model.Country, borders []string, f Format) error {
	if f == JSON {
		if borders == nil {
			borders = []string{}
		}
		return writeJSON(w, DetailView{Country: c, Borders: borders})
	}
	_, err := fmt.Fprint(w, DetailText(c, borders))
	return err
}

// Regions writes a region list.
func Regions(w io.Writer, regions []string, f Format) error {
	if f == JSON {
		if regions == nil {
			regions = []string{}
		}
		return writeJSON(w, regions)
	}
	for _, r := range regions {
		fmt.Fprintln(w, r)
	}
	return nil
}

// Card renders the gallery card for one country.
func Card(c model.Country) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", c.Name.Common)
	fmt.Fprintf(&b, "  Population: %s\n", Population(c.Population))
	fmt.Fprintf(&b, "  Region: %s\n", orMissing(c.Region))
	fmt.Fprintf(&b, "  Capital: %s\n", orMissing(c.FirstCapital()))
	return b.String()
}

// DetailText renders the detail view.
func DetailText(c model.Country, borders []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", c.Name.Common)
	if c.Flags.PNG != "" {
		fmt.Fprintf(&b, "  Flag: %s\n", c.Flags.PNG)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Native Name: %s\n", orMissing(c.FirstNativeName()))
	fmt.Fprintf(&b, "  Population: %s\n", Population(c.Population))
	fmt.Fprintf(&b, "  Region: %s\n", orMissing(c.Region))
	fmt.Fprintf(&b, "  Subregion: %s\n", orMissing(c.Subregion))
	fmt.Fprintf(&b, "  Capital: %s\n", orMissing(c.FirstCapital()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Top-Level Domain: %s\n", orMissing(strings.Join(c.TopLevelDomain, ", ")))
	fmt.Fprintf(&b, "  Currencies: %s\n", orMissing(c.Currencies.Join(", ")))
	fmt.Fprintf(&b, "  Languages: %s\n", orMissing(c.Languages.Join(", ")))
	b.WriteString("\n")

	border := NoBorders
	if len(borders) > 0 {
		border = strings.Join(borders, ", ")
	}
	fmt.Fprintf(&b, "  Border Countries: %s\n", border)
	return b.String()
}

// Population formats a head count with thousands separators.
func Population(n int64) string {
	return humanize.Comma(n)
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
