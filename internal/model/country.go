// Package model defines the core country data types.
package model

// Country represents one record from the country data source.
type Country struct {
	Name           Name       `json:"name"`
	CCA3           string     `json:"cca3,omitempty"`
	Population     int64      `json:"population"`
	Region         string     `json:"region"`
	Subregion      string     `json:"subregion,omitempty"`
	Capital        []string   `json:"capital,omitempty"`
	Flags          Flags      `json:"flags"`
	TopLevelDomain []string   `json:"tld,omitempty"`
	Currencies     Currencies `json:"currencies"`
	Languages      Languages  `json:"languages"`
	Borders        []string   `json:"borders,omitempty"`
}

// Name holds the common, official and native names of a country.
type Name struct {
	Common     string      `json:"common"`
	Official   string      `json:"official,omitempty"`
	NativeName NativeNames `json:"nativeName"`
}

// Flags holds references to the flag images.
type Flags struct {
	PNG string `json:"png,omitempty"`
	SVG string `json:"svg,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// FirstCapital returns the first listed capital, or "" when there is none.
func (c Country) FirstCapital() string {
	if len(c.Capital) == 0 {
		return ""
	}
	return c.Capital[0]
}

// FirstNativeName returns the common native name for the first listed
// language, or "" when the record carries no native names.
func (c Country) FirstNativeName() string {
	if c.Name.NativeName.Len() == 0 {
		return ""
	}
	return c.Name.NativeName.OrderedMap[0].Name
}

// HasBorders reports whether the country lists any neighbor codes.
func (c Country) HasBorders() bool {
	return len(c.Borders) > 0
}

// Names returns the common names of the given countries, in order.
func Names(countries []Country) []string {
	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name.Common
	}
	return names
}
