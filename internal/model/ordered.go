package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Entry is one code → display name pair.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// OrderedMap is a code → display name mapping that keeps the key order of
// the JSON object it was decoded from.
type OrderedMap []Entry

// Len returns the number of entries.
func (m OrderedMap) Len() int { return len(m) }

// Get returns the display name for code.
func (m OrderedMap) Get(code string) (string, bool) {
	for _, e := range m {
		if e.Code == code {
			return e.Name, true
		}
	}
	return "", false
}

// Values returns the display names in insertion order.
func (m OrderedMap) Values() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.Name
	}
	return out
}

// Join concatenates the display names with sep.
func (m OrderedMap) Join(sep string) string {
	return strings.Join(m.Values(), sep)
}

// decodeOrdered walks a JSON object in document order. When field is empty
// each value must be a string; otherwise the display name is read from
// value.field.
func decodeOrdered(data []byte, field string) (OrderedMap, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("expected object, got %s", res.Type)
	}

	var m OrderedMap
	res.ForEach(func(key, value gjson.Result) bool {
		name := value.String()
		if field != "" {
			name = value.Get(field).String()
		}
		m = append(m, Entry{Code: key.String(), Name: name})
		return true
	})
	return m, nil
}

// encodeOrdered writes m back as a JSON object, wrapping each display name
// with wrap.
func encodeOrdered(m OrderedMap, wrap func(name string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Code)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(wrap(e.Name))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Languages maps language code to language name, e.g. {"deu": "German"}.
type Languages struct{ OrderedMap }

func (l *Languages) UnmarshalJSON(data []byte) error {
	m, err := decodeOrdered(data, "")
	if err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	l.OrderedMap = m
	return nil
}

func (l Languages) MarshalJSON() ([]byte, error) {
	return encodeOrdered(l.OrderedMap, func(name string) any { return name })
}

// Currencies maps currency code to currency name, read from
// {"EUR": {"name": "Euro", ...}}.
type Currencies struct{ OrderedMap }

func (c *Currencies) UnmarshalJSON(data []byte) error {
	m, err := decodeOrdered(data, "name")
	if err != nil {
		return fmt.Errorf("currencies: %w", err)
	}
	c.OrderedMap = m
	return nil
}

func (c Currencies) MarshalJSON() ([]byte, error) {
	return encodeOrdered(c.OrderedMap, func(name string) any {
		return struct {
			Name string `json:"name"`
		}{name}
	})
}

// NativeNames maps language code to the common native name, read from
// {"deu": {"official": "...", "common": "Deutschland"}}.
type NativeNames struct{ OrderedMap }

func (n *NativeNames) UnmarshalJSON(data []byte) error {
	m, err := decodeOrdered(data, "common")
	if err != nil {
		return fmt.Errorf("native names: %w", err)
	}
	n.OrderedMap = m
	return nil
}

func (n NativeNames) MarshalJSON() ([]byte, error) {
	return encodeOrdered(n.OrderedMap, func(name string) any {
		return struct {
			Common string `json:"common"`
		}{name}
	})
}
