package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rcliao/country-explorer/internal/model"
)

func germany(t *testing.T) model.Country {
	t.Helper()
	var c model.Country
	data := `{
		"name": {"common": "Germany", "nativeName": {"deu": {"common": "Deutschland"}}},
		"population": 83240525,
		"region": "Europe",
		"subregion": "Western Europe",
		"capital": ["Berlin"],
		"flags": {"png": "https://flagcdn.com/w320/de.png"},
		"tld": [".de"],
		"currencies": {"EUR": {"name": "Euro"}},
		"languages": {"deu": "German"},
		"borders": ["AUT", "CZE"]
	}`
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return c
}

func TestCard(t *testing.T) {
	out := Card(germany(t))
	for _, want := range []string{"Germany\n", "Population: 83,240,525", "Region: Europe", "Capital: Berlin"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
}

func TestCardMissingCapital(t *testing.T) {
	out := Card(model.Country{Name: model.Name{Common: "Antarctica"}, Region: "Antarctic"})
	if !strings.Contains(out, "Capital: "+Missing) {
		t.Errorf("expected missing capital placeholder:\n%s", out)
	}
}

func TestDetailText(t *testing.T) {
	out := DetailText(germany(t), []string{"Austria", "Czechia"})
	for _, want := range []string{
		"Native Name: Deutschland",
		"Subregion: Western Europe",
		"Top-Level Domain: .de",
		"Currencies: Euro",
		"Languages: German",
		"Border Countries: Austria, Czechia",
		"Flag: https://flagcdn.com/w320/de.png",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestDetailTextNoBorders(t *testing.T) {
	out := DetailText(model.Country{Name: model.Name{Common: "Iceland"}}, nil)
	if !strings.Contains(out, "Border Countries: "+NoBorders) {
		t.Errorf("expected no-borders placeholder:\n%s", out)
	}
	if !strings.Contains(out, "Top-Level Domain: "+Missing) {
		t.Errorf("expected missing tld placeholder:\n%s", out)
	}
}

func TestDetailJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Detail(&buf, model.Country{Name: model.Name{Common: "Iceland"}}, nil, JSON); err != nil {
		t.Fatalf("detail: %v", err)
	}
	var got DetailView
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.Country.Name.Common != "Iceland" {
		t.Errorf("unexpected country %q", got.Country.Name.Common)
	}
	if got.Borders == nil || len(got.Borders) != 0 {
		t.Errorf("expected empty borders array, got %#v", got.Borders)
	}
}

func TestGalleryText(t *testing.T) {
	var buf bytes.Buffer
	countries := []model.Country{{Name: model.Name{Common: "Brazil"}}, {Name: model.Name{Common: "Iceland"}}}
	if err := Gallery(&buf, countries, Text); err != nil {
		t.Fatalf("gallery: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "Brazil") > strings.Index(out, "Iceland") {
		t.Errorf("expected input order:\n%s", out)
	}
}

func TestRegionsJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Regions(&buf, nil, JSON); err != nil {
		t.Fatalf("regions: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected [], got %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("text"); err != nil {
		t.Errorf("text: %v", err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}
