// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package i18n

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/eerco/ensuring-integrity/models"
)

func TestDefaultBundle(t *testing.T) {
	b := Default()

	if diff := cmp.Diff([]string{"el", "en"}, b.Langs()); diff != "" {
		t.Errorf("Langs() mismatch (-want +got):\n%s", diff)
	}

	for _, lang := range b.Langs() {
		if got := len(b.Pillars(lang)); got != 4 {
			t.Errorf("Pillars(%s) = %d, want 4", lang, got)
		}
		if got := len(b.FiveFreedoms(lang)); got != 5 {
			t.Errorf("FiveFreedoms(%s) = %d, want 5", lang, got)
		}
		if got := len(b.Neighborhoods(lang)); got != len(models.Locations) {
			t.Errorf("Neighborhoods(%s) = %d, want %d", lang, got, len(models.Locations))
		}
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	b := Default()
	en := b.locales["en"].Messages
	el := b.locales["el"].Messages

	for key := range en {
		if _, ok := el[key]; !ok {
			t.Errorf("el is missing %q", key)
		}
	}
	for key := range el {
		if _, ok := en[key]; !ok {
			t.Errorf("en is missing %q", key)
		}
	}
}

func TestT(t *testing.T) {
	b := Default()

	tests := []struct {
		lang, key, want string
	}{
		{"en", "form_submit", "Confirm Signature"},
		{"el", "form_submit", "Επιβεβαίωση Υπογραφής"},
		{"fr", "form_submit", "Confirm Signature"},
		{"en", "no_such_key", "no_such_key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			if got := b.T(tt.lang, tt.key); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestT_UsesCatalog(t *testing.T) {
	files := fstest.MapFS{
		"locales/en.yaml": {Data: []byte(`locale: en
messages:
  greeting: "Hello"
  only_en: "English only"
  goal: "100% of the goal"
neighborhoods:
  "Thessaloniki City Center": "Thessaloniki City Center"
  "Ano Poli": "Ano Poli"
  "Toumba": "Toumba"
  "Kalamaria": "Kalamaria"
  "Harilaou": "Harilaou"
  "Other": "Other"
`)},
		"locales/el.yaml": {Data: []byte(`locale: el
messages:
  greeting: "Γεια"
`)},
	}

	b, err := LoadFromFS(files)
	if err != nil {
		t.Fatalf("LoadFromFS: %v", err)
	}

	if got := b.Printer("el").Sprintf("greeting"); got != "Γεια" {
		t.Errorf("catalog el greeting = %q, want Γεια", got)
	}

	tests := []struct {
		lang, key, want string
	}{
		{"el", "greeting", "Γεια"},
		{"en", "greeting", "Hello"},
		{"el", "only_en", "English only"},
		{"en", "goal", "100% of the goal"},
		{"el", "missing", "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			if got := b.T(tt.lang, tt.key); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestParseLang(t *testing.T) {
	b := Default()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"en", "en", true},
		{"el", "el", true},
		{"EL", "el", true},
		{"el-GR", "el", true},
		{" en-US ", "en", true},
		{"fr", "", false},
		{"", "", false},
		{"not a tag!", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := b.ParseLang(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLang(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	b := Default()

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"el-GR,el;q=0.9,en;q=0.8", "el"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR,el;q=0.5", "el"},
		{"de", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := b.MatchAcceptLanguage(tt.header); got != tt.want {
				t.Errorf("MatchAcceptLanguage(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	b := Default()

	if got := b.FormatCount("en", 1000); got != "1,000" {
		t.Errorf("FormatCount(en) = %q, want 1,000", got)
	}
	if got := b.FormatCount("el", 1000); got != "1.000" {
		t.Errorf("FormatCount(el) = %q, want 1.000", got)
	}
	if got := b.FormatCount("en", 42); got != "42" {
		t.Errorf("FormatCount(en, 42) = %q", got)
	}
}

func TestNormalizeLocation(t *testing.T) {
	b := Default()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", models.DefaultLocation, true},
		{"Toumba", models.LocationToumba, true},
		{"toumba", models.LocationToumba, true},
		{"Τούμπα", models.LocationToumba, true},
		{"Κέντρο Θεσσαλονίκης", models.LocationCityCenter, true},
		{"  Άλλο ", models.LocationOther, true},
		{"Athens", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := b.NormalizeLocation(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NormalizeLocation(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNeighborhoodLabel(t *testing.T) {
	b := Default()

	if got := b.NeighborhoodLabel("el", models.LocationKalamaria); got != "Καλαμαριά" {
		t.Errorf("el label = %q", got)
	}
	if got := b.NeighborhoodLabel("en", models.LocationKalamaria); got != "Kalamaria" {
		t.Errorf("en label = %q", got)
	}
	if got := b.NeighborhoodLabel("el", "Somewhere Else"); got != "Somewhere Else" {
		t.Errorf("unknown label = %q, want passthrough", got)
	}
}

func TestNeighborhoodLabel_StoredAsLabel(t *testing.T) {
	b := Default()

	tests := []struct {
		lang, stored, want string
	}{
		{"en", "Τούμπα", "Toumba"},
		{"en", "Κέντρο Θεσσαλονίκης", "Thessaloniki City Center"},
		{"el", "Ano Poli", "Άνω Πόλη"},
		{"el", "kalamaria", "Καλαμαριά"},
		{"en", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.stored, func(t *testing.T) {
			if got := b.NeighborhoodLabel(tt.lang, tt.stored); got != tt.want {
				t.Errorf("NeighborhoodLabel(%q, %q) = %q, want %q", tt.lang, tt.stored, got, tt.want)
			}
		})
	}
}

func TestPillarsAreCopies(t *testing.T) {
	b := Default()

	p := b.Pillars("en")
	p[0].Title = "changed"

	if b.Pillars("en")[0].Title == "changed" {
		t.Error("Pillars returned the bundle's backing slice")
	}
}

func TestLoadFromFSErrors(t *testing.T) {
	validEN := `locale: en
messages:
  hello: "Hello"
neighborhoods:
  "Thessaloniki City Center": "Thessaloniki City Center"
  "Ano Poli": "Ano Poli"
  "Toumba": "Toumba"
  "Kalamaria": "Kalamaria"
  "Harilaou": "Harilaou"
  "Other": "Other"
`

	tests := []struct {
		name  string
		files fstest.MapFS
	}{
		{"empty", fstest.MapFS{}},
		{"bad yaml", fstest.MapFS{"locales/en.yaml": {Data: []byte("locale: [")}}},
		{"name mismatch", fstest.MapFS{"locales/en.yaml": {Data: []byte("locale: el\n")}}},
		{"no base locale", fstest.MapFS{"locales/el.yaml": {Data: []byte("locale: el\n")}}},
		{"missing neighborhood", fstest.MapFS{"locales/en.yaml": {Data: []byte("locale: en\nneighborhoods:\n  Other: Other\n")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromFS(tt.files); err == nil {
				t.Error("expected error")
			}
		})
	}

	b, err := LoadFromFS(fstest.MapFS{"locales/en.yaml": {Data: []byte(validEN)}})
	if err != nil {
		t.Fatalf("LoadFromFS(valid): %v", err)
	}
	if got := b.T("el", "hello"); got != "Hello" {
		t.Errorf("T(el, hello) = %q, want English fallback", got)
	}
}

func TestRelativeTime(t *testing.T) {
	b := Default()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		lang string
		ago  time.Duration
		want string
	}{
		{"en", 10 * time.Second, "Just now"},
		{"el", 10 * time.Second, "Μόλις τώρα"},
		{"en", 3 * time.Minute, "3 minutes ago"},
		{"el", 3 * time.Minute, "πριν από 3 λεπτά"},
		{"el", 5 * time.Hour, "πριν από 5 ώρες"},
		{"el", 3 * 24 * time.Hour, "πριν από 3 ημέρες"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.ago.String(), func(t *testing.T) {
			if got := b.RelativeTime(tt.lang, now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("RelativeTime = %q, want %q", got, tt.want)
			}
		})
	}

	if got := b.RelativeTime("en", time.Time{}, now); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
}
