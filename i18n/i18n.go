// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/eerco/ensuring-integrity/models"
)

// BaseLang is the fallback for missing keys and unknown languages
const BaseLang = models.LangEnglish

var supported = []language.Tag{language.English, language.Greek}

var matcher = language.NewMatcher(supported)

//go:embed locales/*.yaml
var embeddedFS embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the process-wide embedded bundle
func Default() *Bundle {
	return defaultBundle
}

type localeFile struct {
	Locale        string            `yaml:"locale"`
	Messages      map[string]string `yaml:"messages"`
	Neighborhoods map[string]string `yaml:"neighborhoods"`
	FiveFreedoms  []string          `yaml:"five_freedoms"`
	Pillars       []models.Pillar   `yaml:"pillars"`
}

// Bundle holds every locale's content plus an x/text catalog for message lookup
type Bundle struct {
	locales map[string]*localeFile
	catalog *catalog.Builder
}

func mustLoadEmbedded() *Bundle {
	b, err := LoadFromFS(embeddedFS)
	if err != nil {
		panic(fmt.Sprintf("load embedded locales: %v", err))
	}
	return b
}

// LoadFromFS loads locales/*.yaml from fsys
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		locales: make(map[string]*localeFile, len(paths)),
		catalog: catalog.NewBuilder(catalog.Fallback(language.English)),
	}

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}

		fromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != fromPath {
			return nil, fmt.Errorf("%s: locale %q must match file name %q", p, file.Locale, fromPath)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("%s: parse locale: %w", p, err)
		}

		// Messages are plain text; escape verbs so T renders them verbatim
		for key, msg := range file.Messages {
			if err := b.catalog.SetString(tag, key, strings.ReplaceAll(msg, "%", "%%")); err != nil {
				return nil, fmt.Errorf("%s: register %q: %w", p, key, err)
			}
		}
		b.locales[file.Locale] = &file
	}

	base, ok := b.locales[BaseLang]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLang)
	}
	for _, key := range models.Locations {
		if _, ok := base.Neighborhoods[key]; !ok {
			return nil, fmt.Errorf("base locale is missing neighborhood %q", key)
		}
	}

	return b, nil
}

// Langs returns the loaded language codes, sorted
func (b *Bundle) Langs() []string {
	out := make([]string, 0, len(b.locales))
	for lang := range b.locales {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// ParseLang maps a user-supplied value ("el", "el-GR", "EN") to a loaded language
func (b *Bundle) ParseLang(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	if _, ok := b.locales[base.String()]; !ok {
		return "", false
	}
	return base.String(), true
}

// MatchAcceptLanguage picks the best loaded language for an Accept-Language header
func (b *Bundle) MatchAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return BaseLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return BaseLang
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Printer returns a message printer for lang backed by the loaded catalogs
func (b *Bundle) Printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag, message.Catalog(b.catalog))
}

// T returns the message for key in lang, falling back to English, then the key
func (b *Bundle) T(lang, key string) string {
	if loc, ok := b.locales[lang]; !ok || !hasMessage(loc, key) {
		lang = BaseLang
	}
	if !hasMessage(b.locales[lang], key) {
		return key
	}
	return b.Printer(lang).Sprintf(key)
}

func hasMessage(loc *localeFile, key string) bool {
	if loc == nil {
		return false
	}
	_, ok := loc.Messages[key]
	return ok
}

// FormatCount renders n with the language's digit grouping (1,000 / 1.000)
func (b *Bundle) FormatCount(lang string, n int) string {
	return b.Printer(lang).Sprintf("%d", n)
}

func (b *Bundle) locale(lang string) *localeFile {
	if loc, ok := b.locales[lang]; ok {
		return loc
	}
	return b.locales[BaseLang]
}

// Neighborhoods returns the neighborhood options in form order
func (b *Bundle) Neighborhoods(lang string) []models.NeighborhoodOption {
	out := make([]models.NeighborhoodOption, 0, len(models.Locations))
	for _, key := range models.Locations {
		out = append(out, models.NeighborhoodOption{Key: key, Label: b.NeighborhoodLabel(lang, key)})
	}
	return out
}

// NeighborhoodLabel localizes a stored location, given as a key or as a label
// in any loaded language. Unknown values pass through.
func (b *Bundle) NeighborhoodLabel(lang, key string) string {
	if canonical, ok := b.NormalizeLocation(key); ok && strings.TrimSpace(key) != "" {
		key = canonical
	}
	if label, ok := b.locale(lang).Neighborhoods[key]; ok {
		return label
	}
	if label, ok := b.locales[BaseLang].Neighborhoods[key]; ok {
		return label
	}
	return key
}

// NormalizeLocation maps a key or a label in any language to the canonical
// key. Empty input selects the default neighborhood.
func (b *Bundle) NormalizeLocation(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.DefaultLocation, true
	}
	for _, key := range models.Locations {
		if strings.EqualFold(input, key) {
			return key, true
		}
	}
	for _, loc := range b.locales {
		for key, label := range loc.Neighborhoods {
			if strings.EqualFold(input, label) {
				return key, true
			}
		}
	}
	return "", false
}

// Pillars returns the four manifesto pillars
func (b *Bundle) Pillars(lang string) []models.Pillar {
	return append([]models.Pillar(nil), b.locale(lang).Pillars...)
}

// FiveFreedoms returns the animal welfare freedoms list
func (b *Bundle) FiveFreedoms(lang string) []string {
	return append([]string(nil), b.locale(lang).FiveFreedoms...)
}
