// Package i18n resolves localized strings from flat yaml bundles, one file
// per locale under the configs i18n directory.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Bundle struct {
	def     string
	locales map[string]map[string]string
}

// Load reads every <locale>.yaml in dir. The default locale must exist;
// everything else is optional.
func Load(dir, defaultLocale string) (*Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("i18n dir: %w", err)
	}

	b := &Bundle{def: defaultLocale, locales: map[string]map[string]string{}}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var m map[string]string
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		b.locales[strings.TrimSuffix(e.Name(), ".yaml")] = m
	}
	if _, ok := b.locales[defaultLocale]; !ok {
		return nil, fmt.Errorf("missing default locale %q", defaultLocale)
	}
	return b, nil
}

// Resolve looks a key up in locale, then the default locale, then gives the
// key itself back so a missing translation is visible, not blank.
func (b *Bundle) Resolve(key, locale string) string {
	if m, ok := b.locales[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := b.locales[b.def][key]; ok {
		return s
	}
	return key
}

func (b *Bundle) DefaultLocale() string { return b.def }

func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for l := range b.locales {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Static returns a bundle built from in-memory maps; test and default wiring.
func Static(defaultLocale string, locales map[string]map[string]string) *Bundle {
	if locales == nil {
		locales = map[string]map[string]string{}
	}
	if _, ok := locales[defaultLocale]; !ok {
		locales[defaultLocale] = map[string]string{}
	}
	return &Bundle{def: defaultLocale, locales: locales}
}
