package paneldef

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// StringList accepts either a yaml scalar or a sequence.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return err
		}
		*l = StringList(ss)
		return nil
	}
	return fmt.Errorf("expected string or list, got yaml kind %d", node.Kind)
}

type docModel struct {
	Title  string               `yaml:"title"`
	Layout []string             `yaml:"layout"`
	Items  map[string]yaml.Node `yaml:"items"`
}

type itemModel struct {
	Icon        string               `yaml:"icon"`
	Material    string               `yaml:"material"`
	Name        string               `yaml:"name"`
	Lore        StringList           `yaml:"lore"`
	Description StringList           `yaml:"description"`
	Count       int                  `yaml:"count"`
	WarpItem    bool                 `yaml:"warp_item"`
	Search      bool                 `yaml:"search"`
	Action      StringList           `yaml:"action"`
	Variants    []variantModel       `yaml:"variants"`
	I18n        map[string]i18nModel `yaml:"i18n"`
}

type variantModel struct {
	DisplayCondition string     `yaml:"display_condition"`
	Icon             string     `yaml:"icon"`
	Material         string     `yaml:"material"`
	Name             string     `yaml:"name"`
	Lore             StringList `yaml:"lore"`
	Action           StringList `yaml:"action"`
}

type i18nModel struct {
	Name string     `yaml:"name"`
	Lore StringList `yaml:"lore"`
}

// Load parses every *.yaml under dir into a Set. A malformed panel document
// is logged and skipped; a malformed items.<symbol> section is logged and
// skipped without dropping the panel.
func Load(dir string, logger *log.Logger) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("panels dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)

	set := &Set{ByName: map[string]*Definition{}}
	var concat bytes.Buffer
	for _, p := range files {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		concat.Write(raw)
		concat.WriteByte('\n')

		name := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(p), ".yaml"), ".yml")
		def, err := parsePanel(name, raw, logger)
		if err != nil {
			if logger != nil {
				logger.Printf("panel %s: %v; skipping", name, err)
			}
			continue
		}
		set.ByName[name] = def
	}
	set.Digest = sha256Hex(concat.Bytes())
	return set, nil
}

func parsePanel(name string, raw []byte, logger *log.Logger) (*Definition, error) {
	var doc docModel
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	def := &Definition{
		Name:   name,
		Title:  doc.Title,
		Items:  map[rune]*Item{},
		Digest: sha256Hex(raw),
	}
	def.Layout = normalizeLayout(name, doc.Layout, logger)

	for key, node := range doc.Items {
		sym, ok := symbolOf(key)
		if !ok {
			if logger != nil {
				logger.Printf("panel %s: item key %q is not a single symbol; skipping", name, key)
			}
			continue
		}
		it, err := parseItem(sym, node)
		if err != nil {
			if logger != nil {
				logger.Printf("panel %s: item %q: %v; skipping", name, key, err)
			}
			continue
		}
		def.Items[sym] = it
	}
	return def, nil
}

func normalizeLayout(name string, rows []string, logger *log.Logger) []string {
	if len(rows) > MaxRows {
		if logger != nil {
			logger.Printf("panel %s: layout has %d rows; truncating to %d", name, len(rows), MaxRows)
		}
		rows = rows[:MaxRows]
	}
	out := make([]string, 0, len(rows))
	for i, r := range rows {
		if utf8.RuneCountInString(r) > Cols {
			if logger != nil {
				logger.Printf("panel %s: layout row %d wider than %d; truncating", name, i, Cols)
			}
			r = string([]rune(r)[:Cols])
		}
		out = append(out, r)
	}
	return out
}

func symbolOf(key string) (rune, bool) {
	if utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r, true
}

func parseItem(sym rune, node yaml.Node) (*Item, error) {
	var m itemModel
	if err := node.Decode(&m); err != nil {
		return nil, err
	}

	icon := m.Icon
	if icon == "" {
		icon = m.Material
	}
	lore := []string(m.Lore)
	if lore == nil {
		lore = []string(m.Description)
	}
	count := m.Count
	if count < 1 {
		count = 1
	}
	if count > 64 {
		count = 64
	}

	it := &Item{
		Symbol:   sym,
		Icon:     icon,
		Name:     m.Name,
		Lore:     lore,
		Count:    count,
		WarpItem: m.WarpItem,
		Search:   m.Search,
		Actions:  []string(m.Action),
	}
	for _, v := range m.Variants {
		vicon := v.Icon
		if vicon == "" {
			vicon = v.Material
		}
		it.Variants = append(it.Variants, Variant{
			Condition: v.DisplayCondition,
			Icon:      vicon,
			Name:      v.Name,
			Lore:      []string(v.Lore),
			Actions:   []string(v.Action),
		})
	}
	if len(m.I18n) > 0 {
		it.I18n = map[string]ItemText{}
		for loc, t := range m.I18n {
			it.I18n[loc] = ItemText{Name: t.Name, Lore: []string(t.Lore)}
		}
	}
	return it, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
