// Package paneldef holds the parsed, immutable panel model. One yaml
// document per panel; the loaded set is swapped atomically on reload so an
// in-flight render always sees a consistent snapshot.
package paneldef

const Cols = 9

// MaxRows matches the largest grid the host can open.
const MaxRows = 6

type ItemText struct {
	Name string
	Lore []string
}

// Variant is a conditionally-applied override of an item's visual and
// action fields. Variants are checked in declaration order and the first
// matching guard wins; authors control precedence by ordering, not by
// specificity.
type Variant struct {
	Condition string
	Icon      string
	Name      string
	Lore      []string
	Actions   []string
}

type Item struct {
	Symbol   rune
	Icon     string
	Name     string
	Lore     []string
	Count    int
	WarpItem bool
	Search   bool
	Actions  []string
	Variants []Variant
	I18n     map[string]ItemText
}

// Text returns the item's base name and lore for a locale, falling back to
// the untranslated fields.
func (it *Item) Text(locale string) (string, []string) {
	name, lore := it.Name, it.Lore
	if t, ok := it.I18n[locale]; ok {
		if t.Name != "" {
			name = t.Name
		}
		if t.Lore != nil {
			lore = t.Lore
		}
	}
	return name, lore
}

type Definition struct {
	Name   string
	Title  string
	Layout []string
	Items  map[rune]*Item
	Digest string
}

// Renderable reports whether the panel can be opened at all. A panel with
// an empty layout loads (so reload never drops it silently) but is refused
// at open time.
func (d *Definition) Renderable() bool {
	return d != nil && len(d.Layout) > 0
}

func (d *Definition) Rows() int { return len(d.Layout) }

// ListingCapacity counts layout cells whose symbol maps to a warp item.
func (d *Definition) ListingCapacity() int {
	n := 0
	for _, row := range d.Layout {
		for _, sym := range row {
			if it := d.Items[sym]; it != nil && it.WarpItem {
				n++
			}
		}
	}
	return n
}
