// Package icons holds the icon catalog a grid cell may reference. Unknown
// ids resolve to a fixed stand-in so one bad entry never blanks a panel.
package icons

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"crypto/sha256"
	"encoding/hex"
)

// Fallback is the stand-in icon for unrecognized ids. Fixed on purpose;
// the catalog file controls everything else.
const Fallback = "STONE"

// HeadPrefix marks an icon that needs a skin/head texture from the host.
const HeadPrefix = "head:"

type Def struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "BLOCK","ITEM","HEAD"
}

type Catalog struct {
	Palette []string
	Index   map[string]uint16
	Defs    map[string]Def
	Digest  string

	skins SkinProvider
}

// SkinProvider is the capability the host offers for head/skin textures.
// One adapter per host API generation; the engine never probes dynamically.
type SkinProvider interface {
	Supported() bool
	// Resolve maps a head reference (the part after "head:") to a concrete
	// icon id the host can display.
	Resolve(ref string) (string, bool)
}

// NoSkins is the default provider: heads degrade to the fallback icon.
type NoSkins struct{}

func (NoSkins) Supported() bool               { return false }
func (NoSkins) Resolve(string) (string, bool) { return "", false }

func Load(path string, skins SkinProvider) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var defs []Def
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("icons.json: %w", err)
	}

	c := &Catalog{Defs: map[string]Def{}, skins: skins}
	if c.skins == nil {
		c.skins = NoSkins{}
	}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("icons.json: empty id")
		}
		c.Defs[d.ID] = d
	}
	if _, ok := c.Defs[Fallback]; !ok {
		return nil, fmt.Errorf("icons.json: missing %s", Fallback)
	}

	ids := make([]string, 0, len(c.Defs))
	for id := range c.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	c.Palette = ids
	c.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		c.Index[id] = uint16(i)
	}

	sum := sha256.Sum256(raw)
	c.Digest = hex.EncodeToString(sum[:])
	return c, nil
}

func (c *Catalog) Known(id string) bool {
	_, ok := c.Defs[id]
	return ok
}

// Resolve maps a configured icon id to a displayable one: head refs go
// through the skin provider, unknown ids become the fallback.
func (c *Catalog) Resolve(id string) string {
	if strings.HasPrefix(id, HeadPrefix) {
		if c.skins.Supported() {
			if resolved, ok := c.skins.Resolve(id[len(HeadPrefix):]); ok {
				return resolved
			}
		}
		return Fallback
	}
	if c.Known(id) {
		return id
	}
	return Fallback
}
