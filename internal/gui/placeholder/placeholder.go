// Package placeholder substitutes {key} tokens in titles, item names and
// lore. Sources are layered in a fixed order so more specific data wins:
// user identity, the bound warp entity, menu data, then the session bag.
// Unresolved tokens are left literal on purpose; a leftover {key} in a grid
// is a visible bug report. Style codes are translated only after all
// substitution passes so codes inside substituted values survive.
package placeholder

import (
	"regexp"
	"strings"

	"warpgate.gg/internal/gui/session"
	"warpgate.gg/internal/warps"
)

// Context carries the layered substitution sources for one render.
type Context struct {
	User *session.User

	// Warp is set only while rendering a domain-bound item.
	Warp *warps.Warp
	// PublicState is the localized visibility label for Warp.
	PublicState string

	// Dynamic and Static come from the current MenuData.
	Dynamic map[string]string
	Static  map[string]string

	// Bag resolves remaining tokens from the session data bag.
	Bag func(key string) (string, bool)
}

var tokenRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

func Substitute(tmpl string, ctx Context) string {
	if tmpl == "" || !strings.Contains(tmpl, "{") {
		return tmpl
	}

	if ctx.User != nil {
		tmpl = replacePairs(tmpl,
			"{player}", ctx.User.Name,
			"{player_id}", ctx.User.ID,
			"{locale}", ctx.User.Locale,
		)
	}
	if ctx.Warp != nil {
		w := ctx.Warp
		tmpl = replacePairs(tmpl,
			"{name}", w.Name,
			"{owner}", w.OwnerName,
			"{world}", w.World,
			"{coords}", w.Coords(),
			"{desc}", w.Description,
			"{public_state}", ctx.PublicState,
		)
	}
	tmpl = replaceMap(tmpl, ctx.Dynamic)
	tmpl = replaceMap(tmpl, ctx.Static)

	if ctx.Bag != nil {
		tmpl = tokenRe.ReplaceAllStringFunc(tmpl, func(tok string) string {
			key := tok[1 : len(tok)-1]
			if v, ok := ctx.Bag(key); ok {
				return v
			}
			return tok
		})
	}
	return tmpl
}

func replacePairs(s string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(s)
}

func replaceMap(s string, m map[string]string) string {
	if len(m) == 0 || !strings.Contains(s, "{") {
		return s
	}
	for k, v := range m {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

const styleChars = "0123456789abcdefklmnor"

// Colorize translates &-style markup into section-sign codes.
func Colorize(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && i+1 < len(s) && strings.IndexByte(styleChars, lower(s[i+1])) >= 0 {
			b.WriteRune('§')
			b.WriteByte(lower(s[i+1]))
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// Render is the full pipeline: substitution passes, then markup.
func Render(tmpl string, ctx Context) string {
	return Colorize(Substitute(tmpl, ctx))
}
