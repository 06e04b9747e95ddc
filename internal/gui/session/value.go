package session

import "strconv"

type valueKind int

const (
	kindString valueKind = iota + 1
	kindInt
	kindBool
	kindWarpID
)

// Value is the sum type stored in a session data bag: string, int, bool or a
// warp id. Typed getters fail closed (zero value, false) on kind mismatch so
// a mistyped key can never abort a render.
type Value struct {
	kind valueKind
	s    string
	n    int
	b    bool
}

func String(s string) Value { return Value{kind: kindString, s: s} }
func Int(n int) Value       { return Value{kind: kindInt, n: n} }
func Bool(b bool) Value     { return Value{kind: kindBool, b: b} }
func WarpID(id string) Value {
	return Value{kind: kindWarpID, s: id}
}

func (v Value) AsString() (string, bool) { return v.s, v.kind == kindString }
func (v Value) AsInt() (int, bool)       { return v.n, v.kind == kindInt }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == kindBool }
func (v Value) AsWarpID() (string, bool) { return v.s, v.kind == kindWarpID }

// Display renders any kind for placeholder substitution.
func (v Value) Display() string {
	switch v.kind {
	case kindString, kindWarpID:
		return v.s
	case kindInt:
		return strconv.Itoa(v.n)
	case kindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}
