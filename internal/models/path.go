package models

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a value inside a document, starting at the root.
type Path []Segment

// Key returns a copy of p extended with an object key.
func (p Path) Key(k string) Path {
	return p.with(Segment{Key: k})
}

// Index returns a copy of p extended with an array index.
func (p Path) Index(i int) Path {
	return p.with(Segment{Index: i, IsIndex: true})
}

// with never shares the backing array with p, so sibling paths built from the
// same parent stay independent.
func (p Path) with(s Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// String renders p as $, $.a.b[2] or $["key with space"].
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, s := range p {
		switch {
		case s.IsIndex:
			sb.WriteString("[")
			sb.WriteString(strconv.Itoa(s.Index))
			sb.WriteString("]")
		case isIdentifier(s.Key):
			sb.WriteString(".")
			sb.WriteString(s.Key)
		default:
			sb.WriteString("[")
			sb.WriteString(strconv.Quote(s.Key))
			sb.WriteString("]")
		}
	}
	return sb.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
