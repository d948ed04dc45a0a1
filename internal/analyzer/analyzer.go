// Package analyzer infers a shape describing a JSON value.
package analyzer

import (
	"reflect"

	"github.com/mcncl/isjson/internal/models"
	"github.com/mcncl/isjson/internal/shape"
)

// Analyzer infers shapes from documents
type Analyzer struct {
	// detectFormats marks strings that look like dates or UUIDs with a format
	detectFormats bool
}

// NewAnalyzer creates a new Analyzer instance that detects string formats.
func NewAnalyzer() *Analyzer {
	return &Analyzer{detectFormats: true}
}

// NewAnalyzerWithFormats creates a new Analyzer instance.
func NewAnalyzerWithFormats(detectFormats bool) *Analyzer {
	return &Analyzer{detectFormats: detectFormats}
}

// Analyze returns the narrowest shape v matches. Elements of one array are
// merged: objects missing a property make it optional, null makes a shape
// nullable and differing types become a union.
func (a *Analyzer) Analyze(v models.Value) *shape.Shape {
	switch v.Kind() {
	case models.Null:
		return &shape.Shape{Type: shape.TypeNull}
	case models.Bool:
		return &shape.Shape{Type: shape.TypeBoolean}
	case models.Number:
		return &shape.Shape{Type: shape.TypeNumber}
	case models.String:
		s := &shape.Shape{Type: shape.TypeString}
		if a.detectFormats {
			s.Format = shape.DetectFormat(v.Text())
		}
		return s
	case models.Array:
		return a.analyzeArray(v)
	case models.Object:
		return a.analyzeObject(v)
	default:
		return &shape.Shape{Type: shape.TypeJSON}
	}
}

func (a *Analyzer) analyzeObject(v models.Value) *shape.Shape {
	s := &shape.Shape{Type: shape.TypeObject, Properties: make(map[string]*shape.Shape, v.Len())}
	for _, key := range v.Keys() {
		field, _ := v.Get(key)
		s.Properties[key] = a.Analyze(field)
	}
	return s
}

func (a *Analyzer) analyzeArray(v models.Value) *shape.Shape {
	// Empty arrays say nothing about their elements
	var items *shape.Shape
	for i := 0; i < v.Len(); i++ {
		elem := a.Analyze(v.Index(i))
		if items == nil {
			items = elem
			continue
		}
		items = merge(items, elem)
	}
	return &shape.Shape{Type: shape.TypeArray, Items: items}
}

// bare copies s without its optional and nullable flags
func bare(s *shape.Shape) *shape.Shape {
	c := *s
	c.Optional = false
	c.Nullable = false
	return &c
}

func isNull(s *shape.Shape) bool {
	return s.Type == shape.TypeNull && len(s.AnyOf) == 0
}

// merge returns a shape matched by everything x or y matches
func merge(x, y *shape.Shape) *shape.Shape {
	nullable := x.Nullable || y.Nullable
	bx, by := bare(x), bare(y)

	var out *shape.Shape
	switch {
	case reflect.DeepEqual(bx, by):
		out = bx
	case isNull(bx):
		out, nullable = by, true
	case isNull(by):
		out, nullable = bx, true
	case bx.Type == shape.TypeObject && by.Type == shape.TypeObject:
		out = mergeObjects(bx, by)
	case bx.Type == shape.TypeArray && by.Type == shape.TypeArray:
		out = &shape.Shape{Type: shape.TypeArray, Items: mergeItems(bx.Items, by.Items)}
	case bx.Type == shape.TypeString && by.Type == shape.TypeString:
		// Formats differ
		out = &shape.Shape{Type: shape.TypeString}
	default:
		return union(x, y)
	}

	out.Nullable = nullable
	return out
}

func mergeItems(x, y *shape.Shape) *shape.Shape {
	if x == nil {
		return y
	}
	if y == nil {
		return x
	}
	return merge(x, y)
}

// mergeObjects keeps every property of either object; properties missing
// from one side become optional
func mergeObjects(x, y *shape.Shape) *shape.Shape {
	out := &shape.Shape{Type: shape.TypeObject, Properties: make(map[string]*shape.Shape)}

	for name, px := range x.Properties {
		py, ok := y.Properties[name]
		if !ok {
			c := *px
			c.Optional = true
			out.Properties[name] = &c
			continue
		}
		m := merge(px, py)
		m.Optional = px.Optional || py.Optional
		out.Properties[name] = m
	}
	for name, py := range y.Properties {
		if _, ok := x.Properties[name]; ok {
			continue
		}
		c := *py
		c.Optional = true
		out.Properties[name] = &c
	}
	return out
}

func alternatives(s *shape.Shape) []*shape.Shape {
	if len(s.AnyOf) > 0 {
		return s.AnyOf
	}
	return []*shape.Shape{s}
}

// union builds anyOf with at most one alternative per type; null becomes
// nullable on the union itself
func union(x, y *shape.Shape) *shape.Shape {
	nullable := x.Nullable || y.Nullable
	var out []*shape.Shape

	for _, alt := range append(alternatives(x), alternatives(y)...) {
		if alt.Nullable {
			nullable = true
		}
		if isNull(alt) {
			nullable = true
			continue
		}
		b := bare(alt)

		merged := false
		for i, o := range out {
			if o.Type == b.Type {
				out[i] = merge(o, b)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, b)
		}
	}

	switch len(out) {
	case 0:
		return &shape.Shape{Type: shape.TypeNull}
	case 1:
		out[0].Nullable = nullable
		return out[0]
	default:
		return &shape.Shape{AnyOf: out, Nullable: nullable}
	}
}
