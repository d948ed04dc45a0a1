// Package shape checks JSON values against structural types: primitives,
// objects with optional properties, index signatures and excess property
// checks, arrays, fixed-length tuples and unions.
package shape

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
	"gopkg.in/yaml.v3"
)

// Type names the structural type a Shape describes
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeNull    Type = "null"
	TypeJSON    Type = "json" // any JSON value
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeTuple   Type = "tuple"
)

// Shape describes the structure a JSON value must have. Shapes are written in
// YAML (or JSON, which YAML accepts).
type Shape struct {
	Type        Type              `yaml:"type,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Format      string            `yaml:"format,omitempty"`
	Nullable    bool              `yaml:"nullable,omitempty"`
	Optional    bool              `yaml:"optional,omitempty"`
	Properties  map[string]*Shape `yaml:"properties,omitempty"`
	Exact       bool              `yaml:"exact,omitempty"`
	Index       *Shape            `yaml:"index,omitempty"`
	Items       *Shape            `yaml:"items,omitempty"`
	Elements    []*Shape          `yaml:"elements,omitempty"`
	AnyOf       []*Shape          `yaml:"anyOf,omitempty"`
}

// UnmarshalYAML reads `type: null` as the null type rather than an absent type
func (s *Shape) UnmarshalYAML(node *yaml.Node) error {
	type plain Shape
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Value == "type" && v.ShortTag() == "!!null" && v.Value != "" {
			s.Type = TypeNull
		}
	}
	return nil
}

// ParseFile reads and compiles a shape from a file
func ParseFile(path string) (*Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewShapeError(fmt.Sprintf("failed to read shape file '%s'", path), err)
	}
	return ParseBytes(data)
}

// ParseBytes parses and compiles a shape from bytes
func ParseBytes(data []byte) (*Shape, error) {
	var s Shape
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.NewShapeError("failed to parse shape", err)
	}
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseString parses and compiles a shape from a string
func ParseString(s string) (*Shape, error) {
	return ParseBytes([]byte(s))
}

// Compile checks that the shape itself is well formed.
func (s *Shape) Compile() error {
	return s.compile(nil)
}

func (s *Shape) compile(path models.Path) error {
	if s == nil {
		return errors.NewShapeError(fmt.Sprintf("empty shape at %s", path), nil)
	}
	if s.Type == "" && len(s.AnyOf) == 0 {
		// Infer type from what is declared
		switch {
		case len(s.Properties) > 0 || s.Index != nil:
			s.Type = TypeObject
		case len(s.Elements) > 0:
			s.Type = TypeTuple
		case s.Items != nil:
			s.Type = TypeArray
		default:
			return errors.NewShapeError(fmt.Sprintf("shape at %s has neither type nor anyOf", path), nil)
		}
	}

	if s.Format != "" {
		if s.Type != TypeString {
			return errors.NewShapeError(fmt.Sprintf("format at %s requires type string", path), nil)
		}
		if _, ok := formatPatterns[s.Format]; !ok {
			return errors.NewShapeError(fmt.Sprintf("unknown string format %q at %s", s.Format, path), nil)
		}
	}

	switch s.Type {
	case "", TypeString, TypeNumber, TypeBoolean, TypeNull, TypeJSON:
	case TypeObject:
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := s.Properties[name].compile(path.Key(name)); err != nil {
				return err
			}
		}
		if s.Index != nil {
			if err := s.Index.compile(path.Key("*")); err != nil {
				return err
			}
		}
	case TypeArray:
		if s.Items != nil {
			if err := s.Items.compile(path.Index(0)); err != nil {
				return err
			}
		}
	case TypeTuple:
		if len(s.Elements) == 0 {
			return errors.NewShapeError(fmt.Sprintf("tuple shape at %s declares no elements", path), nil)
		}
		for i, e := range s.Elements {
			if err := e.compile(path.Index(i)); err != nil {
				return err
			}
		}
	default:
		return errors.NewShapeError(fmt.Sprintf("unknown shape type %q at %s", s.Type, path), nil)
	}

	for _, alt := range s.AnyOf {
		if err := alt.compile(path); err != nil {
			return err
		}
	}
	return nil
}

// YAML renders the shape in the form ParseBytes reads
func (s *Shape) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, errors.NewOutputError("failed to encode shape", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.NewOutputError("failed to encode shape", err)
	}
	return buf.Bytes(), nil
}

// Validate returns every mismatch between v and the shape, as
// *errors.ValidationError values.
func (s *Shape) Validate(v models.Value) []error {
	var errs []error
	s.validate(v, nil, &errs)
	return errs
}

func mismatch(errs *[]error, path models.Path, reason errors.Reason, kind, message string) {
	*errs = append(*errs, &errors.ValidationError{
		Path:    path.String(),
		Reason:  reason,
		Kind:    kind,
		Message: message,
	})
}

func (s *Shape) validate(v models.Value, path models.Path, errs *[]error) {
	if s.Nullable && v.Kind() == models.Null {
		return
	}

	if len(s.AnyOf) > 0 {
		matched := false
		for _, alt := range s.AnyOf {
			var altErrs []error
			alt.validate(v, path, &altErrs)
			if len(altErrs) == 0 {
				matched = true
				break
			}
		}
		if !matched {
			mismatch(errs, path, errors.ReasonNoMatchingAlternative, v.Kind().String(),
				fmt.Sprintf("%s value matches none of the %d alternatives", v.Kind(), len(s.AnyOf)))
			return
		}
		if s.Type == "" {
			return
		}
	}

	switch s.Type {
	case TypeJSON:
	case TypeString:
		if s.expectKind(v, models.String, path, errs) && s.Format != "" && !formatPatterns[s.Format].MatchString(v.Text()) {
			mismatch(errs, path, errors.ReasonFormatMismatch, "string",
				fmt.Sprintf("expected a %s string, got %q", s.Format, v.Text()))
		}
	case TypeNumber:
		s.expectKind(v, models.Number, path, errs)
	case TypeBoolean:
		s.expectKind(v, models.Bool, path, errs)
	case TypeNull:
		s.expectKind(v, models.Null, path, errs)
	case TypeObject:
		if s.expectKind(v, models.Object, path, errs) {
			s.validateObject(v, path, errs)
		}
	case TypeArray:
		if s.expectKind(v, models.Array, path, errs) && s.Items != nil {
			for i := 0; i < v.Len(); i++ {
				s.Items.validate(v.Index(i), path.Index(i), errs)
			}
		}
	case TypeTuple:
		if s.expectKind(v, models.Array, path, errs) {
			s.validateTuple(v, path, errs)
		}
	}
}

func (s *Shape) expectKind(v models.Value, want models.Kind, path models.Path, errs *[]error) bool {
	if v.Kind() == want {
		return true
	}
	mismatch(errs, path, errors.ReasonTypeMismatch, v.Kind().String(),
		fmt.Sprintf("expected %s, got %s", s.Type, v.Kind()))
	return false
}

func (s *Shape) validateObject(v models.Value, path models.Path, errs *[]error) {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := s.Properties[name]
		field, ok := v.Get(name)
		if !ok {
			if !prop.Optional {
				mismatch(errs, path.Key(name), errors.ReasonMissingProperty, "",
					fmt.Sprintf("required property '%s' is missing", name))
			}
			continue
		}
		prop.validate(field, path.Key(name), errs)
	}

	for _, key := range v.Keys() {
		if _, declared := s.Properties[key]; declared {
			continue
		}
		field, _ := v.Get(key)
		switch {
		case s.Index != nil:
			s.Index.validate(field, path.Key(key), errs)
		case s.Exact:
			mismatch(errs, path.Key(key), errors.ReasonExcessProperty, field.Kind().String(),
				fmt.Sprintf("property '%s' is not declared by the shape", key))
		}
	}
}

func (s *Shape) validateTuple(v models.Value, path models.Path, errs *[]error) {
	if v.Len() != len(s.Elements) {
		mismatch(errs, path, errors.ReasonTupleLength, "array",
			fmt.Sprintf("expected %d elements, got %d", len(s.Elements), v.Len()))
	}
	n := v.Len()
	if len(s.Elements) < n {
		n = len(s.Elements)
	}
	for i := 0; i < n; i++ {
		s.Elements[i].validate(v.Index(i), path.Index(i), errs)
	}
}
