package codec

import (
	stderrors "errors"
	"io"
	"math"
	"strconv"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
	"gopkg.in/yaml.v3"
)

// YAML decodes a single YAML document. Mappings with non-string keys come out
// as map[interface{}]interface{} and .nan/.inf as non-finite floats.
type YAML struct{}

var _ Codec = YAML{}

func (YAML) Format() Format { return FormatYAML }

func (YAML) Decode(r io.Reader) (any, error) {
	decoder := yaml.NewDecoder(r)

	var root any
	if err := decoder.Decode(&root); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.ErrEmptyInput
		}
		return nil, err
	}

	var trailing any
	if err := decoder.Decode(&trailing); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, errors.ErrMultipleDocuments
	}
	return root, nil
}

// Encode writes numbers as their original literals so no digits are lost.
func (YAML) Encode(v models.Value) ([]byte, error) {
	if err := checkNumbers(v, FormatYAML, true); err != nil {
		return nil, err
	}
	return yaml.Marshal(yamlNode(v))
}

func yamlNode(v models.Value) *yaml.Node {
	switch v.Kind() {
	case models.Bool:
		return scalar("!!bool", strconv.FormatBool(v.Bool()))
	case models.Number:
		f := v.Float()
		switch {
		case math.IsNaN(f):
			return scalar("!!float", ".nan")
		case math.IsInf(f, 1):
			return scalar("!!float", ".inf")
		case math.IsInf(f, -1):
			return scalar("!!float", "-.inf")
		case v.IsInteger():
			return scalar("!!int", v.Literal())
		}
		return scalar("!!float", v.Literal())
	case models.String:
		return scalar("!!str", v.Text())
	case models.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < v.Len(); i++ {
			n.Content = append(n.Content, yamlNode(v.Index(i)))
		}
		return n
	case models.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.Keys() {
			f, _ := v.Get(k)
			n.Content = append(n.Content, scalar("!!str", k), yamlNode(f))
		}
		return n
	default:
		return scalar("!!null", "null")
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
