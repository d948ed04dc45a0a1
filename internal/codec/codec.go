package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
)

// Format names a document encoding.
type Format string

const (
	FormatAuto      Format = "auto"
	FormatJSON      Format = "json"
	FormatYAML      Format = "yaml"
	FormatCBOR      Format = "cbor"
	FormatMsgpack   Format = "msgpack"
	FormatProtoJSON Format = "protojson"
)

// Formats lists every concrete format.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR, FormatMsgpack, FormatProtoJSON}

// Codec decodes documents into plain Go values and encodes JSON values.
//
// Decode must not normalise what it reads: values a format can carry but JSON
// cannot (byte strings, bignums, non-string keys) are passed through so the
// classifier can reject them.
type Codec interface {
	Format() Format
	Decode(r io.Reader) (any, error)
	Encode(v models.Value) ([]byte, error)
}

// ParseFormat resolves a format name, accepting common aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	case "msgpack", "messagepack", "mp":
		return FormatMsgpack, nil
	case "protojson", "proto":
		return FormatProtoJSON, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrUnknownFormat, name)
}

// DetectFormat guesses the format from a file extension, defaulting to JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cbor":
		return FormatCBOR
	case ".msgpack", ".mp", ".mpk":
		return FormatMsgpack
	case ".pbjson":
		return FormatProtoJSON
	default:
		return FormatJSON
	}
}

// Options tunes the codecs returned by For.
type Options struct {
	// Deterministic selects canonical CBOR encoding.
	Deterministic bool
}

// For returns the codec for a concrete format.
func For(f Format, opts Options) (Codec, error) {
	switch f {
	case FormatJSON:
		return JSON{}, nil
	case FormatYAML:
		return YAML{}, nil
	case FormatCBOR:
		return NewCBOR(opts.Deterministic)
	case FormatMsgpack:
		return Msgpack{}, nil
	case FormatProtoJSON:
		return ProtoJSON{}, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnknownFormat, string(f))
}

// checkNumbers returns an output error for the first number in v that f
// cannot hold without losing digits. Literals past the float64 range never
// fit; integers past 64 bits fit only where bigInts is set.
func checkNumbers(v models.Value, f Format, bigInts bool) error {
	return walkNumbers(v, nil, func(n models.Value, path models.Path) error {
		if n.Overflows() || !bigInts && n.IsInteger() && !fits64(n) {
			return errors.NewOutputError(
				fmt.Sprintf("number %s at %s cannot be encoded as %s", n.Literal(), path, f),
				errors.ErrNumberOutOfRange,
			)
		}
		return nil
	})
}

func fits64(n models.Value) bool {
	switch n.Interface().(type) {
	case int64, uint64:
		return true
	}
	return false
}

func walkNumbers(v models.Value, path models.Path, fn func(models.Value, models.Path) error) error {
	switch v.Kind() {
	case models.Number:
		return fn(v, path)
	case models.Array:
		for i := 0; i < v.Len(); i++ {
			if err := walkNumbers(v.Index(i), path.Index(i), fn); err != nil {
				return err
			}
		}
	case models.Object:
		for _, k := range v.Keys() {
			f, _ := v.Get(k)
			if err := walkNumbers(f, path.Key(k), fn); err != nil {
				return err
			}
		}
	}
	return nil
}
