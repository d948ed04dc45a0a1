package codec

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
)

// JSON decodes with UseNumber so number literals keep their precision.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) Format() Format { return FormatJSON }

func (JSON) Decode(r io.Reader) (any, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var root any
	if err := decoder.Decode(&root); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.ErrEmptyInput
		}
		return nil, err
	}

	// Only whitespace may follow the first value.
	var trailing any
	if err := decoder.Decode(&trailing); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, errors.ErrMultipleDocuments
	}
	return root, nil
}

func (JSON) Encode(v models.Value) ([]byte, error) {
	return v.MarshalJSON()
}
