package codec

import (
	stderrors "errors"
	"io"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack decodes and encodes with vmihailenco/msgpack/v5. The zero value is
// ready to use. bin values decode to []byte and timestamps to time.Time.
type Msgpack struct{}

var _ Codec = Msgpack{}

func (Msgpack) Format() Format { return FormatMsgpack }

func (Msgpack) Decode(r io.Reader) (any, error) {
	decoder := msgpack.NewDecoder(r)

	root, err := decoder.DecodeInterface()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.ErrEmptyInput
		}
		return nil, err
	}

	if _, err := decoder.DecodeInterface(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, errors.ErrMultipleDocuments
	}
	return root, nil
}

func (Msgpack) Encode(v models.Value) ([]byte, error) {
	if err := checkNumbers(v, FormatMsgpack, false); err != nil {
		return nil, err
	}
	return msgpack.Marshal(v.Interface())
}
