package codec

import (
	stderrors "errors"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
)

// CBOR decodes and encodes with fxamacker/cbor. The zero value is NOT ready to
// use; construct with NewCBOR.
//
// Decoding keeps CBOR-only data as is: byte strings stay []byte, bignums that
// do not fit 64 bits become big.Int and maps keep their dynamic key types.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec = CBOR{}

// NewCBOR constructs a CBOR codec.
//   - deterministic uses CoreDetEncOptions (RFC 8949 core deterministic).
//   - otherwise PreferredUnsortedEncOptions.
func NewCBOR(deterministic bool) (CBOR, error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}

	em, err := eo.EncMode()
	if err != nil {
		return CBOR{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: em, dec: dm}, nil
}

func (CBOR) Format() Format { return FormatCBOR }

func (c CBOR) Decode(r io.Reader) (any, error) {
	decoder := c.dec.NewDecoder(r)

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

// Encode writes integers past 64 bits as bignums.
func (c CBOR) Encode(v models.Value) ([]byte, error) {
	if err := checkNumbers(v, FormatCBOR, true); err != nil {
		return nil, err
	}
	return c.enc.Marshal(v.Interface())
}
