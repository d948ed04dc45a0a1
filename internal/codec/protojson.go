package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoJSON reads and writes the JSON mapping of google.protobuf.Value.
// Decode returns a *structpb.Value.
type ProtoJSON struct{}

var _ Codec = ProtoJSON{}

func (ProtoJSON) Format() Format { return FormatProtoJSON }

func (ProtoJSON) Decode(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.ErrEmptyInput
	}

	root := &structpb.Value{}
	if err := protojson.Unmarshal(data, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Encode writes numbers as doubles, as google.protobuf.Value defines them.
func (ProtoJSON) Encode(v models.Value) ([]byte, error) {
	if err := walkNumbers(v, nil, func(n models.Value, path models.Path) error {
		if n.Overflows() {
			return errors.NewOutputError(
				fmt.Sprintf("number %s at %s cannot be encoded as %s", n.Literal(), path, FormatProtoJSON),
				errors.ErrNumberOutOfRange,
			)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return protojson.Marshal(v.ToProto())
}
