package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/isjson/internal/codec"
	"github.com/mcncl/isjson/internal/errors" // Custom errors package
	"github.com/mcncl/isjson/internal/models"
)

// Parser decodes documents with codecs configured once.
type Parser struct {
	opts codec.Options
}

// NewParser creates a Parser with default codec options.
func NewParser() *Parser {
	return &Parser{}
}

// NewParserWithOptions creates a Parser with custom codec options.
func NewParserWithOptions(opts codec.Options) *Parser {
	return &Parser{opts: opts}
}

// Parse decodes a single document from reader. FormatAuto reads JSON.
func (p *Parser) Parse(reader io.Reader, format codec.Format) (models.Document, error) {
	if format == codec.FormatAuto {
		format = codec.FormatJSON
	}
	c, err := codec.For(format, p.opts)
	if err != nil {
		return models.Document{}, errors.NewInputError(fmt.Sprintf("unsupported input format %q", format), err)
	}

	root, err := c.Decode(reader)
	if err != nil {
		return models.Document{}, decodeError(format, err)
	}

	return models.Document{Root: root, Format: string(format)}, nil
}

// decodeError classifies codec failures into parsing errors
func decodeError(format codec.Format, err error) error {
	if stderrors.Is(err, errors.ErrEmptyInput) {
		return errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	if stderrors.Is(err, errors.ErrMultipleDocuments) {
		return errors.NewParsingError("multiple documents found at the root", errors.ErrMultipleDocuments)
	}

	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) && format == codec.FormatJSON {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError(fmt.Sprintf("failed to decode %s", format), err)
}

// ParseString parses a document from a string
func (p *Parser) ParseString(input string, format codec.Format) (models.Document, error) {
	// Binary formats may legitimately be whitespace-looking, so only text formats are trimmed
	if format != codec.FormatCBOR && format != codec.FormatMsgpack && strings.TrimSpace(input) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return p.Parse(strings.NewReader(input), format)
}

// ParseFile parses a document from a file path. FormatAuto detects the format
// from the file extension.
func (p *Parser) ParseFile(filePath string, format codec.Format) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	if format == codec.FormatAuto {
		format = codec.DetectFormat(filePath)
	}
	doc, err := p.Parse(file, format)
	if err != nil {
		return models.Document{}, err
	}
	doc.Source = filePath
	return doc, nil
}
