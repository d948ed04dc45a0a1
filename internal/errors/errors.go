package errors

import (
	"errors"
	"fmt"

	"github.com/iancoleman/strcase"
)

// Standard application errors
var (
	ErrEmptyInput        = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON       = errors.New("invalid JSON format")
	ErrMultipleDocuments = errors.New("multiple documents found at the root, only one is allowed")
	ErrFileNotFound      = errors.New("file not found")
	ErrFileEmpty         = errors.New("file is empty")
	ErrNoInput           = errors.New("no input provided: please specify a file with -i or pipe data to stdin")
	ErrInvalidFilePath   = errors.New("invalid file path")
	ErrUnknownFormat     = errors.New("unknown format")
	ErrInvalidDocument   = errors.New("document is not a valid JSON value")
	ErrNumberOutOfRange  = errors.New("number cannot be represented in the output format")
)

// Classification errors, one per Reason
var (
	ErrUnsupportedValueKind = errors.New("unsupported value kind")
	ErrNonStringKey         = errors.New("object key is not a string")
	ErrNonFiniteNumber      = errors.New("number is not finite")
	ErrDepthExceeded        = errors.New("maximum nesting depth exceeded")
	ErrCyclicStructure      = errors.New("cyclic structure")
	ErrShapeMismatch        = errors.New("value does not match shape")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeShape      ErrorType = "shape"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewParsingError creates a new error related to decoding a document
func NewParsingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParsing, Message: message, Err: err}
}

// NewValidationError creates a new error for a document that failed classification
func NewValidationError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Err: err}
}

// NewShapeError creates a new error related to loading or compiling a shape
func NewShapeError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeShape, Message: message, Err: err}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// Reason names why a value was rejected.
type Reason string

const (
	ReasonUnsupportedValueKind  Reason = "UnsupportedValueKind"
	ReasonNonStringKey          Reason = "NonStringKey"
	ReasonNonFiniteNumber       Reason = "NonFiniteNumber"
	ReasonDepthExceeded         Reason = "DepthExceeded"
	ReasonCyclicStructure       Reason = "CyclicStructure"
	ReasonTypeMismatch          Reason = "TypeMismatch"
	ReasonMissingProperty       Reason = "MissingProperty"
	ReasonExcessProperty        Reason = "ExcessProperty"
	ReasonTupleLength           Reason = "TupleLength"
	ReasonFormatMismatch        Reason = "FormatMismatch"
	ReasonNoMatchingAlternative Reason = "NoMatchingAlternative"
)

// Code returns the reason as a snake_case code, e.g. unsupported_value_kind.
func (r Reason) Code() string {
	return strcase.ToSnake(string(r))
}

// Sentinel returns the package error matched by errors.Is for this reason.
func (r Reason) Sentinel() error {
	switch r {
	case ReasonUnsupportedValueKind:
		return ErrUnsupportedValueKind
	case ReasonNonStringKey:
		return ErrNonStringKey
	case ReasonNonFiniteNumber:
		return ErrNonFiniteNumber
	case ReasonDepthExceeded:
		return ErrDepthExceeded
	case ReasonCyclicStructure:
		return ErrCyclicStructure
	default:
		return ErrShapeMismatch
	}
}

// ValidationError reports a value rejected at Path.
type ValidationError struct {
	Path    string `json:"path" yaml:"path"`
	Reason  Reason `json:"reason" yaml:"reason"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("validation error at path '%s': %s", e.Path, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap returns the sentinel for the error's reason
func (e *ValidationError) Unwrap() error {
	return e.Reason.Sentinel()
}

// CyclicStructureError reports that traversal revisited a container already on
// the current path.
type CyclicStructureError struct {
	Path string
	Type string
}

func (e *CyclicStructureError) Error() string {
	return fmt.Sprintf("cyclic structure at path '%s': %s refers back to an enclosing container", e.Path, e.Type)
}

// Unwrap returns ErrCyclicStructure
func (e *CyclicStructureError) Unwrap() error {
	return ErrCyclicStructure
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Parsing error: %s", appErr.Message)
		case ErrorTypeValidation:
			return fmt.Sprintf("Validation error: %s", appErr.Message)
		case ErrorTypeShape:
			return fmt.Sprintf("Shape error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	var cycleErr *CyclicStructureError
	if errors.As(err, &cycleErr) {
		return fmt.Sprintf("Error: The input contains a cycle at %s. JSON values must be trees.", cycleErr.Path)
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Error: %s", validationErr.Error())
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a document."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleDocuments) {
		return "Error: Multiple documents found. Please provide a single document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrUnknownFormat) {
		return "Error: Unknown format. Use one of json, yaml, cbor, msgpack or protojson."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
