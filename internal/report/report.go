// Package report renders the outcome of checking a document.
package report

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/models"
	"gopkg.in/yaml.v3"
)

// Styles
const (
	StyleText = "text"
	StyleJSON = "json"
	StyleYAML = "yaml"
)

const stdinSource = "<stdin>"

// Issue is one reason a document was rejected
type Issue struct {
	Path    string `json:"path" yaml:"path"`
	Code    string `json:"code" yaml:"code"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Result is the outcome of checking one document
type Result struct {
	Source   string  `json:"source" yaml:"source"`
	Format   string  `json:"format" yaml:"format"`
	Valid    bool    `json:"valid" yaml:"valid"`
	RootKind string  `json:"root_kind,omitempty" yaml:"root_kind,omitempty"`
	Errors   []Issue `json:"errors" yaml:"errors"`
}

// NewResult builds a Result for doc from the errors found while checking it.
// root is only consulted when errs is empty.
func NewResult(doc models.Document, root models.Value, errs []error) Result {
	source := doc.Source
	if source == "" {
		source = stdinSource
	}

	r := Result{
		Source: source,
		Format: doc.Format,
		Valid:  len(errs) == 0,
		Errors: make([]Issue, 0, len(errs)),
	}
	if r.Valid && root.IsValid() {
		r.RootKind = root.Kind().String()
	}
	for _, err := range errs {
		r.Errors = append(r.Errors, issueFor(err))
	}
	return r
}

func issueFor(err error) Issue {
	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		return Issue{
			Path:    validationErr.Path,
			Code:    validationErr.Reason.Code(),
			Kind:    validationErr.Kind,
			Message: validationErr.Message,
		}
	}
	var cycleErr *errors.CyclicStructureError
	if stderrors.As(err, &cycleErr) {
		return Issue{
			Path:    cycleErr.Path,
			Code:    errors.ReasonCyclicStructure.Code(),
			Kind:    cycleErr.Type,
			Message: "value refers back to an enclosing container",
		}
	}
	return Issue{Path: "$", Code: "error", Message: err.Error()}
}

// Render writes r to w in the given style
func Render(w io.Writer, r Result, style string) error {
	var (
		data []byte
		err  error
	)
	switch style {
	case "", StyleText:
		data = renderText(r)
	case StyleJSON:
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	case StyleYAML:
		data, err = renderYAML(r)
	default:
		return errors.NewOutputError(fmt.Sprintf("unknown report style '%s'", style), nil)
	}
	if err != nil {
		return errors.NewOutputError("failed to render report", err)
	}

	if _, err := w.Write(data); err != nil {
		return errors.NewOutputError("failed to write report", err)
	}
	return nil
}

func renderYAML(r Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderText(r Result) []byte {
	var buf bytes.Buffer

	if r.Valid {
		buf.WriteString(fmt.Sprintf("%s: valid JSON value (%s)\n", r.Source, r.RootKind))
		return buf.Bytes()
	}

	noun := "issues"
	if len(r.Errors) == 1 {
		noun = "issue"
	}
	buf.WriteString(fmt.Sprintf("%s: not a valid JSON value (%d %s)\n", r.Source, len(r.Errors), noun))

	// Calculate column widths for alignment
	maxPathWidth := 0
	maxCodeWidth := 0
	for _, issue := range r.Errors {
		if len(issue.Path) > maxPathWidth {
			maxPathWidth = len(issue.Path)
		}
		if len(issue.Code) > maxCodeWidth {
			maxCodeWidth = len(issue.Code)
		}
	}

	for _, issue := range r.Errors {
		buf.WriteString(fmt.Sprintf("  %-*s  %-*s  %s\n",
			maxPathWidth, issue.Path,
			maxCodeWidth, issue.Code,
			issue.Message))
	}
	return buf.Bytes()
}
