package main

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mcncl/isjson/internal/analyzer"
	"github.com/mcncl/isjson/internal/classifier"
	"github.com/mcncl/isjson/internal/codec"
	"github.com/mcncl/isjson/internal/config"
	"github.com/mcncl/isjson/internal/errors"
	"github.com/mcncl/isjson/internal/logging"
	"github.com/mcncl/isjson/internal/models"
	"github.com/mcncl/isjson/internal/parser"
	"github.com/mcncl/isjson/internal/report"
	"github.com/mcncl/isjson/internal/shape"
)

// CLI defines the command-line interface
var CLI struct {
	Input          string `help:"Path to input document. If not specified, reads from stdin." short:"i" type:"path"`
	Output         string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Format         string `help:"Input format: auto, json, yaml, cbor, msgpack or protojson." short:"F"`
	Report         string `help:"Report style: text, json or yaml." short:"r"`
	Shape          string `help:"Path to a shape file the document must also match." short:"s" type:"path"`
	Emit           string `help:"Re-encode a valid document in this format instead of reporting." short:"e"`
	Infer          bool   `help:"Print a shape inferred from a valid document instead of reporting." short:"S"`
	Config         string `help:"Path to config file. Defaults to the nearest .isjson.yml." short:"c" type:"path"`
	AllowNonFinite bool   `help:"Accept NaN and infinite numbers." name:"allow-non-finite"`
	MaxDepth       int    `help:"Reject documents nested deeper than this." name:"max-depth"`
	AllErrors      bool   `help:"Report every violation instead of the first." short:"a"`
	Debug          bool   `help:"Enable debug logging." short:"d"`
	Version        bool   `help:"Show version information." short:"v"`
	Interactive    bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger logging.Logger
}

// Version information
const (
	Version = "0.1.0"
)

// Exit codes
const (
	exitValid   = 0
	exitError   = 1
	exitInvalid = 2
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("isjson"),
		kong.Description("Check whether a document is a JSON value"),
		kong.UsageOnError(),
	)

	// No arguments means interactive mode
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// Usage is already shown by kong.UsageOnError()
		os.Exit(exitError)
	}

	if CLI.Version {
		fmt.Printf("isjson version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(exitError)
	}

	valid, err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: isjson --help\n")
		os.Exit(exitError)
	}
	if !valid {
		os.Exit(exitInvalid)
	}
}

// newContext loads configuration with CLI precedence and builds the logger
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.Overrides{
		Format:         CLI.Format,
		Report:         CLI.Report,
		Shape:          CLI.Shape,
		Emit:           CLI.Emit,
		AllowNonFinite: CLI.AllowNonFinite,
		MaxDepth:       CLI.MaxDepth,
		Debug:          CLI.Debug,
	})
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		logger.Debug("loaded config", logging.Fields{"path": configPath})
	}

	return &Context{Debug: CLI.Debug, Config: cfg, Logger: logger}, nil
}

// run executes the main program logic and reports whether the document is
// valid
func run(ctx *Context) (bool, error) {
	cfg := ctx.Config
	logger := ctx.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}

	// 1. Decode the document
	format, err := codec.ParseFormat(cfg.Input.Format)
	if err != nil {
		return false, errors.NewConfigError(fmt.Sprintf("invalid input format '%s'", cfg.Input.Format), err)
	}
	p := parser.NewParserWithOptions(codec.Options{Deterministic: cfg.Emit.Deterministic})
	doc, err := parseInput(p, format)
	if err != nil {
		return false, err
	}
	logger.Debug("parsed document", logging.Fields{"format": doc.Format, "source": doc.Source})

	// 2. Classify
	opts := cfg.ClassifierOptions()
	cls := classifier.NewClassifierWithOptions(opts)
	errs := classify(cls, doc.Root)
	logger.Debug("classified document", logging.Fields{"violations": len(errs)})

	var value models.Value
	if len(errs) == 0 {
		value, err = cls.Convert(doc.Root)
		if err != nil {
			return false, errors.NewValidationError("failed to convert document", err)
		}
	}

	// 3. Match against the shape, if any
	if len(errs) == 0 && cfg.Shape != "" {
		s, err := shape.ParseFile(cfg.Shape)
		if err != nil {
			return false, err
		}
		errs = s.Validate(value)
		if !CLI.AllErrors && len(errs) > 1 {
			errs = errs[:1]
		}
		logger.Debug("matched shape", logging.Fields{"shape": cfg.Shape, "mismatches": len(errs)})
	}

	valid := len(errs) == 0
	if !valid {
		logger.Info("document rejected", logging.Fields{"source": doc.Source, "first": errs[0].Error()})
	}

	// 4. Infer, emit or report
	if valid && CLI.Infer {
		data, err := analyzer.NewAnalyzer().Analyze(value).YAML()
		if err != nil {
			return false, err
		}
		return true, writeOutput(data)
	}
	if valid && cfg.Emit.Format != "" {
		data, err := emit(value, cfg.Emit)
		if err != nil {
			return false, err
		}
		return true, writeOutput(data)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, report.NewResult(doc, value, errs), cfg.Report.Format); err != nil {
		return false, err
	}
	return valid, writeOutput(buf.Bytes())
}

// classify returns the first violation, or all of them with --all-errors
func classify(cls *classifier.Classifier, root any) []error {
	if CLI.AllErrors {
		return cls.CheckAll(root)
	}
	if err := cls.Check(root); err != nil {
		return []error{err}
	}
	return nil
}

// emit re-encodes a valid value
func emit(value models.Value, cfg config.EmitConfig) ([]byte, error) {
	format, err := codec.ParseFormat(cfg.Format)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid emit format '%s'", cfg.Format), err)
	}
	c, err := codec.For(format, codec.Options{Deterministic: cfg.Deterministic})
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid emit format '%s'", cfg.Format), err)
	}
	data, err := c.Encode(value)
	if stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeOutput}) {
		return nil, err
	}
	if err != nil {
		return nil, errors.NewOutputError(fmt.Sprintf("failed to encode %s", format), err)
	}
	return data, nil
}

// parseInput reads a document from file or stdin
func parseInput(p *parser.Parser, format codec.Format) (models.Document, error) {
	if CLI.Input != "" {
		return p.ParseFile(CLI.Input, format)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput(p, format)
		}
		return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(data) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return p.ParseString(string(data), format)
}

// writeOutput writes data to file or stdout
func writeOutput(data []byte) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, data, 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		return nil
	}

	if _, err := os.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste a document and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(p *parser.Parser, format codec.Format) (models.Document, error) {
	fmt.Fprintln(os.Stderr, "isjson Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your document below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return models.Document{}, errors.NewInputError("error reading input", err)
	}
	if len(data) == 0 {
		return models.Document{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nChecking document...")
	return p.ParseString(string(data), format)
}
