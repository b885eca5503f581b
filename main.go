package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/mcncl/jsonlit/internal/config"
	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/formatter"
	"github.com/mcncl/jsonlit/internal/generator"
	"github.com/mcncl/jsonlit/internal/models"
	"github.com/mcncl/jsonlit/internal/parser"
	"github.com/mcncl/jsonlit/internal/scan"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string `help:"Path to config file. Defaults to the nearest .jsonlit.yml." short:"c" type:"path" env:"JSONLIT_CONFIG"`
	Package string `help:"Package name for generated code." short:"p" env:"JSONLIT_PACKAGE"`
	Prefix  string `help:"Prefix for generated anonymous type names."`
	Format  bool   `help:"Format the output code according to Go standards." short:"f" default:"true" negatable:""`
	Methods bool   `help:"Add Stringify, Parse, Read and Write methods to declared types."`
	Debug   bool   `help:"Enable debug logging." short:"d" env:"JSONLIT_DEBUG"`
	Version bool   `help:"Show version information." short:"v"`

	Gen  GenCmd  `cmd:"" default:"withargs" help:"Generate Go code from DSL text (default)."`
	Scan ScanCmd `cmd:"" help:"Generate code for the jsonlit comment blocks of a Go package."`
}

// GenCmd converts one DSL input.
type GenCmd struct {
	Input  string `help:"Path to input DSL file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output Go file. If not specified, writes to stdout." short:"o" type:"path"`
	Var    string `help:"Variable name for an anonymous literal." name:"var"`
}

// ScanCmd generates code for comment blocks.
type ScanCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Package directory to scan." type:"existingdir"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Log    *log.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	parser := kong.Must(&CLI,
		kong.Name("jsonlit"),
		kong.Description("Generate Go types and values from a JSON-like literal DSL"),
		kong.UsageOnError(),
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	if CLI.Version {
		fmt.Printf("jsonlit version %s\n", Version)
		return
	}

	app, err := newContext()
	if err == nil {
		err = kctx.Run(app)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonlit --help\n")
		os.Exit(1)
	}
}

// newContext loads the configuration and merges the command-line flags into it.
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.Overrides{
		Package:    CLI.Package,
		VarName:    CLI.Gen.Var,
		TypePrefix: CLI.Prefix,
		Format:     CLI.Format,
		Methods:    CLI.Methods,
		Debug:      CLI.Debug,
	})
	if err != nil {
		if configPath == "" {
			return nil, errors.NewConfigError("invalid command-line options", err)
		}
		return nil, errors.NewConfigError(fmt.Sprintf("failed to load '%s'", configPath), err)
	}
	return &Context{Config: cfg, Log: newLogger(cfg.Dev.Debug)}, nil
}

func newLogger(debug bool) *log.Logger {
	if debug {
		return log.New(os.Stderr, "jsonlit: ", 0)
	}
	return log.New(io.Discard, "", 0)
}

// Run executes the gen command
func (c *GenCmd) Run(app *Context) error {
	doc, err := parseInput(c.Input)
	if err != nil {
		return err
	}
	app.Log.Printf("parsed %s root", doc.Root.Kind)

	gen := generator.NewGeneratorWithConfig(app.Config).WithLogger(app.Log)
	unit, err := gen.Generate(doc)
	if err != nil {
		return err
	}
	code := gen.GenerateFile(app.Config.Package, unit)

	if app.Config.Formatting.Enabled {
		name := c.Output
		if name == "" {
			name = "jsonlit_gen.go"
		}
		code, err = formatter.NewFormatterWithConfig(app.Config).Format(name, code)
		if err != nil {
			return err
		}
	}

	return writeOutput(c.Output, code)
}

// Run executes the scan command
func (c *ScanCmd) Run(app *Context) error {
	written, err := scan.New(app.Config).WithLogger(app.Log).Run(context.Background(), c.Dir)
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "Generated Go code written to %s\n", path)
	}
	return err
}

// parseInput reads DSL text from file or stdin
func parseInput(input string) (*models.Document, error) {
	if input != "" {
		return parser.ParseFile(input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return parser.ParseString("<stdin>", string(data))
}

// writeOutput writes code to file or stdout
func writeOutput(output, code string) error {
	if output != "" {
		if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", output), err)
		}
		fmt.Fprintf(os.Stderr, "Generated Go code written to %s\n", output)
		return nil
	}

	if _, err := fmt.Println(strings.TrimSpace(code)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
