package formatter

import (
	"go/format"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/mcncl/jsonlit/internal/config"
	"github.com/mcncl/jsonlit/internal/errors"
)

// Formatter is responsible for formatting generated Go code according to standard conventions
type Formatter struct {
	fixImports bool
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// NewFormatterWithConfig creates a Formatter that follows the formatting section of cfg
func NewFormatterWithConfig(cfg *config.Config) *Formatter {
	return &Formatter{fixImports: cfg.Formatting.FixImports}
}

// Format takes Go code as a string and returns properly formatted Go code.
// filename is only used in error messages and to resolve imports.
func (f *Formatter) Format(filename, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := format.Source([]byte(code))
	if err != nil {
		return "", errors.NewFormatError("failed to parse generated code", err)
	}

	// Group imports standard library first; with fixImports also add the
	// ones a user expression refers to and drop unused ones.
	opts := &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: !f.fixImports,
	}
	result, err := imports.Process(filename, formatted, opts)
	if err != nil {
		return "", errors.NewFormatError("failed to organize imports", err)
	}
	return string(result), nil
}
