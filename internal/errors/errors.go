package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput            = errors.New("input is empty or contains only whitespace")
	ErrFileNotFound          = errors.New("file not found")
	ErrFileEmpty             = errors.New("file is empty")
	ErrNoInput               = errors.New("no input provided: please specify a file with -i or pipe DSL text to stdin")
	ErrInvalidFilePath       = errors.New("invalid file path")
	ErrUnbalanced            = errors.New("unbalanced delimiter")
	ErrUnexpectedToken       = errors.New("unexpected token")
	ErrMissingColon          = errors.New("expected ':' after field name")
	ErrExpectedIdent         = errors.New("expected identifier")
	ErrMalformedExpression   = errors.New("malformed expression")
	ErrEmptyArrayDeclaration = errors.New("array declaration needs an item type")
	ErrDuplicatePath         = errors.New("duplicate type path")
	ErrNotDeclaration        = errors.New("input is not a declaration")
	ErrNoDirectives          = errors.New("no jsonlit directives found")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeSyntax   ErrorType = "syntax"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeFormat   ErrorType = "format"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Position is a location in DSL source text.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	name := p.Filename
	if name == "" {
		name = "<input>"
	}
	if !p.IsValid() {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, p.Line, p.Column)
}

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Pos     Position
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	msg := e.Message
	if e.Pos.IsValid() {
		msg = fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
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
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewSyntaxError creates a new error for malformed DSL text at pos
func NewSyntaxError(pos Position, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSyntax,
		Message: message,
		Pos:     pos,
		Err:     err,
	}
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeGenerate,
		Message: message,
		Err:     err,
	}
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFormat,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeSyntax:
			if appErr.Pos.IsValid() {
				return fmt.Sprintf("Syntax error at %s: %s", appErr.Pos, appErr.Message)
			}
			return fmt.Sprintf("Syntax error: %s", appErr.Message)
		case ErrorTypeGenerate:
			if appErr.Err != nil {
				return fmt.Sprintf("Code generation error: %s: %v", appErr.Message, appErr.Err)
			}
			return fmt.Sprintf("Code generation error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Code formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide DSL text."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe DSL text to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
