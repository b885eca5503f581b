package config

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Field naming styles
const (
	NamingPreserve = "preserve"
	NamingCamel    = "camel"
)

// DefaultRuntimeImport is the package generated code calls for slices and
// the optional serialization methods.
const DefaultRuntimeImport = "github.com/mcncl/jsonlit/native"

// Config represents the complete configuration for jsonlit
type Config struct {
	Package    string           `yaml:"package"`
	VarName    string           `yaml:"var_name"`
	TypePrefix string           `yaml:"type_prefix"`
	Formatting FormattingConfig `yaml:"formatting"`
	Naming     NamingConfig     `yaml:"naming"`
	Types      TypesConfig      `yaml:"types"`
	Output     OutputConfig     `yaml:"output"`
	Dev        DevConfig        `yaml:"dev"`
}

// FormattingConfig controls code formatting options
type FormattingConfig struct {
	Enabled    bool `yaml:"enabled"`
	FixImports bool `yaml:"fix_imports"`
}

// NamingConfig controls Go field naming
type NamingConfig struct {
	Style         string            `yaml:"style"`
	FieldMappings map[string]string `yaml:"field_mappings"`
}

// TypesConfig controls how field type expressions are read in declarations
type TypesConfig struct {
	// Aliases rewrite a whole type expression, e.g. i32 -> int32.
	Aliases map[string]string `yaml:"aliases"`
	// Initializers override the zero-value expression for a type,
	// e.g. time.Time -> time.Time{}.
	Initializers map[string]string `yaml:"initializers"`
}

// OutputConfig controls output generation options
type OutputConfig struct {
	FileHeader    string `yaml:"file_header"`
	Methods       bool   `yaml:"methods"`
	RuntimeImport string `yaml:"runtime_import"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Package: "main",
		VarName: "Value",
		Formatting: FormattingConfig{
			Enabled:    true,
			FixImports: false,
		},
		Naming: NamingConfig{
			Style:         NamingPreserve,
			FieldMappings: make(map[string]string),
		},
		Types: TypesConfig{
			Aliases:      make(map[string]string),
			Initializers: make(map[string]string),
		},
		Output: OutputConfig{
			RuntimeImport: DefaultRuntimeImport,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFrom(currentDir)
}

func findConfigFrom(dir string) string {
	configNames := []string{".jsonlit.yml", ".jsonlit.yaml", "jsonlit.yml", "jsonlit.yaml"}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break
		}
		dir = parentDir
	}

	return ""
}

// Validate checks values that would otherwise produce uncompilable output
func (c *Config) Validate() error {
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("package %q is not a valid Go identifier", c.Package)
	}
	if !token.IsIdentifier(c.VarName) {
		return fmt.Errorf("var_name %q is not a valid Go identifier", c.VarName)
	}
	if c.TypePrefix != "" && !token.IsIdentifier(c.TypePrefix) {
		return fmt.Errorf("type_prefix %q is not a valid Go identifier", c.TypePrefix)
	}
	switch c.Naming.Style {
	case NamingPreserve, NamingCamel:
	case "":
		c.Naming.Style = NamingPreserve
	default:
		return fmt.Errorf("unknown naming style %q (want %q or %q)", c.Naming.Style, NamingPreserve, NamingCamel)
	}
	for key, name := range c.Naming.FieldMappings {
		if !token.IsExported(name) || !token.IsIdentifier(name) {
			return fmt.Errorf("field mapping %q -> %q is not an exported Go identifier", key, name)
		}
	}
	if c.Output.RuntimeImport == "" {
		c.Output.RuntimeImport = DefaultRuntimeImport
	}
	return nil
}

// splitMarker separates the reserved-word marker (one trailing underscore)
// from a DSL field name.
func splitMarker(key string) (stem, marker string) {
	if len(key) > 1 && strings.HasSuffix(key, "_") {
		return key[:len(key)-1], "_"
	}
	return key, ""
}

// JSONKey returns the wire name of a DSL field: the identifier without its
// trailing marker, so `type_` travels as "type".
func (c *Config) JSONKey(key string) string {
	stem, _ := splitMarker(key)
	return stem
}

// GetFieldName returns the exported Go field name for a DSL field. The
// trailing marker is kept so `type_` becomes `Type_`.
func (c *Config) GetFieldName(key string) string {
	if mapped, exists := c.Naming.FieldMappings[key]; exists {
		return mapped
	}

	stem, marker := splitMarker(key)
	if c.Naming.Style == NamingCamel {
		if camel := strcase.ToCamel(stem); camel != "" {
			stem = camel
		}
	} else {
		stem = upperFirst(stem)
	}

	name := stem + marker
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsUpper(r) {
		name = "X" + name
	}
	return name
}

// ResolveType normalizes a type expression: the string spellings `str`,
// `&str` and `String` become `string`, then configured aliases apply.
func (c *Config) ResolveType(expr string) string {
	t := strings.TrimSpace(expr)
	switch t {
	case "str", "&str", "String":
		t = "string"
	}
	if alias, ok := c.Types.Aliases[t]; ok {
		return alias
	}
	return t
}

// Initializer returns a configured zero-value expression for typ.
func (c *Config) Initializer(typ string) (string, bool) {
	init, ok := c.Types.Initializers[typ]
	return init, ok
}

// Overrides carries command-line values. Empty strings mean "not set".
type Overrides struct {
	Package    string
	VarName    string
	TypePrefix string
	Format     bool
	Methods    bool
	Debug      bool
}

// LoadConfigWithCLI loads config with CLI argument precedence. String
// flags win when set. Format can only be switched off from the CLI;
// Methods and Debug can only be switched on.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if o.Package != "" {
		cfg.Package = o.Package
	}
	if o.VarName != "" {
		cfg.VarName = o.VarName
	}
	if o.TypePrefix != "" {
		cfg.TypePrefix = o.TypePrefix
	}
	cfg.Formatting.Enabled = cfg.Formatting.Enabled && o.Format
	cfg.Output.Methods = cfg.Output.Methods || o.Methods
	cfg.Dev.Debug = cfg.Dev.Debug || o.Debug

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
