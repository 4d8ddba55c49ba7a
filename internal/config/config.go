package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// DefaultPackage is the package name of generated code when none is configured.
const DefaultPackage = "main"

// Config represents the complete configuration for kv2
type Config struct {
	Package    string           `yaml:"package"`
	Parser     ParserConfig     `yaml:"parser"`
	Decoder    DecoderConfig    `yaml:"decoder"`
	Formatting FormattingConfig `yaml:"formatting"`
	Types      TypesConfig      `yaml:"types"`
	Naming     NamingConfig     `yaml:"naming"`
	Tags       TagsConfig       `yaml:"tags"`
	Arrays     ArraysConfig     `yaml:"arrays"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

// ParserConfig controls KV2 parsing
type ParserConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// DecoderConfig controls decoding into Go values
type DecoderConfig struct {
	DisallowUnknownKeys bool `yaml:"disallow_unknown_keys"`
}

// FormattingConfig controls code formatting options
type FormattingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TypesConfig controls type inference and mapping for generated code
type TypesConfig struct {
	UUIDElementIDs bool          `yaml:"uuid_element_ids"`
	FixedVectors   bool          `yaml:"fixed_vectors"`
	Mappings       []TypeMapping `yaml:"mappings"`
}

// TypeMapping defines a pattern-based type mapping
type TypeMapping struct {
	Pattern string `yaml:"pattern"`
	Type    string `yaml:"type"`
	Import  string `yaml:"import,omitempty"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// NamingConfig controls field and struct naming
type NamingConfig struct {
	PascalCaseFields bool              `yaml:"pascal_case_fields"`
	FieldMappings    map[string]string `yaml:"field_mappings"`
	ClassMappings    map[string]string `yaml:"class_mappings"`
}

// TagsConfig controls kv2 tag generation
type TagsConfig struct {
	SkipFields []string `yaml:"skip_fields"`
}

// ArraysConfig controls naming of structs inferred from array elements
type ArraysConfig struct {
	SingularizeNames bool `yaml:"singularize_names"`
}

// OutputConfig controls output generation options
type OutputConfig struct {
	Pretty     bool   `yaml:"pretty"`
	FileHeader string `yaml:"file_header"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Package: DefaultPackage,
		Parser: ParserConfig{
			MaxDepth: 256,
		},
		Decoder: DecoderConfig{
			DisallowUnknownKeys: false,
		},
		Formatting: FormattingConfig{
			Enabled: true,
		},
		Types: TypesConfig{
			UUIDElementIDs: true,
			FixedVectors:   true,
			Mappings:       []TypeMapping{},
		},
		Naming: NamingConfig{
			PascalCaseFields: true,
			FieldMappings:    make(map[string]string),
			ClassMappings:    make(map[string]string),
		},
		Arrays: ArraysConfig{
			SingularizeNames: true,
		},
		Output: OutputConfig{
			Pretty: true,
		},
		Log: LogConfig{
			Level: "warning",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Parser.MaxDepth < 0 {
		return nil, fmt.Errorf("invalid parser.max_depth %d: must not be negative", cfg.Parser.MaxDepth)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".kv2.yml", ".kv2.yaml", "kv2.yml", "kv2.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Types.Mappings {
		mapping := &c.Types.Mappings[i]
		regex, err := regexp.Compile(mapping.Pattern)
		if err != nil {
			return fmt.Errorf("invalid type mapping pattern '%s': %w", mapping.Pattern, err)
		}
		mapping.regex = regex
	}
	return nil
}

// MatchesField checks if this type mapping matches the given KV2 key
func (tm *TypeMapping) MatchesField(key string) bool {
	if tm.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(tm.Pattern)
		if err != nil {
			return false
		}
		tm.regex = regex
	}
	return tm.regex.MatchString(key)
}

// GetFieldName returns the Go field name for a KV2 key, applying naming rules
func (c *Config) GetFieldName(key string) string {
	if mapped, exists := c.Naming.FieldMappings[key]; exists {
		return mapped
	}
	if c.Naming.PascalCaseFields {
		return upperInitialisms(strcase.ToCamel(key))
	}
	return key
}

// commonInitialisms are spelled in upper case inside Go names.
var commonInitialisms = map[string]bool{
	"API": true, "ASCII": true, "CPU": true, "CSS": true, "DNS": true,
	"GUID": true, "HTML": true, "HTTP": true, "HTTPS": true, "ID": true,
	"IP": true, "JSON": true, "SQL": true, "UI": true, "UID": true,
	"URI": true, "URL": true, "UTF8": true, "UUID": true, "XML": true,
}

// upperInitialisms rewrites the words of a PascalCase name that are common
// initialisms, so "EntityId" becomes "EntityID". A word starts at each
// upper case letter.
func upperInitialisms(name string) string {
	b := []byte(name)
	start := 0
	for i := 1; i <= len(b); i++ {
		if i < len(b) && !isUpper(b[i]) {
			continue
		}
		if word := bytes.ToUpper(b[start:i]); commonInitialisms[string(word)] {
			copy(b[start:i], word)
		}
		start = i
	}
	return string(b)
}

func isUpper(c byte) bool {
	return 'A' <= c && c <= 'Z'
}

// GetStructName returns the Go type name for a KV2 class name
func (c *Config) GetStructName(className string) string {
	if mapped, exists := c.Naming.ClassMappings[className]; exists {
		return mapped
	}
	return strcase.ToCamel(className)
}

// FindTypeMapping finds the first type mapping that matches the KV2 key
func (c *Config) FindTypeMapping(key string) (TypeMapping, bool) {
	for i := range c.Types.Mappings {
		if c.Types.Mappings[i].MatchesField(key) {
			return c.Types.Mappings[i], true
		}
	}
	return TypeMapping{}, false
}

// ShouldSkipField checks if a KV2 key should be left out of generated structs
func (c *Config) ShouldSkipField(key string) bool {
	return slices.Contains(c.Tags.SkipFields, key)
}

// CLIOverrides holds command-line values that take precedence over the config file.
// Zero values mean "not set".
type CLIOverrides struct {
	Package  string
	MaxDepth int
	LogLevel string
	Debug    bool
	NoFormat bool
	Compact  bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	// Apply CLI overrides only if they're not the default values
	// This allows config file values to be used when CLI args are defaults
	if cli.Package != "" && cli.Package != DefaultPackage {
		cfg.Package = cli.Package
	}
	if cli.MaxDepth > 0 {
		cfg.Parser.MaxDepth = cli.MaxDepth
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.Debug {
		cfg.Log.Level = "debug"
	}
	if cli.NoFormat {
		cfg.Formatting.Enabled = false
	}
	if cli.Compact {
		cfg.Output.Pretty = false
	}

	return cfg, nil
}
