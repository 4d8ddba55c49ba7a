package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_test_*.yml")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "main", cfg.Package)
	assert.Equal(t, 256, cfg.Parser.MaxDepth)
	assert.False(t, cfg.Decoder.DisallowUnknownKeys)
	assert.True(t, cfg.Formatting.Enabled)
	assert.True(t, cfg.Types.UUIDElementIDs)
	assert.True(t, cfg.Types.FixedVectors)
	assert.True(t, cfg.Naming.PascalCaseFields)
	assert.True(t, cfg.Arrays.SingularizeNames)
	assert.True(t, cfg.Output.Pretty)
	assert.Equal(t, "warning", cfg.Log.Level)
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
package: "dmx"
parser:
  max_depth: 64
decoder:
  disallow_unknown_keys: true
formatting:
  enabled: false
types:
  uuid_element_ids: false
  fixed_vectors: false
  mappings:
    - pattern: "^color$"
      type: "string"
      comment: "RGBA as text"
naming:
  pascal_case_fields: false
  field_mappings:
    "max constraint passes": "MaxPasses"
  class_mappings:
    "DmElement": "Element"
tags:
  skip_fields: ["editorType"]
output:
  pretty: false
  file_header: "Code generated by kv2 gen. DO NOT EDIT."
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "dmx", cfg.Package)
	assert.Equal(t, 64, cfg.Parser.MaxDepth)
	assert.True(t, cfg.Decoder.DisallowUnknownKeys)
	assert.False(t, cfg.Formatting.Enabled)
	assert.False(t, cfg.Types.UUIDElementIDs)
	assert.False(t, cfg.Types.FixedVectors)
	assert.False(t, cfg.Naming.PascalCaseFields)
	assert.Equal(t, "MaxPasses", cfg.Naming.FieldMappings["max constraint passes"])
	assert.Equal(t, "Element", cfg.Naming.ClassMappings["DmElement"])
	assert.Equal(t, []string{"editorType"}, cfg.Tags.SkipFields)
	assert.False(t, cfg.Output.Pretty)
	assert.Equal(t, "Code generated by kv2 gen. DO NOT EDIT.", cfg.Output.FileHeader)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Len(t, cfg.Types.Mappings, 1)
	mapping := cfg.Types.Mappings[0]
	assert.Equal(t, "^color$", mapping.Pattern)
	assert.Equal(t, "string", mapping.Type)
	assert.Equal(t, "RGBA as text", mapping.Comment)
	assert.True(t, mapping.MatchesField("color"))
}

func TestConfig_LoadKeepsDefaultsForMissingSections(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `package: "dmx"`))
	require.NoError(t, err)

	assert.Equal(t, "dmx", cfg.Package)
	assert.Equal(t, 256, cfg.Parser.MaxDepth)
	assert.True(t, cfg.Types.UUIDElementIDs)
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, `
package: "models"
invalid_yaml: [unclosed array
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_LoadInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		contains string
	}{
		{
			name:     "negative depth",
			yaml:     "parser:\n  max_depth: -1\n",
			contains: "invalid parser.max_depth -1",
		},
		{
			name:     "bad pattern",
			yaml:     "types:\n  mappings:\n    - pattern: \"[oops\"\n      type: string\n",
			contains: "invalid type mapping pattern '[oops'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	configPath := filepath.Join(tmpDir, "project", ".kv2.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`package: "found"`), 0o644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	require.NoError(t, os.Chdir(nestedDir))

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), `package: "found"`)
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir := t.TempDir()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	require.NoError(t, os.Chdir(tmpDir))

	assert.Empty(t, FindConfigFile())
}

func TestTypeMapping_MatchesPattern(t *testing.T) {
	mapping := TypeMapping{
		Pattern: "^bone_.*",
		Type:    "int32",
	}

	assert.True(t, mapping.MatchesField("bone_weight"))
	assert.True(t, mapping.MatchesField("bone_index"))
	assert.False(t, mapping.MatchesField("weight"))
}

func TestTypeMapping_InvalidPattern(t *testing.T) {
	mapping := TypeMapping{
		Pattern: "[invalid regex",
		Type:    "int64",
	}

	// Should not panic and should return false for invalid regex
	assert.False(t, mapping.MatchesField("user_id"))
}

func TestConfig_GetFieldName(t *testing.T) {
	cfg := &Config{
		Naming: NamingConfig{
			PascalCaseFields: true,
			FieldMappings: map[string]string{
				"max constraint passes": "MaxPasses",
				"id":                    "ID",
			},
		},
	}

	// Custom mappings take precedence
	assert.Equal(t, "MaxPasses", cfg.GetFieldName("max constraint passes"))
	assert.Equal(t, "ID", cfg.GetFieldName("id"))

	// PascalCase conversion for unmapped keys
	assert.Equal(t, "ControlValues", cfg.GetFieldName("controlValues"))
	assert.Equal(t, "CurrentTime", cfg.GetFieldName("current time"))
}

func TestConfig_GetFieldNameInitialisms(t *testing.T) {
	cfg := NewConfig()

	tests := []struct {
		key      string
		expected string
	}{
		{"id", "ID"},
		{"entity_id", "EntityID"},
		{"parentId", "ParentID"},
		{"uuid", "UUID"},
		{"source url", "SourceURL"},
		{"utf8", "UTF8"},
		{"identity", "Identity"},
		{"idle", "Idle"},
		{"ids", "Ids"},
		{"lod", "Lod"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.GetFieldName(tt.key))
		})
	}

	cfg.Naming.FieldMappings["id"] = "Id"
	assert.Equal(t, "Id", cfg.GetFieldName("id"))
}

func TestConfig_GetFieldNameNoPascalCase(t *testing.T) {
	cfg := &Config{
		Naming: NamingConfig{
			PascalCaseFields: false,
			FieldMappings:    make(map[string]string),
		},
	}

	assert.Equal(t, "controlValues", cfg.GetFieldName("controlValues"))
}

func TestConfig_GetStructName(t *testing.T) {
	cfg := NewConfig()
	cfg.Naming.ClassMappings["DmElement"] = "Element"

	assert.Equal(t, "Element", cfg.GetStructName("DmElement"))
	assert.Equal(t, "DmeModel", cfg.GetStructName("DmeModel"))
}

func TestConfig_FindTypeMapping(t *testing.T) {
	cfg := &Config{
		Types: TypesConfig{
			Mappings: []TypeMapping{
				{Pattern: "^color$", Type: "string", Comment: "RGBA"},
				{Pattern: "time$", Type: "time.Duration", Import: "time"},
			},
		},
	}

	mapping, found := cfg.FindTypeMapping("color")
	assert.True(t, found)
	assert.Equal(t, "string", mapping.Type)
	assert.Equal(t, "RGBA", mapping.Comment)

	mapping, found = cfg.FindTypeMapping("current time")
	assert.True(t, found)
	assert.Equal(t, "time.Duration", mapping.Type)
	assert.Equal(t, "time", mapping.Import)

	_, found = cfg.FindTypeMapping("name")
	assert.False(t, found)
}

func TestConfig_ShouldSkipField(t *testing.T) {
	cfg := NewConfig()
	cfg.Tags.SkipFields = []string{"editorType"}

	assert.True(t, cfg.ShouldSkipField("editorType"))
	assert.False(t, cfg.ShouldSkipField("name"))
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	path := writeConfig(t, `
package: "models"
parser:
  max_depth: 32
formatting:
  enabled: true
log:
  level: info
`)

	cfg, err := LoadConfigWithCLI(path, CLIOverrides{
		Package:  "dmx",
		MaxDepth: 8,
		Debug:    true,
		NoFormat: true,
		Compact:  true,
	})
	require.NoError(t, err)

	// CLI > config file > defaults
	assert.Equal(t, "dmx", cfg.Package)
	assert.Equal(t, 8, cfg.Parser.MaxDepth)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Formatting.Enabled)
	assert.False(t, cfg.Output.Pretty)
}

func TestLoadConfigWithPrecedence_NoOverrides(t *testing.T) {
	path := writeConfig(t, `
package: "models"
formatting:
  enabled: false
log:
  level: info
`)

	cfg, err := LoadConfigWithCLI(path, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "models", cfg.Package)
	assert.False(t, cfg.Formatting.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 256, cfg.Parser.MaxDepth) // Default value
}

func TestLoadConfigWithCLI_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", CLIOverrides{LogLevel: "error"})
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Package)
	assert.Equal(t, "error", cfg.Log.Level)

	_, err = LoadConfigWithCLI("/non/existent/.kv2.yml", CLIOverrides{})
	assert.Error(t, err)
}
