// Package genkit provides configuration types for attrgen tools.
package genkit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the project-level configuration file attrgen looks for.
const ConfigFileName = "attrgen.toml"

// Config represents the project-level attrgen.toml configuration.
type Config struct {
	// Tools contains tool-specific configurations (annotations, output
	// suffix, etc.). Entries here override the tool's built-in metadata.
	Tools map[string]ToolConfig `toml:"tools"`

	// RulesDir is an optional directory of additional AI-assistant rules
	// (markdown with YAML frontmatter) exported by `attrgen rules`.
	RulesDir string `toml:"rules_dir"`
}

// ToolConfig defines configuration for a specific tool.
type ToolConfig struct {
	// OutputSuffix is the suffix for generated files (e.g., "_attrs.go").
	OutputSuffix string `toml:"output_suffix"`

	// Annotations defines the annotations supported by this tool.
	Annotations []AnnotationConfig `toml:"annotations"`
}

// AnnotationConfig defines a single annotation's metadata.
type AnnotationConfig struct {
	// Name is the annotation name (e.g., "attrs").
	Name string `toml:"name"`

	// Type is where the annotation can be applied: "type" or "field".
	Type string `toml:"type"`

	// Doc is the documentation for this annotation.
	Doc string `toml:"doc"`

	// Params defines parameter configuration.
	Params *AnnotationParams `toml:"params"`
}

// AnnotationParams defines annotation parameter configuration.
type AnnotationParams struct {
	// Type is the parameter type: "string", "number", "bool", "list", or "enum".
	// Can also be an array of types for multiple accepted types.
	Type any `toml:"type"`

	// Values is the list of allowed values for enum type.
	Values []string `toml:"values"`

	// Placeholder is the placeholder text for the parameter.
	Placeholder string `toml:"placeholder"`

	// MaxArgs is the maximum number of arguments allowed.
	MaxArgs int `toml:"maxArgs"`

	// Docs provides documentation for each enum value.
	Docs map[string]string `toml:"docs"`
}

// LoadConfig loads the attrgen.toml configuration from the given directory.
// It searches for attrgen.toml in the directory and its parents up to the root.
func LoadConfig(dir string) (*Config, error) {
	configPath, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return &Config{}, nil // No config found, return empty
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Resolve the rules directory relative to the config file location
	if cfg.RulesDir != "" && !filepath.IsAbs(cfg.RulesDir) {
		cfg.RulesDir = filepath.Join(filepath.Dir(path), cfg.RulesDir)
	}

	return &cfg, nil
}

// FindConfig searches for attrgen.toml starting from dir and going up to root.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", nil
		}
		dir = parent
	}
}

// ToVSCodeConfig converts the tool configuration to VSCode extension format.
func (tc *ToolConfig) ToVSCodeConfig() map[string]any {
	typeAnnotations := []string{}
	fieldAnnotations := []string{}
	annotations := make(map[string]any)

	for _, ann := range tc.Annotations {
		annConfig := map[string]any{
			"doc": ann.Doc,
		}

		if ann.Params != nil {
			if ann.Params.Type != nil {
				annConfig["paramType"] = ann.Params.Type
			} else if len(ann.Params.Values) > 0 {
				// If values are provided but no type, default to "enum"
				annConfig["paramType"] = "enum"
			}
			if len(ann.Params.Values) > 0 {
				annConfig["values"] = ann.Params.Values
			}
			if ann.Params.Placeholder != "" {
				annConfig["placeholder"] = ann.Params.Placeholder
			}
			if ann.Params.MaxArgs > 0 {
				annConfig["maxArgs"] = ann.Params.MaxArgs
			}
			if len(ann.Params.Docs) > 0 {
				annConfig["valueDocs"] = ann.Params.Docs
			}
		}

		annotations[ann.Name] = annConfig

		switch ann.Type {
		case "type":
			typeAnnotations = append(typeAnnotations, ann.Name)
		case "field":
			fieldAnnotations = append(fieldAnnotations, ann.Name)
		}
	}

	return map[string]any{
		"typeAnnotations":  typeAnnotations,
		"fieldAnnotations": fieldAnnotations,
		"outputSuffix":     tc.OutputSuffix,
		"annotations":      annotations,
	}
}

// GetToolConfig extracts ToolConfig from a Tool.
// If the tool implements ConfigurableTool, returns its Config().
// Otherwise returns an empty ToolConfig.
func GetToolConfig(t Tool) ToolConfig {
	if ct, ok := t.(ConfigurableTool); ok {
		return ct.Config()
	}
	return ToolConfig{}
}

// MergeToolConfigs merges tool configurations from multiple sources.
// Later sources override earlier ones for the same tool name.
func MergeToolConfigs(configs ...map[string]ToolConfig) map[string]ToolConfig {
	result := make(map[string]ToolConfig)
	for _, cfg := range configs {
		for name, tc := range cfg {
			result[name] = tc
		}
	}
	return result
}

// CollectToolConfigs collects configurations from a list of tools.
func CollectToolConfigs(tools []Tool) map[string]ToolConfig {
	result := make(map[string]ToolConfig)
	for _, t := range tools {
		if cfg := GetToolConfig(t); len(cfg.Annotations) > 0 || cfg.OutputSuffix != "" {
			result[t.Name()] = cfg
		}
	}
	return result
}
