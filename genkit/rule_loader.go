package genkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleFrontmatter represents the YAML frontmatter of a rule file.
type RuleFrontmatter struct {
	Description string   `yaml:"description"`
	Globs       []string `yaml:"globs"`
	AlwaysApply bool     `yaml:"alwaysApply"`
}

// LoadRulesFromDir loads all rule files from a directory.
// Rule files must be .md files with YAML frontmatter. A missing directory is
// not an error: projects without custom rules simply get none.
func LoadRulesFromDir(dir string) ([]Rule, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var rules []Rule
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		filePath := filepath.Join(dir, entry.Name())
		rule, err := LoadRuleFromFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("load rule %s: %w", filePath, err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// LoadRuleFromFile loads a single rule from a markdown file with YAML frontmatter.
// The rule name is the filename without extension.
func LoadRuleFromFile(path string) (Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rule{}, fmt.Errorf("read file: %w", err)
	}

	frontmatter, content, err := splitFrontmatter(string(data))
	if err != nil {
		return Rule{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	return Rule{
		Name:        strings.TrimSuffix(filepath.Base(path), ".md"),
		Description: frontmatter.Description,
		Globs:       frontmatter.Globs,
		AlwaysApply: frontmatter.AlwaysApply,
		Content:     strings.TrimSpace(content),
	}, nil
}

// splitFrontmatter separates a "---" delimited YAML frontmatter block from
// the markdown body. Files without frontmatter are returned whole.
func splitFrontmatter(data string) (RuleFrontmatter, string, error) {
	var fm RuleFrontmatter

	rest, found := strings.CutPrefix(data, "---\n")
	if !found {
		return fm, data, nil
	}

	yamlPart, body, found := strings.Cut(rest, "\n---")
	if !found {
		// Unterminated frontmatter, treat the whole file as content
		return fm, data, nil
	}

	if err := yaml.Unmarshal([]byte(yamlPart), &fm); err != nil {
		return fm, "", fmt.Errorf("parse yaml: %w", err)
	}

	// Drop the remainder of the closing delimiter line
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = ""
	}

	return fm, body, nil
}
