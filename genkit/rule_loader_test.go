package genkit

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRuleFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func TestLoadRulesFromDir(t *testing.T) {
	tmpDir := t.TempDir()

	writeRuleFile(t, tmpDir, "attrs-style.md", `---
description: Attribute accessor conventions
globs:
  - "**/*.go"
  - "**/attrgen.toml"
alwaysApply: false
---

# Attribute Conventions

Use generated accessors instead of touching Record directly.
`)
	writeRuleFile(t, tmpDir, "project.md", `---
description: Project-wide guidance
globs:
  - "**/*.md"
alwaysApply: true
---

# Project

Always applied.
`)
	// Non-markdown files are skipped
	writeRuleFile(t, tmpDir, "notes.txt", "ignored")

	rules, err := LoadRulesFromDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadRulesFromDir error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("LoadRulesFromDir returned %d rules, want 2", len(rules))
	}

	ruleMap := make(map[string]Rule)
	for _, r := range rules {
		ruleMap[r.Name] = r
	}

	r1, ok := ruleMap["attrs-style"]
	if !ok {
		t.Fatal("missing attrs-style rule")
	}
	if r1.Description != "Attribute accessor conventions" {
		t.Errorf("Description = %q", r1.Description)
	}
	if len(r1.Globs) != 2 || r1.Globs[1] != "**/attrgen.toml" {
		t.Errorf("Globs = %v", r1.Globs)
	}
	if r1.AlwaysApply {
		t.Error("AlwaysApply = true, want false")
	}
	if r1.Content != "# Attribute Conventions\n\nUse generated accessors instead of touching Record directly." {
		t.Errorf("Content = %q", r1.Content)
	}

	r2, ok := ruleMap["project"]
	if !ok {
		t.Fatal("missing project rule")
	}
	if !r2.AlwaysApply {
		t.Error("AlwaysApply = false, want true")
	}
}

func TestLoadRulesFromDir_NonExistent(t *testing.T) {
	rules, err := LoadRulesFromDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Errorf("LoadRulesFromDir error for missing dir: %v", err)
	}
	if rules != nil {
		t.Errorf("rules = %v, want nil", rules)
	}
}

func TestLoadRulesFromDir_Empty(t *testing.T) {
	rules, err := LoadRulesFromDir(t.TempDir())
	if err != nil {
		t.Errorf("LoadRulesFromDir error: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("got %d rules, want 0", len(rules))
	}
}

func TestLoadRuleFromFile_NoFrontmatter(t *testing.T) {
	path := writeRuleFile(t, t.TempDir(), "simple.md", `# Simple Rule

No frontmatter here.
`)

	rule, err := LoadRuleFromFile(path)
	if err != nil {
		t.Fatalf("LoadRuleFromFile error: %v", err)
	}
	if rule.Name != "simple" {
		t.Errorf("Name = %q, want %q", rule.Name, "simple")
	}
	if rule.Description != "" {
		t.Errorf("Description = %q, want empty", rule.Description)
	}
	if rule.Content != "# Simple Rule\n\nNo frontmatter here." {
		t.Errorf("Content = %q", rule.Content)
	}
}

func TestLoadRuleFromFile_UnterminatedFrontmatter(t *testing.T) {
	path := writeRuleFile(t, t.TempDir(), "broken.md", `---
description: never closed

# Body
`)

	rule, err := LoadRuleFromFile(path)
	if err != nil {
		t.Fatalf("LoadRuleFromFile error: %v", err)
	}
	// The whole file counts as content when the frontmatter never closes.
	if rule.Description != "" {
		t.Errorf("Description = %q, want empty", rule.Description)
	}
	if rule.Content == "" {
		t.Error("Content is empty, want full file")
	}
}

func TestLoadRuleFromFile_EmptyFile(t *testing.T) {
	path := writeRuleFile(t, t.TempDir(), "empty.md", "")

	rule, err := LoadRuleFromFile(path)
	if err != nil {
		t.Fatalf("LoadRuleFromFile error: %v", err)
	}
	if rule.Name != "empty" {
		t.Errorf("Name = %q, want %q", rule.Name, "empty")
	}
	if rule.Content != "" {
		t.Errorf("Content = %q, want empty", rule.Content)
	}
}

func TestLoadRuleFromFile_InvalidYAML(t *testing.T) {
	path := writeRuleFile(t, t.TempDir(), "bad.md", `---
description: [unclosed
---

# Body
`)

	if _, err := LoadRuleFromFile(path); err == nil {
		t.Error("LoadRuleFromFile should fail on invalid YAML frontmatter")
	}
}
