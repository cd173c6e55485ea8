package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tlipoca9/attrgen/cmd/attrgen/generator"
	"github.com/tlipoca9/attrgen/genkit"
)

func newTestRulesCommand() *RulesCommand {
	log := genkit.NewLoggerWithWriter(os.Stderr)
	return NewRulesCommand([]genkit.Tool{generator.New()}, log)
}

// chtmp moves the test into a fresh temp directory so config and rule
// discovery never see the repository's own attrgen.toml.
func chtmp(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
}

// TestRulesCommand_ListAgents tests listing available agents
func TestRulesCommand_ListAgents(t *testing.T) {
	cmd := newTestRulesCommand()

	agents := cmd.ListAgents()

	expected := []string{"codebuddy", "cursor", "kiro"}
	if len(agents) < len(expected) {
		t.Errorf("ListAgents() returned %d agents, want at least %d", len(agents), len(expected))
	}

	agentMap := make(map[string]bool)
	for _, agent := range agents {
		agentMap[agent] = true
	}
	for _, exp := range expected {
		if !agentMap[exp] {
			t.Errorf("ListAgents() missing expected agent %q", exp)
		}
	}

	// Check list is sorted
	for i := 1; i < len(agents); i++ {
		if agents[i-1] >= agents[i] {
			t.Errorf("ListAgents() not sorted: %q >= %q", agents[i-1], agents[i])
		}
	}
}

// TestRulesCommand_Execute_UnknownAgent tests error handling for unknown agent
func TestRulesCommand_Execute_UnknownAgent(t *testing.T) {
	cmd := newTestRulesCommand()

	err := cmd.Execute("unknown-agent", false)
	if err == nil {
		t.Fatal("Execute() with unknown agent should return error")
	}
	if !strings.Contains(err.Error(), "unknown agent") {
		t.Errorf("Execute() error = %v, want error containing 'unknown agent'", err)
	}
	if !strings.Contains(err.Error(), "available agents") {
		t.Errorf("Execute() error = %v, want error containing 'available agents'", err)
	}
}

// TestRulesCommand_Execute_Preview tests preview mode (stdout)
func TestRulesCommand_Execute_Preview(t *testing.T) {
	chtmp(t)

	cmd := newTestRulesCommand()

	if err := cmd.Execute("kiro", false); err != nil {
		t.Fatalf("Execute() preview mode error = %v", err)
	}

	// Preview mode must not create the agent directory
	if _, err := os.Stat(".kiro"); !os.IsNotExist(err) {
		t.Error("Execute() preview mode created .kiro directory")
	}
}

// TestRulesCommand_Execute_Write tests write mode
func TestRulesCommand_Execute_Write(t *testing.T) {
	chtmp(t)

	cmd := newTestRulesCommand()

	if err := cmd.Execute("kiro", true); err != nil {
		t.Fatalf("Execute() write mode error = %v", err)
	}

	outputDir := ".kiro/steering"
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("ReadDir(%s) error = %v", outputDir, err)
	}
	if len(entries) == 0 {
		t.Fatal("Execute() write mode created no files")
	}

	fileMap := make(map[string]bool)
	for _, entry := range entries {
		fileMap[entry.Name()] = true
	}
	if !fileMap["attrgen-tool.md"] {
		t.Errorf("Execute() write mode missing expected file %q, got %v", "attrgen-tool.md", entries)
	}

	// Verify file content has Kiro frontmatter
	content, err := os.ReadFile(filepath.Join(outputDir, "attrgen-tool.md"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	contentStr := string(content)
	if !strings.HasPrefix(contentStr, "---\n") {
		t.Error("Generated file missing YAML frontmatter")
	}
	if !strings.Contains(contentStr, "inclusion:") {
		t.Error("Generated file missing 'inclusion' field")
	}
}

// TestRulesCommand_Execute_Write_CodeBuddy tests CodeBuddy format
func TestRulesCommand_Execute_Write_CodeBuddy(t *testing.T) {
	chtmp(t)

	cmd := newTestRulesCommand()

	if err := cmd.Execute("codebuddy", true); err != nil {
		t.Fatalf("Execute() write mode error = %v", err)
	}

	outputDir := ".codebuddy/rules"
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("ReadDir(%s) error = %v", outputDir, err)
	}
	if len(entries) == 0 {
		t.Fatal("Execute() write mode created no files")
	}

	content, err := os.ReadFile(filepath.Join(outputDir, "attrgen-tool.mdc"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	contentStr := string(content)
	if !strings.Contains(contentStr, "description:") {
		t.Error("Generated file missing 'description' field")
	}
	if !strings.Contains(contentStr, "globs:") {
		t.Error("Generated file missing 'globs' field")
	}
	if !strings.Contains(contentStr, "alwaysApply:") {
		t.Error("Generated file missing 'alwaysApply' field")
	}
}

// TestRulesCommand_ExecuteAll_RequiresWrite tests that 'all' refuses preview mode
func TestRulesCommand_ExecuteAll_RequiresWrite(t *testing.T) {
	cmd := newTestRulesCommand()

	err := cmd.ExecuteAll(false)
	if err == nil {
		t.Fatal("ExecuteAll(false) should return error")
	}
	if !strings.Contains(err.Error(), "--write") {
		t.Errorf("ExecuteAll() error = %v, want error mentioning --write", err)
	}
}

// TestRulesCommand_ExecuteAll_Write tests writing rules for every agent
func TestRulesCommand_ExecuteAll_Write(t *testing.T) {
	chtmp(t)

	cmd := newTestRulesCommand()

	if err := cmd.ExecuteAll(true); err != nil {
		t.Fatalf("ExecuteAll() error = %v", err)
	}

	for _, dir := range []string{".kiro/steering", ".codebuddy/rules", ".cursor/rules"} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir(%s) error = %v", dir, err)
		}
		if len(entries) == 0 {
			t.Errorf("ExecuteAll() wrote no files in %s", dir)
		}
	}
}

// TestRulesCommand_CollectRules tests rule collection
func TestRulesCommand_CollectRules(t *testing.T) {
	chtmp(t)

	cmd := newTestRulesCommand()

	rules, err := cmd.collectRules()
	if err != nil {
		t.Fatalf("collectRules() error = %v", err)
	}
	if len(rules) == 0 {
		t.Fatal("collectRules() returned no rules")
	}

	ruleMap := make(map[string]bool)
	for _, rule := range rules {
		ruleMap[rule.Name] = true
	}
	if !ruleMap["attrgen-tool"] {
		t.Error("collectRules() missing tool rule \"attrgen-tool\"")
	}

	for _, rule := range rules {
		if rule.Name == "" {
			t.Error("collectRules() returned rule with empty Name")
		}
		if rule.Description == "" {
			t.Error("collectRules() returned rule with empty Description")
		}
		if rule.Content == "" {
			t.Error("collectRules() returned rule with empty Content")
		}
	}
}

// TestRulesCommand_CollectRules_ProjectRules tests rules_dir discovery
func TestRulesCommand_CollectRules_ProjectRules(t *testing.T) {
	chtmp(t)

	if err := os.MkdirAll("rules", 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	projectRule := `---
description: Project naming conventions
globs: ["**/*.go"]
---

# Naming

Use lower_snake_case attribute names.
`
	if err := os.WriteFile(filepath.Join("rules", "naming.md"), []byte(projectRule), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile("attrgen.toml", []byte("rules_dir = \"rules\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cmd := newTestRulesCommand()

	rules, err := cmd.collectRules()
	if err != nil {
		t.Fatalf("collectRules() error = %v", err)
	}

	var found bool
	for _, rule := range rules {
		if rule.Name == "naming" {
			found = true
			if rule.Description != "Project naming conventions" {
				t.Errorf("project rule Description = %q", rule.Description)
			}
		}
	}
	if !found {
		t.Error("collectRules() missing project rule \"naming\"")
	}
}

// TestRulesCommand_WriteRules_CreateDirectory tests directory creation
func TestRulesCommand_WriteRules_CreateDirectory(t *testing.T) {
	chtmp(t)

	cmd := newTestRulesCommand()

	testRules := []genkit.Rule{
		{
			Name:        "test-rule",
			Description: "Test rule",
			Globs:       []string{"**/*.go"},
			AlwaysApply: false,
			Content:     "# Test\n\nTest content.",
		},
	}

	adapter, ok := cmd.registry.Get("kiro")
	if !ok {
		t.Fatal("Failed to get kiro adapter")
	}

	outputDir := adapter.OutputDir()
	if _, err := os.Stat(outputDir); err == nil {
		t.Fatalf("Directory %s already exists", outputDir)
	}

	if err := cmd.writeRules(adapter, testRules); err != nil {
		t.Fatalf("writeRules() error = %v", err)
	}

	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		t.Errorf("writeRules() did not create directory %s", outputDir)
	}

	testFile := filepath.Join(outputDir, "test-rule.md")
	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Errorf("writeRules() did not create file %s", testFile)
	}
}
