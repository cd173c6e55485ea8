package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tlipoca9/attrgen/genkit"
)

// RulesCommand handles the 'attrgen rules' subcommand.
// It collects rules from the generator and the project rules directory and
// writes agent-specific rule files.
type RulesCommand struct {
	registry *genkit.AdapterRegistry
	tools    []genkit.Tool
	log      *genkit.Logger
}

// NewRulesCommand creates a new RulesCommand with the adapter registry.
func NewRulesCommand(tools []genkit.Tool, log *genkit.Logger) *RulesCommand {
	return &RulesCommand{
		registry: genkit.NewAdapterRegistry(),
		tools:    tools,
		log:      log,
	}
}

// Execute runs the rules command with the specified agent and write mode.
// If write is false, rules are printed to stdout (preview mode).
func (c *RulesCommand) Execute(agent string, write bool) error {
	adapter, ok := c.registry.Get(agent)
	if !ok {
		available := c.registry.List()
		return fmt.Errorf("unknown agent %q, available agents: %s", agent, strings.Join(available, ", "))
	}

	rules, err := c.collectRules()
	if err != nil {
		return fmt.Errorf("collect rules: %w", err)
	}

	if len(rules) == 0 {
		c.log.Warn("No rules found")
		return nil
	}

	if write {
		return c.writeRules(adapter, rules)
	}
	return c.preview(adapter, rules)
}

// ExecuteAll runs the rules command for every supported agent.
// Only supports write mode; previewing all agents would be too verbose.
func (c *RulesCommand) ExecuteAll(write bool) error {
	if !write {
		return fmt.Errorf("--agent all requires -w/--write flag")
	}

	rules, err := c.collectRules()
	if err != nil {
		return fmt.Errorf("collect rules: %w", err)
	}

	if len(rules) == 0 {
		c.log.Warn("No rules found")
		return nil
	}

	for _, agentName := range c.registry.List() {
		adapter, ok := c.registry.Get(agentName)
		if !ok {
			continue
		}
		if err := c.writeRules(adapter, rules); err != nil {
			return fmt.Errorf("write rules for %s: %w", agentName, err)
		}
	}

	return nil
}

// ListAgents returns all available agent names.
func (c *RulesCommand) ListAgents() []string {
	return c.registry.List()
}

// collectRules gathers rules from both sources:
// 1. Project-level rules from the configured rules directory
// 2. Tool rules (from tools implementing RuleTool)
func (c *RulesCommand) collectRules() ([]genkit.Rule, error) {
	var allRules []genkit.Rule

	configSearchDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := genkit.LoadConfig(configSearchDir)
	if err != nil {
		cfg = &genkit.Config{}
	}

	if cfg.RulesDir != "" {
		projectRules, err := genkit.LoadRulesFromDir(cfg.RulesDir)
		if err != nil {
			return nil, fmt.Errorf("load project rules from %s: %w", cfg.RulesDir, err)
		}
		if len(projectRules) > 0 {
			c.log.Info("Loaded %v project rule(s) from %s", len(projectRules), cfg.RulesDir)
			allRules = append(allRules, projectRules...)
		}
	}

	for _, tool := range c.tools {
		if rt, ok := tool.(genkit.RuleTool); ok {
			allRules = append(allRules, rt.Rules()...)
		}
	}

	return allRules, nil
}

// preview prints rules to stdout without writing files.
func (c *RulesCommand) preview(adapter genkit.AgentAdapter, rules []genkit.Rule) error {
	for i, rule := range rules {
		if i > 0 {
			fmt.Println("\n" + strings.Repeat("=", 80) + "\n")
		}

		filename, content, err := adapter.Transform(rule)
		if err != nil {
			return fmt.Errorf("transform rule %s: %w", rule.Name, err)
		}

		fmt.Printf("# File: %s/%s\n\n", adapter.OutputDir(), filename)
		fmt.Print(content)
	}
	return nil
}

// writeRules writes rules to the agent-specific directory.
func (c *RulesCommand) writeRules(adapter genkit.AgentAdapter, rules []genkit.Rule) error {
	outputDir := adapter.OutputDir()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", outputDir, err)
	}

	c.log.Info("Generating rules for %s...", adapter.Name())

	var written []string
	for _, rule := range rules {
		filename, content, err := adapter.Transform(rule)
		if err != nil {
			return fmt.Errorf("transform rule %s: %w", rule.Name, err)
		}

		path := filepath.Join(outputDir, filename)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("write file %s: %w", path, err)
		}
		written = append(written, path)
	}

	c.log.Done("Generated %v rule file(s) in %s", len(written), outputDir)
	for _, path := range written {
		c.log.Item("%s", path)
	}

	return nil
}
