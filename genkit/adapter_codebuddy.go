package genkit

import (
	"fmt"
	"strings"
)

// CodeBuddyAdapter transforms rules for the CodeBuddy AI assistant.
// CodeBuddy uses YAML frontmatter with 'description', 'globs' and
// 'alwaysApply' fields.
type CodeBuddyAdapter struct{}

// Name returns "codebuddy".
func (c *CodeBuddyAdapter) Name() string {
	return "codebuddy"
}

// OutputDir returns ".codebuddy/rules".
func (c *CodeBuddyAdapter) OutputDir() string {
	return ".codebuddy/rules"
}

// Transform converts a Rule to CodeBuddy format with YAML frontmatter.
func (c *CodeBuddyAdapter) Transform(rule Rule) (string, string, error) {
	frontmatter := fmt.Sprintf(`---
description: %s
globs: %s
alwaysApply: %t
---

`, rule.Description, formatGlobsComma(rule.Globs), rule.AlwaysApply)

	return rule.Name + ".mdc", frontmatter + rule.Content, nil
}

// formatGlobsComma formats a slice of globs as a comma-separated string,
// defaulting to all Go files.
func formatGlobsComma(globs []string) string {
	if len(globs) == 0 {
		return "**/*.go"
	}
	return strings.Join(globs, ", ")
}
