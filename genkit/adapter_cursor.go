package genkit

import "fmt"

// CursorAdapter transforms rules for the Cursor AI assistant.
// Cursor uses YAML frontmatter with 'description', 'globs' and 'alwaysApply'
// fields, like CodeBuddy, but with the .mdc file extension.
type CursorAdapter struct{}

// Name returns "cursor".
func (c *CursorAdapter) Name() string {
	return "cursor"
}

// OutputDir returns ".cursor/rules".
func (c *CursorAdapter) OutputDir() string {
	return ".cursor/rules"
}

// Transform converts a Rule to Cursor format with YAML frontmatter.
func (c *CursorAdapter) Transform(rule Rule) (string, string, error) {
	var frontmatter string
	if len(rule.Globs) > 0 {
		frontmatter = fmt.Sprintf(`---
description: %s
globs: %s
alwaysApply: %t
---

`, rule.Description, formatGlobsComma(rule.Globs), rule.AlwaysApply)
	} else {
		frontmatter = fmt.Sprintf(`---
description: %s
alwaysApply: %t
---

`, rule.Description, rule.AlwaysApply)
	}

	return rule.Name + ".mdc", frontmatter + rule.Content, nil
}
