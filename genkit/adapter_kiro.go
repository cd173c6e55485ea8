package genkit

import (
	"fmt"
	"strings"
)

// KiroAdapter transforms rules for the Kiro AI assistant.
// Kiro uses YAML frontmatter with 'inclusion' and 'fileMatchPattern' fields:
//
//	---
//	inclusion: fileMatch | always
//	fileMatchPattern: ['**/*.go', '**/attrgen.toml']
//	---
type KiroAdapter struct{}

// Name returns "kiro".
func (k *KiroAdapter) Name() string {
	return "kiro"
}

// OutputDir returns ".kiro/steering".
func (k *KiroAdapter) OutputDir() string {
	return ".kiro/steering"
}

// Transform converts a Rule to Kiro format with YAML frontmatter.
// AlwaysApply maps to the "always" inclusion type; anything else becomes
// "fileMatch" with the globs as fileMatchPattern (all files if unset).
func (k *KiroAdapter) Transform(rule Rule) (string, string, error) {
	var frontmatter string
	if rule.AlwaysApply {
		if len(rule.Globs) > 0 {
			frontmatter = fmt.Sprintf(`---
description: %s
inclusion: always
fileMatchPattern: %s
---

`, rule.Description, formatPatternsYAML(rule.Globs))
		} else {
			frontmatter = fmt.Sprintf(`---
description: %s
inclusion: always
---

`, rule.Description)
		}
	} else {
		patterns := rule.Globs
		if len(patterns) == 0 {
			patterns = []string{"**/*"}
		}
		frontmatter = fmt.Sprintf(`---
description: %s
inclusion: fileMatch
fileMatchPattern: %s
---

`, rule.Description, formatPatternsYAML(patterns))
	}

	return rule.Name + ".md", frontmatter + rule.Content, nil
}

// formatPatternsYAML formats a slice of patterns as a YAML array,
// e.g. ['**/*.go', '**/attrgen.toml'].
func formatPatternsYAML(patterns []string) string {
	if len(patterns) == 0 {
		return "[]"
	}

	quoted := make([]string, len(patterns))
	for i, p := range patterns {
		quoted[i] = fmt.Sprintf("'%s'", p)
	}

	return "[" + strings.Join(quoted, ", ") + "]"
}
