package genkit

// AgentAdapter transforms rules for a specific AI assistant.
// Different assistants (Kiro, CodeBuddy, Cursor, ...) expect different
// frontmatter formats and directory layouts; adapters convert the generic
// Rule structure into the agent-specific file.
//
// Example usage:
//
//	adapter := &KiroAdapter{}
//	filename, content, err := adapter.Transform(rule)
//	if err != nil {
//	    return err
//	}
//	path := filepath.Join(adapter.OutputDir(), filename)
//	os.WriteFile(path, []byte(content), 0644)
type AgentAdapter interface {
	// Name returns the agent identifier (e.g., "kiro", "codebuddy", "cursor").
	// This name is used in CLI commands like `attrgen rules --agent kiro`.
	Name() string

	// OutputDir returns the directory path where rules should be written,
	// relative to the project root (e.g., ".cursor/rules").
	OutputDir() string

	// Transform converts a generic Rule into agent-specific format and
	// returns the output filename plus the complete file content with
	// frontmatter.
	Transform(rule Rule) (filename string, content string, err error)
}
