package genkit

// Tool is the interface that code generation tools must implement.
// It provides a unified way to run code generators.
type Tool interface {
	// Name returns the tool name (e.g., "attrgen").
	Name() string

	// Run processes all packages and generates code.
	// It should handle logging internally.
	Run(gen *Generator, log *Logger) error
}

// ValidatableTool is implemented by tools that can check declarations for
// errors without generating files, for IDE integration.
type ValidatableTool interface {
	Tool

	// Validate returns diagnostics for all loaded packages.
	Validate(gen *Generator, log *Logger) []Diagnostic
}

// ConfigurableTool is implemented by tools that expose annotation metadata
// for editor integration.
type ConfigurableTool interface {
	Tool

	// Config returns the tool's annotation configuration.
	Config() ToolConfig
}

// Rule is a documentation rule exportable to AI coding assistants.
type Rule struct {
	// Name is the rule identifier, used as the output filename stem.
	Name string

	// Description tells the assistant when to apply the rule.
	Description string

	// Globs restricts the rule to matching files.
	Globs []string

	// AlwaysApply includes the rule in every context when true.
	AlwaysApply bool

	// Content is the markdown body of the rule.
	Content string
}

// RuleTool is implemented by tools that ship usage rules for AI assistants.
type RuleTool interface {
	Tool

	// Rules returns the tool's rules.
	Rules() []Rule
}
