// Command attrgen generates attribute accessors, storage-key constants, and
// constructors for annotated struct types backed by key/value storage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tlipoca9/attrgen/cmd/attrgen/generator"
	"github.com/tlipoca9/attrgen/genkit"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var tracer = otel.Tracer("github.com/tlipoca9/attrgen/cmd/attrgen")

func main() {
	if err := fang.Execute(context.Background(), rootCmd()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dryRun bool
	var jsonOutput bool
	var includeTests bool
	var runtimeImport string

	ver := version
	if ver == commit {
		ver = "dev"
	}
	cmd := &cobra.Command{
		Use:   "attrgen [packages]",
		Short: "Attribute accessor generator for Go",
		Long: `attrgen generates accessors for struct types whose attributes live in
key/value storage. For every field declared in an attrgen:@attrs annotation it
emits a getter, a setter, and a storage-key constant, plus a metadata helper
and a constructor per type. Single inheritance via struct embedding propagates
fields and key constants to descendants.

  // attrgen:@attrs(city, -zip, ^email)
  type Address struct {
      attrs.Record
  }

Field sigils: "-" marks a field read-only (setter fails, constructor-only),
"^" marks its setter deprecated (stores, but emits a notice).`,
		Version: fmt.Sprintf("%s (%s) %s", ver, commit, date),
		Example: `  attrgen ./...              # all packages
  attrgen ./pkg/model        # specific package
  attrgen --include-tests ./...  # also write *_attrs_test.go
  attrgen --dry-run ./...    # validate without writing files
  attrgen --dry-run --json ./...  # JSON output for IDE integration`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			tool := generator.New()
			if runtimeImport != "" {
				tool.RuntimeImport = genkit.GoImportPath(runtimeImport)
			}
			if dryRun {
				return runDryRun(cmd.Context(), tool, args, jsonOutput, includeTests)
			}
			return run(cmd.Context(), tool, args, includeTests)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("attrgen %s (%s) %s\n", ver, commit, date))

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and preview without writing files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for IDE integration, requires --dry-run)")
	cmd.Flags().BoolVar(&includeTests, "include-tests", false, "Also generate *_attrs_test.go conformance files")
	cmd.Flags().StringVar(&runtimeImport, "runtime-import", "", "Import path of the attrs runtime (use after 'attrgen embed')")

	cmd.AddCommand(configCmd())
	cmd.AddCommand(rulesCmd())
	cmd.AddCommand(embedCmd())

	return cmd
}

func run(ctx context.Context, tool *generator.Generator, args []string, includeTests bool) error {
	ctx, span := tracer.Start(ctx, "attrgen.run", trace.WithAttributes(
		attribute.StringSlice("patterns", args),
	))
	defer span.End()

	log := genkit.NewLogger()

	gen := genkit.New(genkit.Options{
		IgnoreGeneratedFiles: true,
		IncludeTests:         includeTests,
	})

	_, loadSpan := tracer.Start(ctx, "attrgen.load")
	err := gen.Load(args...)
	loadSpan.End()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load: %w", err)
	}
	span.SetAttributes(attribute.Int("packages.loaded", len(gen.Packages)))

	log.Load("Loaded %v package(s)", len(gen.Packages))
	for _, pkg := range gen.Packages {
		log.Item("%v", pkg.GoImportPath())
	}

	_, genSpan := tracer.Start(ctx, "attrgen.generate")
	err = tool.Run(gen, log)
	genSpan.End()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s: %w", tool.Name(), err)
	}

	files, err := gen.DryRun()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("generate: %w", err)
	}

	if len(files) == 0 {
		log.Warn("No attrgen:@attrs annotations found")
		return nil
	}

	_, writeSpan := tracer.Start(ctx, "attrgen.write")
	err = gen.Write()
	writeSpan.End()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("write: %w", err)
	}
	span.SetAttributes(attribute.Int("files.generated", len(files)))

	log.Done("Generated %v file(s)", len(files))
	for path := range files {
		log.Item("%v", path)
	}

	return nil
}

func runDryRun(ctx context.Context, tool *generator.Generator, args []string, jsonOutput bool, includeTests bool) error {
	ctx, span := tracer.Start(ctx, "attrgen.dry-run", trace.WithAttributes(
		attribute.StringSlice("patterns", args),
	))
	defer span.End()

	// Silent logger for JSON output to avoid polluting stdout
	var log *genkit.Logger
	if jsonOutput {
		log = genkit.NewLoggerWithWriter(io.Discard)
	} else {
		log = genkit.NewLogger()
	}
	result := &genkit.DryRunResult{
		Success: true,
		Files:   make(map[string]string),
	}

	gen := genkit.New(genkit.Options{
		IgnoreGeneratedFiles: true,
		IncludeTests:         includeTests,
	})
	if err := gen.Load(args...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("load: %w", err)
	}
	result.Stats.PackagesLoaded = len(gen.Packages)
	span.SetAttributes(attribute.Int("packages.loaded", len(gen.Packages)))

	for _, d := range tool.Validate(gen, log) {
		result.AddDiagnostic(d)
	}

	// If validation is clean, try to generate (dry-run)
	if result.Success {
		_, genSpan := tracer.Start(ctx, "attrgen.generate")
		err := tool.Run(gen, log)
		genSpan.End()
		if err != nil {
			result.Success = false
			result.AddDiagnostic(genkit.Diagnostic{
				Severity: genkit.DiagnosticError,
				Message:  err.Error(),
				Tool:     tool.Name(),
			})
		}
	}

	if result.Success {
		files, err := gen.DryRun()
		if err != nil {
			result.Success = false
			result.AddDiagnostic(genkit.Diagnostic{
				Severity: genkit.DiagnosticError,
				Message:  fmt.Sprintf("generate: %v", err),
				Tool:     tool.Name(),
			})
		} else {
			result.Stats.FilesGenerated = len(files)
			for path, content := range files {
				// Store first 500 bytes as preview
				preview := string(content)
				if len(preview) > 500 {
					preview = preview[:500] + "\n... (truncated)"
				}
				result.Files[path] = preview
			}
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return printDryRunResult(result, log)
}

func printDryRunResult(result *genkit.DryRunResult, log *genkit.Logger) error {
	if result.Success {
		log.Done("Dry-run successful")
		log.Item("Packages: %v", result.Stats.PackagesLoaded)
		log.Item("Files to generate: %v", result.Stats.FilesGenerated)
		for path := range result.Files {
			log.Item("  %s", path)
		}
	} else {
		log.Warn("Dry-run found issues")
	}

	if result.Stats.ErrorCount > 0 {
		log.Warn("Errors: %v", result.Stats.ErrorCount)
	}
	if result.Stats.WarningCount > 0 {
		log.Warn("Warnings: %v", result.Stats.WarningCount)
	}

	for _, d := range result.Diagnostics {
		loc := ""
		if d.File != "" {
			loc = fmt.Sprintf("%s:%d:%d: ", d.File, d.Line, d.Column)
		}
		switch d.Severity {
		case genkit.DiagnosticError, genkit.DiagnosticWarning:
			log.Warn("%s[%s] %s%s", d.Tool, d.Code, loc, d.Message)
		default:
			log.Item("%s[%s] %s%s", d.Tool, d.Code, loc, d.Message)
		}
	}

	if !result.Success {
		return fmt.Errorf("dry-run failed with %d error(s)", result.Stats.ErrorCount)
	}
	return nil
}

func configCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Output tool configuration",
		Long: `Output the attrgen tool configuration: supported annotations, parameter
metadata, and the generated-file suffix. The VSCode extension uses this to
provide autocomplete and validation.

OUTPUT FORMAT:
  TOML (default): Human-readable format
  JSON (--json):  Machine-readable format for IDE/tool integration

attrgen looks for attrgen.toml in the current directory and its parents;
entries under [tools.attrgen] override the built-in metadata.`,
		Example: `  attrgen config
  attrgen config --json
  attrgen config --json | jq '.attrgen.annotations'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for IDE/tool integration)")

	return cmd
}

func runConfig(jsonOutput bool) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := genkit.LoadConfig(dir)
	if err != nil {
		cfg = &genkit.Config{}
	}

	toolConfigs := genkit.CollectToolConfigs([]genkit.Tool{generator.New()})

	// Config file entries take precedence over built-in metadata
	if cfg.Tools != nil {
		toolConfigs = genkit.MergeToolConfigs(toolConfigs, cfg.Tools)
	}

	if jsonOutput {
		return outputConfigJSON(toolConfigs)
	}
	return outputConfigTOML(toolConfigs)
}

func outputConfigJSON(configs map[string]genkit.ToolConfig) error {
	result := make(map[string]any)
	for name, cfg := range configs {
		result[name] = cfg.ToVSCodeConfig()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func outputConfigTOML(configs map[string]genkit.ToolConfig) error {
	for name, cfg := range configs {
		fmt.Printf("[tools.%s]\n", name)
		if cfg.OutputSuffix != "" {
			fmt.Printf("output_suffix = %q\n", cfg.OutputSuffix)
		}
		fmt.Println()

		for _, ann := range cfg.Annotations {
			fmt.Printf("[[tools.%s.annotations]]\n", name)
			fmt.Printf("name = %q\n", ann.Name)
			fmt.Printf("type = %q\n", ann.Type)
			if ann.Doc != "" {
				fmt.Printf("doc = %q\n", ann.Doc)
			}
			if ann.Params != nil {
				fmt.Println()
				fmt.Printf("[tools.%s.annotations.params]\n", name)
				if ann.Params.Type != nil {
					fmt.Printf("type = %q\n", ann.Params.Type)
				}
				if len(ann.Params.Values) > 0 {
					fmt.Printf("values = %v\n", formatStringSlice(ann.Params.Values))
				}
				if ann.Params.Placeholder != "" {
					fmt.Printf("placeholder = %q\n", ann.Params.Placeholder)
				}
				if ann.Params.MaxArgs > 0 {
					fmt.Printf("maxArgs = %d\n", ann.Params.MaxArgs)
				}
			}
			fmt.Println()
		}
	}
	return nil
}

func formatStringSlice(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func rulesCmd() *cobra.Command {
	var agentName string
	var writeFiles bool
	var listAgents bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Generate AI rules for coding assistants",
		Long: `Generate AI-friendly rules/documentation for AI coding assistants.

The rules teach assistants (Cursor, Kiro, CodeBuddy, ...) how to declare
attribute types and use the generated API correctly. Project-specific rules
from the rules_dir configured in attrgen.toml are included.

OUTPUT:
  By default, rules are printed to stdout.
  Use -w/--write to write files to the agent-specific directory.`,
		Example: `  # List supported agents
  attrgen rules --list-agents

  # Preview rules for Cursor (stdout)
  attrgen rules --agent cursor

  # Generate and write rules for Kiro
  attrgen rules --agent kiro -w

  # Write rules for every supported agent
  attrgen rules --agent all -w`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := genkit.NewLogger().SetNoColor(noColor)
			rc := NewRulesCommand([]genkit.Tool{generator.New()}, log)

			if listAgents {
				fmt.Println("Supported AI agents:")
				for _, name := range rc.ListAgents() {
					fmt.Printf("  %s\n", name)
				}
				return nil
			}
			if agentName == "" {
				return fmt.Errorf("--agent is required, use --list-agents to see supported agents")
			}
			if strings.EqualFold(agentName, "all") {
				return rc.ExecuteAll(writeFiles)
			}
			return rc.Execute(strings.ToLower(agentName), writeFiles)
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "Target AI agent (or 'all' with -w)")
	cmd.Flags().BoolVarP(&writeFiles, "write", "w", false, "Write rules to files instead of stdout")
	cmd.Flags().BoolVar(&listAgents, "list-agents", false, "List supported AI agents")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func embedCmd() *cobra.Command {
	var dir string
	var pkgName string
	var includeTests bool

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Copy the attrs runtime into a project",
		Long: `Write a standalone copy of the attrs runtime package into a project, so
generated code carries no dependency on this module.

Re-running the command overwrites the previous copy; that is the upgrade
path. Point generation at the copy afterwards:

  attrgen --runtime-import <module>/internal/attrs ./...`,
		Example: `  attrgen embed --dir internal/attrs
  attrgen embed --dir pkg/attrs --package attrs --include-tests`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbed(dir, pkgName, includeTests)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Target directory for the runtime copy (required)")
	cmd.Flags().StringVar(&pkgName, "package", "", "Package name for the copy (defaults to the directory name)")
	cmd.Flags().BoolVar(&includeTests, "include-tests", false, "Also write the runtime conformance test")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runEmbed(dir, pkgName string, includeTests bool) error {
	log := genkit.NewLogger()

	exports, err := generator.New().ExportRuntime(dir, pkgName, includeTests)
	if err != nil {
		return fmt.Errorf("export runtime: %w", err)
	}

	log.Done("Exported attrs runtime (%v file(s))", len(exports))
	for _, e := range exports {
		log.Item("%v", e.Path)
	}
	log.Info("Generate against the copy with --runtime-import")

	return nil
}
