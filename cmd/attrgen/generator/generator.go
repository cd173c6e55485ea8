// Package generator provides attribute accessor code generation.
package generator

import (
	"fmt"
	"strings"

	"github.com/tlipoca9/attrgen/cmd/attrgen/rules"
	"github.com/tlipoca9/attrgen/genkit"
)

// ToolName is the name of this tool, used in annotations.
const ToolName = "attrgen"

// DefaultRuntimeImport is the canonical attrs runtime package generated code
// calls into. Projects that vendored the runtime via `attrgen embed` point
// RuntimeImport at their own package instead.
const DefaultRuntimeImport genkit.GoImportPath = "github.com/tlipoca9/attrgen/attrs"

// Error codes for diagnostics.
const (
	ErrCodeInvalidFieldName = "E001"
	ErrCodeDuplicateKey     = "E002"
	ErrCodeMultipleParents  = "E003"
	ErrCodeNoRecord         = "E004"
	ErrCodePointerEmbed     = "E005"
)

// Generator generates attribute accessors, storage-key constants, metadata
// helpers, and constructors for annotated struct types.
type Generator struct {
	// RuntimeImport is the import path of the attrs runtime referenced by
	// generated code.
	RuntimeImport genkit.GoImportPath
}

// New creates a new Generator wired to the canonical runtime.
func New() *Generator {
	return &Generator{RuntimeImport: DefaultRuntimeImport}
}

// Name returns the tool name.
func (ag *Generator) Name() string {
	return ToolName
}

func (ag *Generator) runtime(name string) genkit.GoIdent {
	return ag.RuntimeImport.Ident(name)
}

// Config returns the tool configuration for editor integration.
func (ag *Generator) Config() genkit.ToolConfig {
	return genkit.ToolConfig{
		OutputSuffix: "_attrs.go",
		Annotations: []genkit.AnnotationConfig{
			{
				Name: "attrs",
				Type: "type",
				Doc: `Generate attribute accessors backed by key/value storage.

USAGE:
  // attrgen:@attrs(city, -zip, ^email)
  type Address struct {
      attrs.Record
  }

FIELD SIGILS:
  - name:  normal field, setter stores and returns the value
  - -name: read-only field, setter always fails; settable only via constructor
  - ^name: deprecated field, setter stores but emits a deprecation notice

GENERATED PER FIELD:
  - <Type><Name>Key constant holding the uppercase storage key
  - <Name>() any getter (nil when unset)
  - Set<Name>(v any) setter per the sigil above

GENERATED PER TYPE:
  - <Type>Attrs metadata helper: Keys(), Names(), Key(name), Contains(key)
  - New<Type>(kv ...any) constructor, skipped if the package already
    declares one; calls Init() after population when the type has one

INHERITANCE:
  Embed another annotated type to inherit its fields. Key constants are
  re-emitted on the descendant with identical values; accessors arrive
  through method promotion. Chain roots embed attrs.Record directly.`,
				Params: &genkit.AnnotationParams{
					Type:        "list",
					Placeholder: "field, -read_only, ^deprecated",
				},
			},
		},
	}
}

// Rules implements genkit.RuleTool.
// Returns AI-friendly documentation for attrgen.
func (ag *Generator) Rules() []genkit.Rule {
	return []genkit.Rule{
		{
			Name:        "attrgen-tool",
			Description: "Usage guide for the attrgen attribute accessor generator. Apply when declaring attribute-holding types, inheritance chains, or key/value backed models.",
			Globs:       []string{"*.go"},
			AlwaysApply: false,
			Content:     rules.AttrgenRule,
		},
	}
}

// Validate implements genkit.ValidatableTool.
// It checks declarations without generating files, returning diagnostics for
// IDE integration.
func (ag *Generator) Validate(gen *genkit.Generator, _ *genkit.Logger) []genkit.Diagnostic {
	c := genkit.NewDiagnosticCollector(ToolName)

	reg := BuildRegistry(gen)
	for _, pkg := range gen.Packages {
		for _, d := range reg.InPackage(pkg) {
			ag.validateType(c, d)
		}
	}

	return c.Collect()
}

// validateType validates a single annotated type and collects diagnostics.
func (ag *Generator) validateType(c *genkit.DiagnosticCollector, d *Descriptor) {
	typeName := d.Type.Name

	for _, flag := range d.Invalid {
		c.Errorf(ErrCodeInvalidFieldName, d.Type.Pos,
			"invalid field name %q on %s, want lower_snake optionally prefixed with - or ^",
			flag, typeName)
	}

	if len(d.Parents) > 1 {
		names := make([]string, len(d.Parents))
		for i, p := range d.Parents {
			names[i] = p.Type.Name
		}
		c.Errorf(ErrCodeMultipleParents, d.Type.Pos,
			"%s embeds multiple annotated types (%s), single inheritance only",
			typeName, strings.Join(names, ", "))
		return // flattening is ambiguous past this point
	}

	// A constructor cannot populate a nil embedded pointer, so pointer
	// embeds never form a chain.
	for _, name := range d.PointerEmbeds {
		c.Errorf(ErrCodePointerEmbed, d.Type.Pos,
			"%s embeds %s by pointer, embed it by value", typeName, name)
	}
	if len(d.PointerEmbeds) > 0 {
		return
	}

	if !d.HasRecord && d.Parent() == nil {
		c.Errorf(ErrCodeNoRecord, d.Type.Pos,
			"%s must embed attrs.Record or a single annotated parent type", typeName)
	}

	seen := make(map[string]FieldSpec)
	for _, f := range d.All() {
		if prev, ok := seen[f.Key]; ok {
			c.Errorf(ErrCodeDuplicateKey, d.Type.Pos,
				"duplicate storage key %q on %s: field %q collides with %q declared by %s",
				f.Key, typeName, f.Name, prev.Name, prev.Owner)
			continue
		}
		seen[f.Key] = f
	}
}

// Run processes all packages and generates attribute accessors.
func (ag *Generator) Run(gen *genkit.Generator, log *genkit.Logger) error {
	reg := BuildRegistry(gen)

	for _, pkg := range gen.Packages {
		ds := reg.InPackage(pkg)
		if len(ds) == 0 {
			continue
		}
		log.Find("Found %v attribute type(s) in %v", len(ds), pkg.GoImportPath())
		for _, d := range ds {
			log.Item("%v (%v field(s))", d.Type.Name, len(d.All()))
		}
		if err := ag.processPackage(gen, pkg, ds); err != nil {
			return fmt.Errorf("process %s: %w", pkg.Name, err)
		}
	}

	return nil
}

// ProcessPackage processes a single package and generates accessors for its
// annotated types.
func (ag *Generator) ProcessPackage(gen *genkit.Generator, pkg *genkit.Package) error {
	reg := BuildRegistry(gen)
	return ag.processPackage(gen, pkg, reg.InPackage(pkg))
}

func (ag *Generator) processPackage(gen *genkit.Generator, pkg *genkit.Package, ds []*Descriptor) error {
	if len(ds) == 0 {
		return nil
	}

	outPath := genkit.OutputPath(pkg.Dir, pkg.Name+"_attrs.go")
	g := gen.NewGeneratedFile(outPath, pkg.GoImportPath())

	ag.WriteHeader(g, pkg.Name)
	for _, d := range ds {
		if err := ag.GenerateType(g, d); err != nil {
			return err
		}
	}

	// Generate conformance test file if requested
	if gen.IncludeTests() {
		testPath := genkit.OutputPath(pkg.Dir, pkg.Name+"_attrs_test.go")
		tg := gen.NewGeneratedFile(testPath, pkg.GoImportPath())
		ag.WriteTestHeader(tg, pkg.Name)
		for _, d := range ds {
			ag.GenerateTypeTest(tg, d)
		}
	}

	return nil
}

// WriteHeader writes the file header.
func (ag *Generator) WriteHeader(g *genkit.GeneratedFile, pkgName string) {
	g.P("// Code generated by ", ToolName, ". DO NOT EDIT.")
	g.P()
	g.P("package ", pkgName)
}

// GenerateType generates accessors, constants, the metadata helper, and the
// constructor for a single annotated type.
func (ag *Generator) GenerateType(g *genkit.GeneratedFile, d *Descriptor) error {
	// Validate first using collector
	c := genkit.NewDiagnosticCollector(ToolName)
	ag.validateType(c, d)
	if c.HasErrors() {
		for _, diag := range c.Collect() {
			if diag.Severity == genkit.DiagnosticError {
				return fmt.Errorf("%s: %s", d.Type.Name, diag.Message)
			}
		}
	}

	typeName := d.Type.Name
	all := d.All()

	// 1. Storage key constants. Inherited keys are re-emitted under the
	// descendant's prefix with identical values, so lookups resolve on
	// either end of the chain.
	g.P()
	g.P("// Storage keys for ", typeName, " attributes.")
	g.P("const (")
	for _, f := range all {
		g.P(typeName, f.GoName, "Key = ", fmt.Sprintf("%q", f.Key))
	}
	g.P(")")

	// 2. Accessors for own fields. Inherited accessors arrive via method
	// promotion from the embedded parent.
	for _, f := range d.Own {
		ag.generateGetter(g, typeName, f)
		ag.generateSetter(g, typeName, f)
	}

	// 3. Flattened metadata helper
	ag.generateAttrsHelper(g, typeName, all)

	// 4. Constructor, unless the package pre-declares one
	if !d.Type.Pkg.HasFunc("New" + typeName) {
		ag.generateConstructor(g, d)
	}

	return nil
}

func (ag *Generator) generateGetter(g *genkit.GeneratedFile, typeName string, f FieldSpec) {
	g.P()
	g.P(genkit.GoMethod{
		Doc:     genkit.GoDoc(f.GoName + " returns the " + fmt.Sprintf("%q", f.Key) + " attribute, or nil when unset."),
		Recv:    genkit.GoReceiver{Name: "x", Type: typeName, Pointer: true},
		Name:    f.GoName,
		Results: genkit.GoResults{{Type: "any"}},
	}, " {")
	g.P("return x.Attr(", typeName, f.GoName, "Key)")
	g.P("}")
}

func (ag *Generator) generateSetter(g *genkit.GeneratedFile, typeName string, f FieldSpec) {
	constName := typeName + f.GoName + "Key"

	switch f.Modifier {
	case ModifierReadOnly:
		g.P()
		g.P(genkit.GoMethod{
			Doc: genkit.GoDoc("Set" + f.GoName + " always fails: " + fmt.Sprintf("%q", f.Name) + " is read-only.\n" +
				"The value can only be supplied through the constructor."),
			Recv:    genkit.GoReceiver{Name: "x", Type: typeName, Pointer: true},
			Name:    "Set" + f.GoName,
			Params:  genkit.GoParams{List: []genkit.GoParam{{Name: "_", Type: "any"}}},
			Results: genkit.GoResults{{Type: "error"}},
		}, " {")
		g.P("return &", ag.runtime("ImmutableAttrError"), "{Type: ", fmt.Sprintf("%q", typeName), ", Attr: ", fmt.Sprintf("%q", f.Name), "}")
		g.P("}")

	case ModifierDeprecated:
		g.P()
		g.P(genkit.GoMethod{
			Doc: genkit.GoDoc("Set" + f.GoName + " stores v under " + fmt.Sprintf("%q", f.Key) + " and returns it.\n\n" +
				"Deprecated: " + fmt.Sprintf("%q", f.Name) + " is deprecated; every call emits a notice."),
			Recv:    genkit.GoReceiver{Name: "x", Type: typeName, Pointer: true},
			Name:    "Set" + f.GoName,
			Params:  genkit.GoParams{List: []genkit.GoParam{{Name: "v", Type: "any"}}},
			Results: genkit.GoResults{{Type: "any"}},
		}, " {")
		g.P(ag.runtime("Deprecated"), "(", fmt.Sprintf("%q", typeName), ", ", fmt.Sprintf("%q", f.Name), ")")
		g.P("x.SetAttr(", constName, ", v)")
		g.P("return v")
		g.P("}")

	default:
		g.P()
		g.P(genkit.GoMethod{
			Doc:     genkit.GoDoc("Set" + f.GoName + " stores v under " + fmt.Sprintf("%q", f.Key) + " and returns it."),
			Recv:    genkit.GoReceiver{Name: "x", Type: typeName, Pointer: true},
			Name:    "Set" + f.GoName,
			Params:  genkit.GoParams{List: []genkit.GoParam{{Name: "v", Type: "any"}}},
			Results: genkit.GoResults{{Type: "any"}},
		}, " {")
		g.P("x.SetAttr(", constName, ", v)")
		g.P("return v")
		g.P("}")
	}
}

func (ag *Generator) generateAttrsHelper(g *genkit.GeneratedFile, typeName string, all []FieldSpec) {
	attrsVar := typeName + "Attrs" // e.g., AddressAttrs
	attrsType := "_" + attrsVar    // e.g., _AddressAttrs

	names := make([]string, len(all))
	keys := make([]string, len(all))
	for i, f := range all {
		names[i] = fmt.Sprintf("%q", f.Name)
		keys[i] = fmt.Sprintf("%q", f.Key)
	}

	g.P()
	g.P("// ", attrsVar, " describes the declared attributes of ", typeName, ", ancestors first.")
	g.P("var ", attrsVar, " = ", attrsType, "{")
	g.P("names: []string{", strings.Join(names, ", "), "},")
	g.P("keys:  []string{", strings.Join(keys, ", "), "},")
	g.P("}")

	g.P()
	g.P("// ", attrsType, " provides attribute metadata for ", typeName, ".")
	g.P("type ", attrsType, " struct {")
	g.P("names []string")
	g.P("keys  []string")
	g.P("}")

	g.P()
	g.P(genkit.GoMethod{
		Doc:     genkit.GoDoc("Names returns the declared attribute names, ancestors first."),
		Recv:    genkit.GoReceiver{Name: "a", Type: attrsType},
		Name:    "Names",
		Results: genkit.GoResults{{Type: "[]string"}},
	}, " {")
	g.P("return a.names")
	g.P("}")

	g.P()
	g.P(genkit.GoMethod{
		Doc:     genkit.GoDoc("Keys returns the storage keys, ancestors first."),
		Recv:    genkit.GoReceiver{Name: "a", Type: attrsType},
		Name:    "Keys",
		Results: genkit.GoResults{{Type: "[]string"}},
	}, " {")
	g.P("return a.keys")
	g.P("}")

	g.P()
	g.P(genkit.GoMethod{
		Doc:     genkit.GoDoc("Key returns the storage key for an attribute name, or \"\" if undeclared."),
		Recv:    genkit.GoReceiver{Name: "a", Type: attrsType},
		Name:    "Key",
		Params:  genkit.GoParams{List: []genkit.GoParam{{Name: "name", Type: "string"}}},
		Results: genkit.GoResults{{Type: "string"}},
	}, " {")
	g.P("for i, n := range a.names {")
	g.P("if n == name {")
	g.P("return a.keys[i]")
	g.P("}")
	g.P("}")
	g.P("return \"\"")
	g.P("}")

	g.P()
	g.P(genkit.GoMethod{
		Doc:     genkit.GoDoc("Contains reports whether key is a declared storage key."),
		Recv:    genkit.GoReceiver{Name: "a", Type: attrsType},
		Name:    "Contains",
		Params:  genkit.GoParams{List: []genkit.GoParam{{Name: "key", Type: "string"}}},
		Results: genkit.GoResults{{Type: "bool"}},
	}, " {")
	g.P("for _, k := range a.keys {")
	g.P("if k == key {")
	g.P("return true")
	g.P("}")
	g.P("}")
	g.P("return false")
	g.P("}")
}

func (ag *Generator) generateConstructor(g *genkit.GeneratedFile, d *Descriptor) {
	typeName := d.Type.Name

	g.P()
	g.P(genkit.GoFunc{
		Doc: genkit.GoDoc("New" + typeName + " creates a " + typeName + " from (name, value) pairs or a single\n" +
			"values aggregate. Values bypass setters, so read-only fields may be set here."),
		Name:    "New" + typeName,
		Params:  genkit.GoParams{List: []genkit.GoParam{{Name: "kv", Type: "any"}}, Variadic: true},
		Results: genkit.GoResults{{Type: "*" + typeName}},
	}, " {")
	g.P("x := &", typeName, "{}")
	g.P("x.Record = ", ag.runtime("NewRecord"), "(kv...)")
	if d.Type.Pkg.HasMethod(typeName, "Init") {
		g.P("x.Init()")
	}
	g.P("return x")
	g.P("}")
}
