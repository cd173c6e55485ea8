package generator

import (
	"fmt"

	"github.com/tlipoca9/attrgen/genkit"
)

// WriteTestHeader writes the test file header.
func (ag *Generator) WriteTestHeader(g *genkit.GeneratedFile, pkgName string) {
	g.P("// Code generated by ", ToolName, ". DO NOT EDIT.")
	g.P()
	g.P("package ", pkgName)
}

// GenerateTypeTest generates conformance tests for a single annotated type:
// key constants, metadata helper, accessor round trips, read-only rejection,
// deprecation notices, and constructor population.
func (ag *Generator) GenerateTypeTest(g *genkit.GeneratedFile, d *Descriptor) {
	typeName := d.Type.Name
	all := d.All()
	if len(all) == 0 {
		return
	}

	testingT := genkit.GoImportPath("testing").Ident("T")

	// Key constants match the uppercase derivation
	g.P()
	g.P("func Test", typeName, "_Keys(t *", testingT, ") {")
	g.P("tests := []struct {")
	g.P("name string")
	g.P("got  string")
	g.P("want string")
	g.P("}{")
	for _, f := range all {
		g.P("{name: ", fmt.Sprintf("%q", f.Name), ", got: ", typeName, f.GoName, "Key, want: ", fmt.Sprintf("%q", f.Key), "},")
	}
	g.P("}")
	g.P("for _, tt := range tests {")
	g.P("t.Run(tt.name, func(t *testing.T) {")
	g.P("if tt.got != tt.want {")
	g.P("t.Errorf(\"key = %q, want %q\", tt.got, tt.want)")
	g.P("}")
	g.P("})")
	g.P("}")
	g.P("}")

	// Inherited constants resolve to the same values as the parent's
	if p := d.Parent(); p != nil {
		parentName := p.Type.Name
		g.P()
		g.P("func Test", typeName, "_InheritedKeys(t *", testingT, ") {")
		for _, f := range p.All() {
			childConst := typeName + f.GoName + "Key"
			parentConst := p.Type.Pkg.GoImportPath().Ident(parentName + f.GoName + "Key")
			g.P("if ", childConst, " != ", parentConst, " {")
			g.P("t.Errorf(\"", childConst, " = %q, want %q\", ", childConst, ", ", parentConst, ")")
			g.P("}")
		}
		g.P("}")
	}

	// Metadata helper
	attrsVar := typeName + "Attrs"
	g.P()
	g.P("func Test", attrsVar, "(t *", testingT, ") {")
	g.P("if got := len(", attrsVar, ".Names()); got != ", len(all), " {")
	g.P("t.Errorf(\"Names() has %d entries, want ", len(all), "\", got)")
	g.P("}")
	g.P("if got := len(", attrsVar, ".Keys()); got != ", len(all), " {")
	g.P("t.Errorf(\"Keys() has %d entries, want ", len(all), "\", got)")
	g.P("}")
	for _, f := range all {
		g.P("if got := ", attrsVar, ".Key(", fmt.Sprintf("%q", f.Name), "); got != ", fmt.Sprintf("%q", f.Key), " {")
		g.P("t.Errorf(\"Key(", f.Name, ") = %q, want ", f.Key, "\", got)")
		g.P("}")
		g.P("if !", attrsVar, ".Contains(", fmt.Sprintf("%q", f.Key), ") {")
		g.P("t.Error(\"Contains(", f.Key, ") = false\")")
		g.P("}")
	}
	g.P("if got := ", attrsVar, ".Key(\"__missing__\"); got != \"\" {")
	g.P("t.Errorf(\"Key(__missing__) = %q, want empty\", got)")
	g.P("}")
	g.P("if ", attrsVar, ".Contains(\"__MISSING__\") {")
	g.P("t.Error(\"Contains(__MISSING__) = true\")")
	g.P("}")
	g.P("}")

	var normal, readOnly, deprecated []FieldSpec
	for _, f := range d.Own {
		switch f.Modifier {
		case ModifierReadOnly:
			readOnly = append(readOnly, f)
		case ModifierDeprecated:
			deprecated = append(deprecated, f)
		default:
			normal = append(normal, f)
		}
	}

	// Normal accessor round trips
	if len(normal) > 0 {
		g.P()
		g.P("func Test", typeName, "_Accessors(t *", testingT, ") {")
		g.P("x := &", typeName, "{}")
		for _, f := range normal {
			val := fmt.Sprintf("%q", "value-"+f.Name)
			g.P("if got := x.", f.GoName, "(); got != nil {")
			g.P("t.Errorf(\"", f.GoName, "() = %v before set, want nil\", got)")
			g.P("}")
			g.P("if got := x.Set", f.GoName, "(", val, "); got != ", val, " {")
			g.P("t.Errorf(\"Set", f.GoName, "() = %v, want ", "value-"+f.Name, "\", got)")
			g.P("}")
			g.P("if got := x.", f.GoName, "(); got != ", val, " {")
			g.P("t.Errorf(\"", f.GoName, "() = %v, want ", "value-"+f.Name, "\", got)")
			g.P("}")
		}
		g.P("}")
	}

	// Read-only setters fail and never store
	if len(readOnly) > 0 {
		g.P()
		g.P("func Test", typeName, "_ReadOnlySetters(t *", testingT, ") {")
		g.P("x := &", typeName, "{}")
		for _, f := range readOnly {
			g.P("err := x.Set", f.GoName, "(\"v\")")
			g.P("if err == nil {")
			g.P("t.Fatal(\"Set", f.GoName, "() = nil error, want immutable attribute error\")")
			g.P("}")
			g.P("var immutable", f.GoName, " *", ag.runtime("ImmutableAttrError"))
			g.P("if !", genkit.GoImportPath("errors").Ident("As"), "(err, &immutable", f.GoName, ") {")
			g.P("t.Errorf(\"Set", f.GoName, "() error = %v, want ImmutableAttrError\", err)")
			g.P("}")
			g.P("if got := x.", f.GoName, "(); got != nil {")
			g.P("t.Errorf(\"", f.GoName, "() = %v after rejected set, want nil\", got)")
			g.P("}")
		}
		g.P("}")
	}

	// Deprecated setters store and emit a notice per call
	if len(deprecated) > 0 {
		g.P()
		g.P("func Test", typeName, "_DeprecatedSetters(t *", testingT, ") {")
		g.P("var buf ", genkit.GoImportPath("bytes").Ident("Buffer"))
		g.P("prev := ", ag.runtime("SetDeprecationOutput"), "(&buf)")
		g.P("defer ", ag.runtime("SetDeprecationOutput"), "(prev)")
		g.P()
		g.P("x := &", typeName, "{}")
		for _, f := range deprecated {
			val := fmt.Sprintf("%q", "value-"+f.Name)
			g.P("if got := x.Set", f.GoName, "(", val, "); got != ", val, " {")
			g.P("t.Errorf(\"Set", f.GoName, "() = %v, want ", "value-"+f.Name, "\", got)")
			g.P("}")
			g.P("if got := x.", f.GoName, "(); got != ", val, " {")
			g.P("t.Errorf(\"", f.GoName, "() = %v, want ", "value-"+f.Name, "\", got)")
			g.P("}")
			g.P("if !", genkit.GoImportPath("strings").Ident("Contains"), "(buf.String(), ", fmt.Sprintf("%q", f.Name), ") {")
			g.P("t.Errorf(\"deprecation notice %q does not mention ", f.Name, "\", buf.String())")
			g.P("}")
		}
		g.P("}")
	}

	// Constructor population, only when we generated the constructor
	if !d.Type.Pkg.HasFunc("New" + typeName) {
		g.P()
		g.P("func TestNew", typeName, "(t *", testingT, ") {")
		var kv []any
		for i, f := range all {
			if i > 0 {
				kv = append(kv, ", ")
			}
			kv = append(kv, fmt.Sprintf("%q", f.Name), ", ", fmt.Sprintf("%q", "value-"+f.Name))
		}
		g.P(append(append([]any{"x := New", typeName, "("}, kv...), ")")...)
		g.P("if x == nil {")
		g.P("t.Fatal(\"New", typeName, "() = nil\")")
		g.P("}")
		for _, f := range all {
			val := fmt.Sprintf("%q", "value-"+f.Name)
			g.P("if got := x.", f.GoName, "(); got != ", val, " {")
			g.P("t.Errorf(\"", f.GoName, "() = %v, want ", "value-"+f.Name, "\", got)")
			g.P("}")
		}
		g.P("}")
	}
}
