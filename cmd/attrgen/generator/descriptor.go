package generator

import (
	"go/types"
	"regexp"
	"strings"

	"github.com/tlipoca9/attrgen/genkit"
)

// Modifier controls how a field's generated setter behaves.
type Modifier int

const (
	// ModifierNone is a plain field: the setter stores and returns the value.
	ModifierNone Modifier = iota
	// ModifierReadOnly ("-name") fields reject writes after construction.
	ModifierReadOnly
	// ModifierDeprecated ("^name") fields store normally but emit a
	// deprecation notice on every setter call.
	ModifierDeprecated
)

// String returns the human-readable modifier name.
func (m Modifier) String() string {
	switch m {
	case ModifierReadOnly:
		return "read-only"
	case ModifierDeprecated:
		return "deprecated"
	default:
		return "normal"
	}
}

// FieldSpec is a single attribute declared in an @attrs annotation.
type FieldSpec struct {
	Name     string // declared lower_snake name (sigil stripped)
	Key      string // derived storage key, always uppercase
	GoName   string // exported CamelCase accessor name
	Modifier Modifier
	Owner    string // name of the type whose annotation declared the field
}

var fieldNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ParseFieldSpecs parses the positional flags of an @attrs annotation into
// field specs, in declaration order. A leading "-" marks the field read-only,
// a leading "^" marks its setter deprecated. Flags that are not valid
// lower_snake identifiers after the sigil are returned separately.
func ParseFieldSpecs(ann *genkit.Annotation, owner string) (specs []FieldSpec, invalid []string) {
	for _, flag := range ann.Flags {
		name := flag
		mod := ModifierNone
		switch {
		case strings.HasPrefix(flag, "-"):
			mod = ModifierReadOnly
			name = flag[1:]
		case strings.HasPrefix(flag, "^"):
			mod = ModifierDeprecated
			name = flag[1:]
		}
		if !fieldNameRe.MatchString(name) {
			invalid = append(invalid, flag)
			continue
		}
		specs = append(specs, FieldSpec{
			Name:     name,
			Key:      strings.ToUpper(name),
			GoName:   CamelName(name),
			Modifier: mod,
			Owner:    owner,
		})
	}
	return specs, invalid
}

// CamelName converts a lower_snake attribute name to its exported Go form.
// Example: "zip_code" -> "ZipCode".
func CamelName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// Descriptor ties an annotated type to its parsed field specs and resolved
// parent. Fields accessors are only generated for Own; descendants see them
// through Go method promotion.
type Descriptor struct {
	Type *genkit.Type

	// Own are the fields declared by this type's annotation.
	Own []FieldSpec

	// Invalid holds annotation flags that failed name validation.
	Invalid []string

	// Parents are embedded annotated types. Exactly one is legal; more is a
	// declaration error.
	Parents []*Descriptor

	// PointerEmbeds names annotated parents (or the storage record) embedded
	// by pointer. The generated constructor cannot populate a nil embedded
	// pointer, so these are declaration errors.
	PointerEmbeds []string

	// HasRecord is set when the type embeds the attrs storage record directly
	// (chain root).
	HasRecord bool
}

// Parent returns the single resolved parent, or nil for chain roots.
func (d *Descriptor) Parent() *Descriptor {
	if len(d.Parents) == 0 {
		return nil
	}
	return d.Parents[0]
}

// All returns the flattened field list of the inheritance chain, ancestors
// first, each in its own declaration order.
func (d *Descriptor) All() []FieldSpec {
	p := d.Parent()
	if p == nil {
		return d.Own
	}
	inherited := p.All()
	all := make([]FieldSpec, 0, len(inherited)+len(d.Own))
	all = append(all, inherited...)
	return append(all, d.Own...)
}

// Registry indexes annotated types across all loaded packages so parent
// chains can cross package boundaries.
type Registry struct {
	byName map[string]*Descriptor // "import/path.TypeName"
	order  []*Descriptor          // declaration order across packages
}

// BuildRegistry scans every loaded package for attrgen:@attrs annotations and
// resolves each type's parent chain.
func BuildRegistry(gen *genkit.Generator) *Registry {
	r := &Registry{byName: make(map[string]*Descriptor)}

	for _, pkg := range gen.Packages {
		for _, t := range pkg.Types {
			ann := genkit.GetAnnotation(t.Doc, ToolName, "attrs")
			if ann == nil || !t.IsStruct {
				continue
			}
			specs, invalid := ParseFieldSpecs(ann, t.Name)
			d := &Descriptor{Type: t, Own: specs, Invalid: invalid}
			r.byName[qualifiedTypeName(pkg.PkgPath, t.Name)] = d
			r.order = append(r.order, d)
		}
	}

	for _, d := range r.order {
		r.resolveParents(d)
	}

	return r
}

// Lookup returns the descriptor for a type, or nil.
func (r *Registry) Lookup(pkgPath, typeName string) *Descriptor {
	return r.byName[qualifiedTypeName(pkgPath, typeName)]
}

// InPackage returns the descriptors declared in pkg, in declaration order.
func (r *Registry) InPackage(pkg *genkit.Package) []*Descriptor {
	var ds []*Descriptor
	for _, d := range r.order {
		if d.Type.Pkg == pkg {
			ds = append(ds, d)
		}
	}
	return ds
}

func qualifiedTypeName(pkgPath, typeName string) string {
	if pkgPath == "" {
		return typeName
	}
	return pkgPath + "." + typeName
}

// resolveParents inspects a type's embedded fields for annotated parents and
// the storage record. Resolution goes through go/types when available so
// cross-package embedding works; hand-built packages without type information
// fall back to the AST field list.
func (r *Registry) resolveParents(d *Descriptor) {
	pkg := d.Type.Pkg
	if pkg != nil && pkg.TypesPkg != nil {
		r.resolveParentsTyped(d, pkg.TypesPkg)
		return
	}

	for _, f := range d.Type.Fields {
		if !f.Embedded {
			continue
		}
		byPointer := strings.HasPrefix(f.Type, "*")
		if f.Name == "Record" {
			if byPointer {
				d.PointerEmbeds = append(d.PointerEmbeds, f.Name)
				continue
			}
			d.HasRecord = true
			continue
		}
		pkgPath := ""
		if pkg != nil {
			pkgPath = pkg.PkgPath
		}
		if p := r.Lookup(pkgPath, f.Name); p != nil {
			if byPointer {
				d.PointerEmbeds = append(d.PointerEmbeds, f.Name)
				continue
			}
			d.Parents = append(d.Parents, p)
		}
	}
}

func (r *Registry) resolveParentsTyped(d *Descriptor, tpkg *types.Package) {
	obj := tpkg.Scope().Lookup(d.Type.Name)
	if obj == nil {
		return
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return
	}

	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		t := f.Type()
		byPointer := false
		if ptr, ok := t.(*types.Pointer); ok {
			byPointer = true
			t = ptr.Elem()
		}
		named, ok := t.(*types.Named)
		if !ok {
			continue
		}
		tn := named.Obj()
		if tn.Pkg() != nil {
			if p := r.Lookup(tn.Pkg().Path(), tn.Name()); p != nil {
				if byPointer {
					d.PointerEmbeds = append(d.PointerEmbeds, tn.Name())
					continue
				}
				d.Parents = append(d.Parents, p)
				continue
			}
		}
		if isRecordType(named) {
			if byPointer {
				d.PointerEmbeds = append(d.PointerEmbeds, tn.Name())
				continue
			}
			d.HasRecord = true
		}
	}
}

// isRecordType reports whether a named type is an attrs storage record, by
// shape: map[string]any. Shape matching keeps embedded runtime copies
// (attrgen embed) working without importing the canonical package.
func isRecordType(named *types.Named) bool {
	m, ok := named.Underlying().(*types.Map)
	if !ok {
		return false
	}
	k, ok := m.Key().Underlying().(*types.Basic)
	if !ok || k.Kind() != types.String {
		return false
	}
	iface, ok := m.Elem().Underlying().(*types.Interface)
	return ok && iface.NumMethods() == 0
}
