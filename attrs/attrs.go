// Package attrs is the runtime support package for attrgen-generated code.
//
// Generated object types embed Record, a key/value mapping that holds every
// attribute value under an uppercase storage key. The generated accessors,
// constants and constructors all resolve to the small surface in this
// package, which keeps it embeddable: `attrgen embed` can copy this package
// into a consuming project so generated code carries no external dependency.
package attrs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Key derives the storage key for an attribute name.
// Keys are uppercased so they cannot collide with unrelated map keys a
// subclass or mixin may store directly in the same Record.
func Key(name string) string {
	return strings.ToUpper(name)
}

// Values is the aggregate form accepted by generated constructors:
//
//	NewAddress(attrs.Values{"city": "Berlin"})
type Values map[string]any

// Record is the underlying storage of a generated object: a mapping from
// storage key to arbitrary value. Each instance owns its Record exclusively;
// any concurrent access discipline is the caller's concern.
type Record map[string]any

// NewRecord builds a Record from initial attribute values.
//
// Accepted forms:
//   - an even-length sequence of (name, value) pairs
//   - a single Values or map[string]any aggregate
//
// Names are mapped to storage keys with Key, so both attribute names and
// storage keys are accepted. Unknown names pass through as opaque keys on
// purpose: internal attributes that expose no accessor are still settable at
// construction time. A dangling trailing name is stored with a nil value.
func NewRecord(kv ...any) Record {
	r := make(Record, len(kv)/2)

	if len(kv) == 1 {
		switch m := kv[0].(type) {
		case Values:
			for name, v := range m {
				r[Key(name)] = v
			}
			return r
		case map[string]any:
			for name, v := range m {
				r[Key(name)] = v
			}
			return r
		}
	}

	for i := 0; i < len(kv); i += 2 {
		key := Key(keyString(kv[i]))
		if i+1 < len(kv) {
			r[key] = kv[i+1]
		} else {
			r[key] = nil
		}
	}
	return r
}

// keyString coerces a constructor key argument to a string.
func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// Attr returns the value stored under key, or nil if absent.
func (r Record) Attr(key string) any {
	return r[key]
}

// Has reports whether a value is stored under key.
// A stored nil counts as present; Init hooks rely on this to fill defaults
// only for attributes the constructor never saw.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Len returns the number of stored attributes.
func (r Record) Len() int {
	return len(r)
}

// SetAttr stores v under key and returns v.
// The receiver is a pointer so a zero-value Record is usable.
func (r *Record) SetAttr(key string, v any) any {
	if *r == nil {
		*r = make(Record)
	}
	(*r)[key] = v
	return v
}

// Initializer is the optional init hook of a generated type. When a type (or
// an embedded ancestor) defines Init, the generated constructor invokes it
// once, after attribute population, so it can fill defaults for unset
// attributes.
type Initializer interface {
	Init()
}

// ImmutableAttrError is returned by the setter of a read-only attribute.
// The write never happens; read-only attributes can only be assigned through
// the constructor.
type ImmutableAttrError struct {
	// Type is the object type whose setter was invoked.
	Type string
	// Attr is the read-only attribute name.
	Attr string
}

func (e *ImmutableAttrError) Error() string {
	return fmt.Sprintf("attrs: attribute %q of %s is read-only", e.Attr, e.Type)
}

var (
	deprecationMu sync.Mutex
	deprecationW  io.Writer = os.Stderr
)

// SetDeprecationOutput redirects deprecation notices, returning the previous
// writer. Tests use it to capture notices.
func SetDeprecationOutput(w io.Writer) io.Writer {
	deprecationMu.Lock()
	defer deprecationMu.Unlock()
	prev := deprecationW
	deprecationW = w
	return prev
}

// Deprecated emits a single deprecation notice for a setter invocation.
// The write still happens; the notice identifies the attribute and type so
// the call site can be migrated.
func Deprecated(typeName, attr string) {
	deprecationMu.Lock()
	defer deprecationMu.Unlock()
	fmt.Fprintf(deprecationW, "attrs: setter for attribute %q of %s is deprecated\n", attr, typeName)
}
