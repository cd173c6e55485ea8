package attrs

import (
	"bytes"
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "city", want: "CITY"},
		{name: "snake_case", in: "postal_code", want: "POSTAL_CODE"},
		{name: "already_upper", in: "CITY", want: "CITY"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewRecord_Pairs(t *testing.T) {
	r := NewRecord("city", "Berlin", "ZIP", "10117")
	if got := r.Attr("CITY"); got != "Berlin" {
		t.Errorf("Attr(CITY) = %v, want Berlin", got)
	}
	// Storage keys are accepted as-is alongside attribute names.
	if got := r.Attr("ZIP"); got != "10117" {
		t.Errorf("Attr(ZIP) = %v, want 10117", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestNewRecord_Aggregate(t *testing.T) {
	tests := []struct {
		name string
		arg  any
	}{
		{name: "values", arg: Values{"city": "Berlin"}},
		{name: "plain_map", arg: map[string]any{"city": "Berlin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord(tt.arg)
			if got := r.Attr("CITY"); got != "Berlin" {
				t.Errorf("Attr(CITY) = %v, want Berlin", got)
			}
		})
	}
}

func TestNewRecord_PassThroughKeys(t *testing.T) {
	// Unknown names are accepted as opaque keys without validation.
	r := NewRecord("_internal", 42)
	if got := r.Attr("_INTERNAL"); got != 42 {
		t.Errorf("Attr(_INTERNAL) = %v, want 42", got)
	}
}

func TestNewRecord_DanglingKey(t *testing.T) {
	r := NewRecord("city", "Berlin", "zip")
	if !r.Has("ZIP") {
		t.Error("Has(ZIP) = false, want true for dangling key")
	}
	if got := r.Attr("ZIP"); got != nil {
		t.Errorf("Attr(ZIP) = %v, want nil", got)
	}
}

func TestNewRecord_NonStringKey(t *testing.T) {
	r := NewRecord(7, "seven")
	if got := r.Attr("7"); got != "seven" {
		t.Errorf("Attr(7) = %v, want seven", got)
	}
}

func TestRecord_Has(t *testing.T) {
	r := NewRecord("city", nil)
	if !r.Has("CITY") {
		t.Error("Has(CITY) = false, want true for stored nil")
	}
	if r.Has("ZIP") {
		t.Error("Has(ZIP) = true, want false")
	}
}

func TestRecord_SetAttrOnZeroValue(t *testing.T) {
	var r Record
	if got := r.SetAttr("CITY", "Berlin"); got != "Berlin" {
		t.Errorf("SetAttr() = %v, want Berlin", got)
	}
	if got := r.Attr("CITY"); got != "Berlin" {
		t.Errorf("Attr(CITY) = %v, want Berlin", got)
	}
}

func TestRecord_AttrAbsent(t *testing.T) {
	var r Record
	if got := r.Attr("MISSING"); got != nil {
		t.Errorf("Attr(MISSING) = %v, want nil", got)
	}
}

func TestImmutableAttrError(t *testing.T) {
	err := &ImmutableAttrError{Type: "Address", Attr: "zip"}
	msg := err.Error()
	if !strings.Contains(msg, "zip") || !strings.Contains(msg, "Address") {
		t.Errorf("Error() = %q, want attribute and type identified", msg)
	}
	if !strings.Contains(msg, "read-only") {
		t.Errorf("Error() = %q, want read-only mentioned", msg)
	}
}

func TestDeprecated(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDeprecationOutput(&buf)
	defer SetDeprecationOutput(prev)

	Deprecated("Address", "email")
	Deprecated("Address", "email")

	notices := strings.Count(buf.String(), "deprecated")
	if notices != 2 {
		t.Errorf("got %d notices, want one per call (2)", notices)
	}
	if !strings.Contains(buf.String(), `"email"`) || !strings.Contains(buf.String(), "Address") {
		t.Errorf("notice %q does not identify attribute and type", buf.String())
	}
}
