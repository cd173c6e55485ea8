package genkit

import (
	"go/token"
	"testing"
)

func TestParseAnnotations(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantTool  string
		wantName  string
		wantFlags []string
		wantArgs  map[string]string
	}{
		{
			name:      "simple flags",
			doc:       "Address holds a postal address.\n\nattrgen:@attrs(city, state)",
			wantTool:  "attrgen",
			wantName:  "attrs",
			wantFlags: []string{"city", "state"},
		},
		{
			name:      "sigil flags",
			doc:       "attrgen:@attrs(city, -zip, ^email)",
			wantTool:  "attrgen",
			wantName:  "attrs",
			wantFlags: []string{"city", "-zip", "^email"},
		},
		{
			name:     "no args",
			doc:      "attrgen:@attrs",
			wantTool: "attrgen",
			wantName: "attrs",
		},
		{
			name:     "key value args",
			doc:      `attrgen:@attrs(suffix="_meta")`,
			wantTool: "attrgen",
			wantName: "attrs",
			wantArgs: map[string]string{"suffix": "_meta"},
		},
		{
			name:      "mixed args",
			doc:       "attrgen:@attrs(city, prefix=Addr)",
			wantTool:  "attrgen",
			wantName:  "attrs",
			wantFlags: []string{"city"},
			wantArgs:  map[string]string{"prefix": "Addr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anns := ParseAnnotations(tt.doc)
			if len(anns) != 1 {
				t.Fatalf("got %d annotations, want 1", len(anns))
			}
			ann := anns[0]
			if ann.Tool != tt.wantTool {
				t.Errorf("Tool = %q, want %q", ann.Tool, tt.wantTool)
			}
			if ann.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", ann.Name, tt.wantName)
			}
			if len(ann.Flags) != len(tt.wantFlags) {
				t.Fatalf("Flags = %v, want %v", ann.Flags, tt.wantFlags)
			}
			for i, f := range tt.wantFlags {
				if ann.Flags[i] != f {
					t.Errorf("Flags[%d] = %q, want %q", i, ann.Flags[i], f)
				}
			}
			for k, v := range tt.wantArgs {
				if got := ann.Get(k); got != v {
					t.Errorf("Get(%q) = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestParseAnnotations_None(t *testing.T) {
	anns := ParseAnnotations("Address holds a postal address.")
	if len(anns) != 0 {
		t.Errorf("got %d annotations, want 0", len(anns))
	}
}

func TestParseAnnotations_Multiple(t *testing.T) {
	doc := "attrgen:@attrs(city)\nother:@thing(x)"
	anns := ParseDoc(doc)
	if len(anns) != 2 {
		t.Fatalf("got %d annotations, want 2", len(anns))
	}
	if !anns.Has("attrgen", "attrs") {
		t.Error("Has(attrgen, attrs) = false")
	}
	if anns.Get("other", "thing") == nil {
		t.Error("Get(other, thing) = nil")
	}
	if anns.Has("attrgen", "enum") {
		t.Error("Has(attrgen, enum) = true, want false")
	}
}

func TestAnnotationHas(t *testing.T) {
	ann := GetAnnotation("attrgen:@attrs(city, -zip, tag=primary)", "attrgen", "attrs")
	if ann == nil {
		t.Fatal("GetAnnotation returned nil")
	}
	if !ann.Has("city") {
		t.Error("Has(city) = false")
	}
	if !ann.Has("-zip") {
		t.Error("Has(-zip) = false")
	}
	if !ann.Has("tag") {
		t.Error("Has(tag) = false")
	}
	if ann.Has("zip") {
		t.Error("Has(zip) = true, want false")
	}
	if got := ann.GetOr("tag", "none"); got != "primary" {
		t.Errorf("GetOr(tag) = %q, want %q", got, "primary")
	}
	if got := ann.GetOr("missing", "none"); got != "none" {
		t.Errorf("GetOr(missing) = %q, want %q", got, "none")
	}
}

func TestDiagnosticCollector(t *testing.T) {
	pos := token.Position{Filename: "addr.go", Line: 12, Column: 1}

	c := NewDiagnosticCollector("attrgen")
	c.Errorf("E001", pos, "invalid field name %q", "bad name").
		Warning("W001", "field shadows parent attribute", pos)

	diags := c.Collect()
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(diags))
	}
	if !c.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if diags[0].Code != "E001" || diags[0].Severity != DiagnosticError {
		t.Errorf("diags[0] = %+v", diags[0])
	}
	if diags[1].Severity != DiagnosticWarning {
		t.Errorf("diags[1].Severity = %q", diags[1].Severity)
	}

	warnOnly := NewDiagnosticCollector("attrgen")
	warnOnly.Warning("W002", "deprecated attribute accessed", pos)
	if warnOnly.HasErrors() {
		t.Error("HasErrors() = true for warnings only")
	}

	merged := NewDiagnosticCollector("attrgen").Merge(c).MergeSlice(warnOnly.Collect())
	if got := len(merged.Collect()); got != 3 {
		t.Errorf("merged has %d diagnostics, want 3", got)
	}
}
