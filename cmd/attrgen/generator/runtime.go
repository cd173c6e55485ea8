package generator

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates/attrs.go.tmpl templates/attrs_test.go.tmpl
var runtimeTemplates embed.FS

// RuntimeExport describes one file written by ExportRuntime.
type RuntimeExport struct {
	Path string
}

// ExportRuntime writes a standalone copy of the attrs runtime into dir as
// package pkgName, so a project can consume attrgen-generated code without
// importing this module. Existing copies are overwritten, which is how
// runtime upgrades propagate. With includeTests, a conformance test file for
// the copy is written as well.
func (ag *Generator) ExportRuntime(dir, pkgName string, includeTests bool) ([]RuntimeExport, error) {
	if pkgName == "" {
		pkgName = filepath.Base(dir)
	}

	type exportFile struct {
		tmpl string
		path string
	}
	files := []exportFile{
		{tmpl: "templates/attrs.go.tmpl", path: filepath.Join(dir, pkgName+"_attrs_runtime.go")},
	}
	if includeTests {
		files = append(files, exportFile{
			tmpl: "templates/attrs_test.go.tmpl",
			path: filepath.Join(dir, pkgName+"_attrs_runtime_test.go"),
		})
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}

	var exports []RuntimeExport
	for _, f := range files {
		tmplName, outPath := f.tmpl, f.path
		content, err := renderRuntimeTemplate(tmplName, pkgName)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(outPath, content, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", outPath, err)
		}
		exports = append(exports, RuntimeExport{Path: outPath})
	}

	return exports, nil
}

func renderRuntimeTemplate(name, pkgName string) ([]byte, error) {
	tmpl, err := template.ParseFS(runtimeTemplates, name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Package string }{Package: pkgName}); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return formatted, nil
}
