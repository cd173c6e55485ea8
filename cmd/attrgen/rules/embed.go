// Package rules contains embedded rule content for attrgen.
package rules

import _ "embed"

//go:embed attrgen.md
var AttrgenRule string
