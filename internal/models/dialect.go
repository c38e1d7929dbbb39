package models

import (
	"path/filepath"
	"strings"
)

// Dialect selects the grammar a module is parsed with
type Dialect string

const (
	// DialectTS covers plain JavaScript and TypeScript modules
	DialectTS Dialect = "ts"
	// DialectTSX covers modules that embed JSX markup
	DialectTSX Dialect = "tsx"
)

// ParseDialect converts a user supplied name, defaulting to DialectTS
func ParseDialect(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tsx", "jsx":
		return DialectTSX
	default:
		return DialectTS
	}
}

// DialectForPath infers the dialect from a module's file extension.
// Query strings appended by bundlers are ignored.
func DialectForPath(path string) Dialect {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return DialectTSX
	default:
		return DialectTS
	}
}
