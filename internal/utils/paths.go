package utils

import (
	"path"
	"strings"
)

// NormalizePath converts a module id into the form used as a registry key:
// forward slashes, cleaned segments and an upper-case Windows drive letter.
// A bundler query string is kept verbatim, so `a.ts?macro=true` stays a
// different module from `a.ts`.
func NormalizePath(p string) string {
	query := ""
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p, query = p[:i], p[i:]
	}
	if p == "" {
		return query
	}

	p = strings.ReplaceAll(p, "\\", "/")
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		p = strings.ToUpper(p[:1]) + p[1:]
	}
	return path.Clean(p) + query
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
