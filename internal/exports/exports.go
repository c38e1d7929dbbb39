// Package exports lists the ES module exports of a parsed source file.
package exports

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/toyz/pluginmeta/internal/jsast"
)

// Type classifies an export statement
type Type string

const (
	TypeDefault     Type = "default"
	TypeNamed       Type = "named"
	TypeDeclaration Type = "declaration"
	TypeStar        Type = "star"
)

// Export is one exported binding
type Export struct {
	Type Type
	Name string
	// From is the module specifier of a re-export
	From string
	// Offset is the byte offset of the export statement
	Offset int
}

// FindExports lists the exports declared at the top level of a module, in
// source order
func FindExports(t *jsast.Tree) []Export {
	var out []Export
	for _, stmt := range t.Statements() {
		if stmt.Type() != jsast.NodeExportStatement {
			continue
		}
		out = append(out, statementExports(t, stmt)...)
	}
	return out
}

// HasDefaultExport reports whether the module exposes a default export
func HasDefaultExport(t *jsast.Tree) bool {
	for _, exp := range FindExports(t) {
		if exp.Type == TypeDefault {
			return true
		}
	}
	return false
}

func statementExports(t *jsast.Tree, stmt *sitter.Node) []Export {
	offset := int(stmt.StartByte())
	from := ""
	if source := stmt.ChildByFieldName("source"); source != nil {
		from, _ = t.StringValue(source)
	}

	var (
		out  []Export
		star bool
	)
	for i := 0; i < int(stmt.ChildCount()); i++ {
		child := stmt.Child(i)
		switch child.Type() {
		case "default":
			return []Export{{Type: TypeDefault, Name: "default", Offset: offset}}
		case "*":
			star = true
		case jsast.NodeExportClause:
			for _, spec := range t.NamedChildren(child) {
				if spec.Type() != jsast.NodeExportSpecifier {
					continue
				}
				out = append(out, named(t.ExportedName(spec), from, offset))
			}
		case jsast.NodeNamespaceExport:
			out = append(out, named(t.ExportedName(child), from, offset))
		}
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		out = append(out, Export{Type: TypeDeclaration, Name: t.DeclaredName(decl), Offset: offset})
	}
	if star && len(out) == 0 {
		out = append(out, Export{Type: TypeStar, From: from, Offset: offset})
	}
	return out
}

func named(name, from string, offset int) Export {
	exp := Export{Type: TypeNamed, Name: name, From: from, Offset: offset}
	if name == "default" {
		exp.Type = TypeDefault
	}
	return exp
}
