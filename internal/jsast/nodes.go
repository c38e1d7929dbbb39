package jsast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node types used by the metadata passes
const (
	NodeError                   = "ERROR"
	NodeComment                 = "comment"
	NodeCallExpression          = "call_expression"
	NodeIdentifier              = "identifier"
	NodeObject                  = "object"
	NodeArray                   = "array"
	NodePair                    = "pair"
	NodeShorthandProperty       = "shorthand_property_identifier"
	NodeMethodDefinition        = "method_definition"
	NodeSpreadElement           = "spread_element"
	NodeComputedPropertyName    = "computed_property_name"
	NodePropertyIdentifier      = "property_identifier"
	NodePrivatePropertyIdent    = "private_property_identifier"
	NodeString                  = "string"
	NodeStringFragment          = "string_fragment"
	NodeEscapeSequence          = "escape_sequence"
	NodeNumber                  = "number"
	NodeTrue                    = "true"
	NodeFalse                   = "false"
	NodeNull                    = "null"
	NodeUnaryExpression         = "unary_expression"
	NodeImportSpecifier         = "import_specifier"
	NodeParenthesizedExpression = "parenthesized_expression"
	NodeExportStatement         = "export_statement"
	NodeExportClause            = "export_clause"
	NodeExportSpecifier         = "export_specifier"
	NodeNamespaceExport         = "namespace_export"
	NodeObjectPattern           = "object_pattern"
	NodeArrayPattern            = "array_pattern"
)

// KeyKind classifies an object-literal property key
type KeyKind int

const (
	KeyIdentifier KeyKind = iota
	KeyString
	KeyComputed
	KeySpread
	KeyOther
)

// Key is a resolved property key
type Key struct {
	Name string
	Kind KeyKind
}

// IsStatic reports whether the key is a plain identifier or string name
func (k Key) IsStatic() bool {
	return k.Kind == KeyIdentifier || k.Kind == KeyString
}

// namedChildren returns n's named children with comments dropped
func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == NodeComment {
			continue
		}
		out = append(out, child)
	}
	return out
}

// NamedChildren returns n's named children with comments dropped
func (t *Tree) NamedChildren(n *sitter.Node) []*sitter.Node {
	return namedChildren(n)
}

// Statements returns the top-level statements of the module
func (t *Tree) Statements() []*sitter.Node {
	return namedChildren(t.Root())
}

// ExportedName returns the name an export specifier or namespace export
// exposes: the alias when there is one, string names decoded
func (t *Tree) ExportedName(n *sitter.Node) string {
	var name *sitter.Node
	switch n.Type() {
	case NodeExportSpecifier:
		name = n.ChildByFieldName("alias")
		if name == nil {
			name = n.ChildByFieldName("name")
		}
	case NodeNamespaceExport:
		if count := int(n.ChildCount()); count > 0 {
			name = n.Child(count - 1)
		}
	}
	if name == nil {
		return ""
	}
	if name.Type() == NodeString {
		value, err := t.StringValue(name)
		if err != nil {
			return ""
		}
		return value
	}
	return t.Text(name)
}

// DeclaredName returns the binding a declaration introduces. Destructuring
// and anonymous declarations have none.
func (t *Tree) DeclaredName(decl *sitter.Node) string {
	if name := decl.ChildByFieldName("name"); name != nil {
		switch name.Type() {
		case NodeObjectPattern, NodeArrayPattern:
			return ""
		}
		return t.Text(name)
	}
	// variable declarations and `declare` wrappers hold the named node
	if children := namedChildren(decl); len(children) > 0 {
		return t.DeclaredName(children[0])
	}
	return ""
}

// CalleeName returns the identifier a call expression invokes. Member
// expressions, optional calls and anything else report false.
func (t *Tree) CalleeName(call *sitter.Node) (string, bool) {
	if call.Type() != NodeCallExpression {
		return "", false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != NodeIdentifier {
		return "", false
	}
	return t.Text(fn), true
}

// Arguments returns the positional arguments of a call expression
func (t *Tree) Arguments(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	return namedChildren(args)
}

// Properties returns the entries of an object literal in source order
func (t *Tree) Properties(obj *sitter.Node) []*sitter.Node {
	return namedChildren(obj)
}

// Elements returns the elements of an array literal. holes reports whether
// the array contains an elision such as [a, , b].
func (t *Tree) Elements(arr *sitter.Node) (elements []*sitter.Node, holes bool) {
	expectElement := true
	for i := 0; i < int(arr.ChildCount()); i++ {
		child := arr.Child(i)
		switch {
		case child.Type() == NodeComment:
			continue
		case child.Type() == "[":
			expectElement = true
		case child.Type() == ",":
			if expectElement {
				holes = true
			}
			expectElement = true
		case child.Type() == "]":
		case child.IsNamed():
			elements = append(elements, child)
			expectElement = false
		}
	}
	return elements, holes
}

// PropertyKey resolves the key of an object-literal entry
func (t *Tree) PropertyKey(prop *sitter.Node) Key {
	switch prop.Type() {
	case NodeSpreadElement:
		return Key{Kind: KeySpread}
	case NodeShorthandProperty:
		return Key{Name: t.Text(prop), Kind: KeyIdentifier}
	case NodePair:
		return t.keyOf(prop.ChildByFieldName("key"))
	case NodeMethodDefinition:
		return t.keyOf(prop.ChildByFieldName("name"))
	default:
		return Key{Kind: KeyOther}
	}
}

func (t *Tree) keyOf(key *sitter.Node) Key {
	if key == nil {
		return Key{Kind: KeyOther}
	}
	switch key.Type() {
	case NodePropertyIdentifier, NodeIdentifier:
		return Key{Name: t.Text(key), Kind: KeyIdentifier}
	case NodeString:
		value, err := t.StringValue(key)
		if err != nil {
			return Key{Kind: KeyOther}
		}
		return Key{Name: value, Kind: KeyString}
	case NodeComputedPropertyName:
		return Key{Kind: KeyComputed}
	default:
		return Key{Kind: KeyOther}
	}
}

// PropertyValue returns the value expression of an object-literal entry.
// Shorthand properties are their own value; methods have none.
func (t *Tree) PropertyValue(prop *sitter.Node) *sitter.Node {
	switch prop.Type() {
	case NodePair:
		return prop.ChildByFieldName("value")
	case NodeShorthandProperty:
		return prop
	default:
		return nil
	}
}

// ImportSpecifier returns the imported and local names of an import
// specifier such as `{ a as b }`
func (t *Tree) ImportSpecifier(spec *sitter.Node) (imported, local string, ok bool) {
	if spec.Type() != NodeImportSpecifier {
		return "", "", false
	}
	name := spec.ChildByFieldName("name")
	if name == nil {
		return "", "", false
	}
	if name.Type() == NodeString {
		value, err := t.StringValue(name)
		if err != nil {
			return "", "", false
		}
		imported = value
	} else {
		imported = t.Text(name)
	}
	local = imported
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		local = t.Text(alias)
	}
	return imported, local, true
}

// StringValue decodes a string literal node into its runtime value
func (t *Tree) StringValue(n *sitter.Node) (string, error) {
	if n.Type() != NodeString {
		return "", fmt.Errorf("node %s is not a string literal", n.Type())
	}

	var b strings.Builder
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case NodeStringFragment:
			b.WriteString(t.Text(child))
		case NodeEscapeSequence:
			decoded, err := decodeEscape(t.Text(child))
			if err != nil {
				return "", err
			}
			b.WriteString(decoded)
		}
	}
	return b.String(), nil
}

func decodeEscape(seq string) (string, error) {
	if len(seq) < 2 || seq[0] != '\\' {
		return "", fmt.Errorf("invalid escape sequence %q", seq)
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case 'r':
		return "\r", nil
	case 'b':
		return "\b", nil
	case 'f':
		return "\f", nil
	case 'v':
		return "\v", nil
	case '0':
		if len(body) == 1 {
			return "\x00", nil
		}
	case '\n', '\r':
		return "", nil
	case 'x':
		v, err := strconv.ParseUint(body[1:], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid escape sequence %q: %w", seq, err)
		}
		return string(rune(v)), nil
	case 'u':
		hex := strings.TrimSuffix(strings.TrimPrefix(body[1:], "{"), "}")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return "", fmt.Errorf("invalid escape sequence %q", seq)
		}
		return string(rune(v)), nil
	}
	// Any other escaped character stands for itself
	return body, nil
}
