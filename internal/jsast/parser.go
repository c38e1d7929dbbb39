// Package jsast parses JavaScript and TypeScript modules with tree-sitter and
// exposes the handful of node shapes the metadata passes care about.
package jsast

import (
	"context"
	"fmt"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/models"
)

// Parser produces syntax trees for module source.
//
// Parser is safe for concurrent use. Each Parse call creates its own
// tree-sitter parser instance; the only shared state is the parse counter.
type Parser struct {
	parses atomic.Int64
}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{}
}

// Parses returns how many times Parse has run
func (p *Parser) Parses() int64 {
	return p.parses.Load()
}

// Parse parses src with the grammar selected by dialect. Syntax errors do not
// fail the parse; callers that need a clean tree check Tree.HasError.
func (p *Parser) Parse(src []byte, dialect models.Dialect) (*Tree, error) {
	p.parses.Add(1)

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language(dialect))

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	return &Tree{tree: tree, src: src}, nil
}

func language(dialect models.Dialect) *sitter.Language {
	if dialect == models.DialectTSX {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

// Tree is a parsed module together with the source it was parsed from
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Root returns the program node
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Source returns the bytes the tree was parsed from
func (t *Tree) Source() []byte {
	return t.src
}

// Close releases the underlying tree-sitter tree
func (t *Tree) Close() {
	t.tree.Close()
}

// HasError reports whether the parse recovered from any syntax error
func (t *Tree) HasError() bool {
	return t.Root().HasError()
}

// FirstError returns the position of the first error or missing node
func (t *Tree) FirstError() (errors.SourceLocation, bool) {
	var found *sitter.Node
	_ = t.walkAll(t.Root(), func(n *sitter.Node) error {
		if n.Type() == NodeError || n.IsMissing() {
			found = n
			return errStop
		}
		return nil
	})
	if found == nil {
		return errors.SourceLocation{}, false
	}
	return t.Location(found, ""), true
}

// Text returns the source text covered by n
func (t *Tree) Text(n *sitter.Node) string {
	return string(t.src[n.StartByte():n.EndByte()])
}

// Location converts a node's start point into a 1-based source location
func (t *Tree) Location(n *sitter.Node, file string) errors.SourceLocation {
	p := n.StartPoint()
	return errors.SourceLocation{
		File:   file,
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}

var errStop = fmt.Errorf("stop")

// Walk visits every named node in source order. A non-nil error from fn stops
// the walk and is returned.
func (t *Tree) Walk(fn func(n *sitter.Node) error) error {
	stack := []*sitter.Node{t.Root()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(n); err != nil {
			return err
		}

		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}
	return nil
}

// walkAll visits named and anonymous nodes
func (t *Tree) walkAll(n *sitter.Node, fn func(n *sitter.Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if err := t.walkAll(n.Child(i), fn); err != nil {
			return err
		}
	}
	return nil
}
