package jsast

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/pluginmeta/internal/models"
)

func parse(t *testing.T, code string, dialect models.Dialect) *Tree {
	t.Helper()
	tree, err := NewParser().Parse([]byte(code), dialect)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func firstCall(t *testing.T, tree *Tree, callee string) *sitter.Node {
	t.Helper()
	var found *sitter.Node
	_ = tree.Walk(func(n *sitter.Node) error {
		if name, ok := tree.CalleeName(n); ok && name == callee && found == nil {
			found = n
		}
		return nil
	})
	require.NotNil(t, found, "call to %s not found", callee)
	return found
}

func TestParser_CountsParses(t *testing.T) {
	p := NewParser()
	assert.Equal(t, int64(0), p.Parses())

	for i := 0; i < 3; i++ {
		tree, err := p.Parse([]byte("export default 1"), models.DialectTS)
		require.NoError(t, err)
		tree.Close()
	}
	assert.Equal(t, int64(3), p.Parses())
}

func TestTree_HasError(t *testing.T) {
	clean := parse(t, "export default defineNuxtPlugin(() => {})", models.DialectTS)
	assert.False(t, clean.HasError())

	broken := parse(t, "export default defineNuxtPlugin({ name: 'x', (", models.DialectTS)
	assert.True(t, broken.HasError())
	loc, ok := broken.FirstError()
	assert.True(t, ok)
	assert.Equal(t, 1, loc.Line)
}

func TestTree_TSXDialect(t *testing.T) {
	tree := parse(t, "export default defineNuxtPlugin(() => { const el = <div>hi</div> })", models.DialectTSX)
	assert.False(t, tree.HasError())
}

func TestTree_CallArgumentsAndProperties(t *testing.T) {
	code := `export default defineNuxtPlugin({
  // leading comment
  name: 'x',
  'order': -5,
  [key]: 1,
  ...rest,
  setup () {},
  hooks,
}, { dependsOn: ['a', 'b'] })`
	tree := parse(t, code, models.DialectTS)
	call := firstCall(t, tree, "defineNuxtPlugin")

	args := tree.Arguments(call)
	require.Len(t, args, 2)
	assert.Equal(t, NodeObject, args[0].Type())
	assert.Equal(t, NodeObject, args[1].Type())

	props := tree.Properties(args[0])
	require.Len(t, props, 6)

	expected := []Key{
		{Name: "name", Kind: KeyIdentifier},
		{Name: "order", Kind: KeyString},
		{Kind: KeyComputed},
		{Kind: KeySpread},
		{Name: "setup", Kind: KeyIdentifier},
		{Name: "hooks", Kind: KeyIdentifier},
	}
	for i, want := range expected {
		assert.Equal(t, want, tree.PropertyKey(props[i]), "property %d", i)
	}

	assert.Equal(t, NodeString, tree.PropertyValue(props[0]).Type())
	assert.Equal(t, NodeUnaryExpression, tree.PropertyValue(props[1]).Type())
	assert.Nil(t, tree.PropertyValue(props[4]))
	assert.Equal(t, NodeShorthandProperty, tree.PropertyValue(props[5]).Type())
}

func TestTree_CalleeNameIgnoresMembers(t *testing.T) {
	tree := parse(t, "app.defineNuxtPlugin({}); defineNuxtPlugin({})", models.DialectTS)
	count := 0
	_ = tree.Walk(func(n *sitter.Node) error {
		if name, ok := tree.CalleeName(n); ok && name == "defineNuxtPlugin" {
			count++
		}
		return nil
	})
	assert.Equal(t, 1, count)
}

func TestTree_Elements(t *testing.T) {
	tree := parse(t, "f(['a', 'b',], ['a', , 'b'])", models.DialectTS)
	args := tree.Arguments(firstCall(t, tree, "f"))
	require.Len(t, args, 2)

	elements, holes := tree.Elements(args[0])
	assert.Len(t, elements, 2)
	assert.False(t, holes)

	elements, holes = tree.Elements(args[1])
	assert.Len(t, elements, 2)
	assert.True(t, holes)
}

func TestTree_ImportSpecifier(t *testing.T) {
	tree := parse(t, "import { defineNuxtPlugin as dnp, definePayloadPlugin } from '#app'", models.DialectTS)

	var specs [][2]string
	_ = tree.Walk(func(n *sitter.Node) error {
		if imported, local, ok := tree.ImportSpecifier(n); ok {
			specs = append(specs, [2]string{imported, local})
		}
		return nil
	})

	assert.Equal(t, [][2]string{
		{"defineNuxtPlugin", "dnp"},
		{"definePayloadPlugin", "definePayloadPlugin"},
	}, specs)
}

func TestTree_StringValue(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{`f('plain')`, "plain"},
		{`f("double")`, "double"},
		{`f('it\'s')`, "it's"},
		{`f('tab\there')`, "tab\there"},
		{`f('\x41B\u{43}')`, "ABC"},
		{`f('')`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			tree := parse(t, tt.code, models.DialectTS)
			args := tree.Arguments(firstCall(t, tree, "f"))
			require.Len(t, args, 1)
			value, err := tree.StringValue(args[0])
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestTree_Location(t *testing.T) {
	tree := parse(t, "const a = 1\nf({ x: 1 })", models.DialectTS)
	call := firstCall(t, tree, "f")
	loc := tree.Location(call, "a.ts")
	assert.Equal(t, "a.ts", loc.File)
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 1, loc.Column)
}
