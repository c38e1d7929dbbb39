// Package rewriter strips already-extracted plugin metadata from module
// source so the shipped bundle carries no metadata literals.
package rewriter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/exports"
	"github.com/toyz/pluginmeta/internal/extractor"
	"github.com/toyz/pluginmeta/internal/jsast"
	"github.com/toyz/pluginmeta/internal/models"
	"github.com/toyz/pluginmeta/internal/textedit"
	"github.com/toyz/pluginmeta/internal/utils"
)

// StubCode replaces plugins that cannot be scheduled
const StubCode = "export default () => {}"

// Logger receives the engine's diagnostics
type Logger interface {
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Lookup resolves a normalized module path to its registry entry
type Lookup interface {
	Lookup(id string) (models.Plugin, bool)
}

// LookupFunc adapts a function to Lookup
type LookupFunc func(id string) (models.Plugin, bool)

// Lookup implements Lookup
func (f LookupFunc) Lookup(id string) (models.Plugin, bool) {
	return f(id)
}

// SourcemapOptions mirrors the build's source map settings per target
type SourcemapOptions struct {
	Client bool `json:"client" yaml:"client" mapstructure:"client"`
	Server bool `json:"server" yaml:"server" mapstructure:"server"`
}

// Enabled reports whether any target keeps source maps
func (o SourcemapOptions) Enabled() bool {
	return o.Client || o.Server
}

// Kind describes what a transform produced
type Kind string

const (
	KindStub   Kind = "stub"
	KindEdited Kind = "edited"
)

// Result is the output of a transform that changed the module
type Result struct {
	Code string              `json:"code"`
	Map  *textedit.SourceMap `json:"map,omitempty"`
	Kind Kind                `json:"kind"`
}

// metadataKeys are the properties removed from registration calls
var metadataKeys = map[string]bool{
	extractor.KeyOrder:   true,
	extractor.KeyEnforce: true,
	extractor.KeyName:    true,
}

// Engine rewrites plugin modules known to the registry.
//
// Engine is safe for concurrent use; every Transform call works on its own
// tree and editor.
type Engine struct {
	lookup    Lookup
	logger    Logger
	sourcemap SourcemapOptions
	parser    *jsast.Parser
}

// Option configures an Engine
type Option func(*Engine)

// WithSourcemap sets the build's source map configuration
func WithSourcemap(opts SourcemapOptions) Option {
	return func(e *Engine) {
		e.sourcemap = opts
	}
}

// WithParser shares a parser between components
func WithParser(p *jsast.Parser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// NewEngine creates a rewrite engine reading entries from lookup
func NewEngine(lookup Lookup, logger Logger, opts ...Option) *Engine {
	e := &Engine{
		lookup: lookup,
		logger: logger,
		parser: jsast.NewParser(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transform rewrites one module. A nil result means the module is left
// untouched: it is not a known plugin, it has nothing to strip, or it
// could not be parsed.
func (e *Engine) Transform(code, id string) *Result {
	id = utils.NormalizePath(id)
	plugin, ok := e.lookup.Lookup(id)
	if !ok {
		return nil
	}

	if strings.TrimSpace(code) == "" {
		e.logger.Warn("Plugin `%s` has no content.", plugin.Src)
		return &Result{Code: StubCode, Kind: KindStub}
	}

	tree, err := e.parse(code, id)
	if err != nil {
		e.logger.Error("Failed to remove metadata from plugin `%s`: %v", plugin.Src, err)
		return nil
	}
	defer tree.Close()

	if !exports.HasDefaultExport(tree) {
		e.logger.Warn("Plugin `%s` has no default export and will be ignored at build time. Add `export default defineNuxtPlugin(() => {})` to your plugin.", plugin.Src)
		return &Result{Code: StubCode, Kind: KindStub}
	}

	editor := textedit.New(code)
	wrapped, err := e.strip(tree, editor, plugin)
	if err != nil {
		e.logger.Error("Failed to remove metadata from plugin `%s`: %v", plugin.Src, err)
		return nil
	}

	if !wrapped {
		e.logger.Warn("Plugin `%s` is not wrapped in `defineNuxtPlugin`. It is advised to wrap your plugins as in the future this may enable enhancements.", plugin.Src)
	}

	if !editor.HasChanged() {
		return nil
	}

	result := &Result{Code: editor.String(), Kind: KindEdited}
	if e.sourcemap.Enabled() {
		result.Map = editor.GenerateMap(textedit.MapOptions{
			Source:         id,
			IncludeContent: true,
			Hires:          true,
		})
	}
	return result
}

// parse builds a clean syntax tree for the module. Trees with recovered
// syntax errors are rejected.
func (e *Engine) parse(code, id string) (*jsast.Tree, error) {
	tree, err := e.parser.Parse([]byte(code), models.DialectForPath(id))
	if err != nil {
		return nil, errors.NewParseError(id, err)
	}

	if tree.HasError() {
		loc, _ := tree.FirstError()
		loc.File = id
		tree.Close()
		return nil, errors.New(errors.ParseErrorCode, "syntax error").WithLocation(loc)
	}
	return tree, nil
}

// strip removes metadata properties from every registration call in the
// module and reports whether any registration call was found
func (e *Engine) strip(tree *jsast.Tree, editor *textedit.Editor, plugin models.Plugin) (bool, error) {
	wrappers := wrapperNames(tree)
	removable := plugin.HasName() || plugin.HasOrder()

	wrapped := false
	err := tree.Walk(func(n *sitter.Node) error {
		name, ok := tree.CalleeName(n)
		if !ok || !wrappers[name] {
			return nil
		}
		wrapped = true

		if !removable {
			return nil
		}
		return removeMetadata(tree, editor, n)
	})
	return wrapped, err
}

// wrapperNames collects the local names bound to the registration wrappers,
// including renamed imports such as `import { defineNuxtPlugin as define }`
func wrapperNames(tree *jsast.Tree) map[string]bool {
	names := map[string]bool{
		extractor.DefineNuxtPlugin:    true,
		extractor.DefinePayloadPlugin: true,
	}
	_ = tree.Walk(func(n *sitter.Node) error {
		imported, local, ok := tree.ImportSpecifier(n)
		if ok && (imported == extractor.DefineNuxtPlugin || imported == extractor.DefinePayloadPlugin) {
			names[local] = true
		}
		return nil
	})
	return names
}

// removeMetadata deletes each metadata property of the call's object
// arguments. A deletion runs from the property's start to the start of the
// next property, so the separator goes with it. The last property of an
// object extends to the closing brace.
func removeMetadata(tree *jsast.Tree, editor *textedit.Editor, call *sitter.Node) error {
	args := tree.Arguments(call)
	for argIndex, arg := range args {
		if arg.Type() != jsast.NodeObject {
			continue
		}

		closeBrace := int(arg.EndByte()) - 1
		props := tree.Properties(arg)
		for propIndex, prop := range props {
			key := tree.PropertyKey(prop)
			if !key.IsStatic() || !metadataKeys[key.Name] {
				continue
			}

			end := closeBrace
			switch {
			case propIndex+1 < len(props):
				end = int(props[propIndex+1].StartByte())
			case argIndex+1 < len(args):
				end = min(int(args[argIndex+1].StartByte()), closeBrace)
			}

			if err := editor.Remove(int(prop.StartByte()), end); err != nil {
				return err
			}
		}
	}
	return nil
}
