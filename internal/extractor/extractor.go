// Package extractor statically resolves the scheduling metadata a plugin
// module declares in its registration call, without executing the module.
package extractor

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/jsast"
	"github.com/toyz/pluginmeta/internal/models"
	"github.com/toyz/pluginmeta/internal/order"
	"github.com/toyz/pluginmeta/internal/utils"
)

// Registration wrapper names
const (
	DefineNuxtPlugin    = "defineNuxtPlugin"
	DefinePayloadPlugin = "definePayloadPlugin"
)

// alreadyWrapped matches registration calls whose first argument starts with
// an identifier or a parenthesis. These never carry a descriptor object.
var alreadyWrapped = regexp.MustCompile(`defineNuxtPlugin\s*\([\w(]`)

// Extractor resolves PluginMeta records from module source and memoizes
// them by exact source text.
//
// Extractor is safe for concurrent use. Racing extractions of the same
// source recompute identical records; the last write to the cache wins.
type Extractor struct {
	parser *jsast.Parser
	cache  *utils.Cache[string, models.PluginMeta]
}

// Option configures an Extractor
type Option func(*Extractor)

// WithCacheSize bounds the number of memoized records
func WithCacheSize(size int) Option {
	return func(e *Extractor) {
		e.cache = utils.NewCache[string, models.PluginMeta](size)
	}
}

// WithParser shares a parser between components
func WithParser(p *jsast.Parser) Option {
	return func(e *Extractor) {
		e.parser = p
	}
}

// New creates a new extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{
		parser: jsast.NewParser(),
		cache:  utils.NewCache[string, models.PluginMeta](utils.DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parses reports how many times the extractor has parsed source
func (e *Extractor) Parses() int64 {
	return e.parser.Parses()
}

// ResetCache starts a new cache generation. Call it between independent
// builds served by the same process.
func (e *Extractor) ResetCache() {
	e.cache.NewGeneration()
}

// CacheStats returns statistics for the metadata cache
func (e *Extractor) CacheStats() utils.CacheStats {
	return e.cache.GetStats()
}

// Extract resolves the metadata of one module. Modules without a
// registration call yield an empty record.
func (e *Extractor) Extract(code string, dialect models.Dialect) (models.PluginMeta, error) {
	return e.extract(code, dialect, "")
}

// ExtractModule is Extract with the dialect inferred from id, which is also
// reported in error locations
func (e *Extractor) ExtractModule(id, code string) (models.PluginMeta, error) {
	return e.extract(code, models.DialectForPath(id), id)
}

func (e *Extractor) extract(code string, dialect models.Dialect, file string) (models.PluginMeta, error) {
	if cached, ok := e.cache.Get(code); ok {
		return cached.Clone(), nil
	}

	if alreadyWrapped.MatchString(code) {
		return models.PluginMeta{}, nil
	}

	tree, err := e.parser.Parse([]byte(code), dialect)
	if err != nil {
		return models.PluginMeta{}, errors.NewParseError(file, err)
	}
	defer tree.Close()

	meta := models.PluginMeta{}
	err = tree.Walk(func(n *sitter.Node) error {
		name, ok := tree.CalleeName(n)
		if !ok || (name != DefineNuxtPlugin && name != DefinePayloadPlugin) {
			return nil
		}

		if name == DefinePayloadPlugin {
			meta.Order = models.IntPtr(order.MustValue(order.UserRevivers))
		}

		args := tree.Arguments(n)
		if len(args) > 1 {
			metaArg := args[1]
			if metaArg.Type() != jsast.NodeObject {
				return errors.NewInvalidMetadataError("metadata argument must be an object literal", tree.Location(metaArg, file))
			}
			// The metadata argument replaces whatever was resolved so far,
			// including the payload reviver order seeded above.
			replacement, err := metaFromObject(tree, metaArg, file)
			if err != nil {
				return err
			}
			meta = replacement
		}

		if len(args) > 0 && args[0].Type() == jsast.NodeObject {
			descriptor, err := metaFromObject(tree, args[0], file)
			if err != nil {
				return err
			}
			meta = descriptor.MergeDefaults(meta)
		}

		resolveOrder(&meta)
		return nil
	})
	if err != nil {
		return models.PluginMeta{}, err
	}

	e.cache.Set(code, meta)
	return meta.Clone(), nil
}

// resolveOrder fills a missing or zero order from enforce and drops enforce
func resolveOrder(meta *models.PluginMeta) {
	if meta.Order == nil || *meta.Order == 0 {
		enforce := models.EnforceDefault
		if meta.Enforce != nil {
			enforce = *meta.Enforce
		}
		meta.Order = models.IntPtr(order.ForEnforce(enforce))
	}
	meta.Enforce = nil
}

// Default is the process-wide extractor used by ExtractMetadata
var Default = New()

// ExtractMetadata resolves metadata with the Default extractor
func ExtractMetadata(code string, dialect models.Dialect) (models.PluginMeta, error) {
	return Default.Extract(code, dialect)
}
