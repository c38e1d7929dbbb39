package registry

import (
	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/extractor"
	"github.com/toyz/pluginmeta/internal/models"
	"github.com/toyz/pluginmeta/internal/utils"
)

// Build discovers plugin files under the given targets, extracts their
// metadata and registers one entry per file. Files whose metadata cannot be
// extracted are reported together after every file has been tried; the
// returned registry holds the rest.
func Build(targets []string, ext *extractor.Extractor, processor *utils.FileProcessor) (*Registry, error) {
	files, err := processor.ExpandPatterns(targets)
	if err != nil {
		return nil, err
	}

	r := New()
	failures := errors.NewMultipleErrors()

	for _, file := range files {
		src := utils.NormalizePath(file)

		code, err := processor.ReadPlugin(file)
		if err != nil {
			failures.Add(asPluginMetaError(err, src))
			continue
		}

		meta, err := ext.ExtractModule(src, code)
		if err != nil {
			failures.Add(asPluginMetaError(err, src))
			continue
		}

		if err := r.Register(models.Plugin{Src: src, PluginMeta: meta}); err != nil {
			failures.Add(asPluginMetaError(err, src))
		}
	}

	return r, failures.ErrorOrNil()
}

func asPluginMetaError(err error, src string) errors.PluginMetaError {
	if pe, ok := err.(errors.PluginMetaError); ok {
		return pe
	}
	return errors.WrapRegistryError("build", src, err)
}
