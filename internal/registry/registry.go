// Package registry holds the plugin entries produced by discovery and
// consumed by the rewrite engine.
package registry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/models"
	"github.com/toyz/pluginmeta/internal/order"
	"github.com/toyz/pluginmeta/internal/utils"
)

// PluginRegistry defines the operations the rest of the tool needs from a
// registry
type PluginRegistry interface {
	Register(plugin models.Plugin) error
	Lookup(id string) (models.Plugin, bool)
	List() []models.Plugin
}

// Registry stores plugin entries keyed by normalized source path
type Registry struct {
	plugins *utils.BaseRegistry[string, models.Plugin]
}

// New creates an empty registry
func New() *Registry {
	plugins := utils.NewBaseRegistry[string, models.Plugin]("plugin", "plugin path")
	plugins.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[models.Plugin]("plugin path"),
		validatePlugin,
	))
	return &Registry{plugins: plugins}
}

// validatePlugin rejects entries the extractor could never have produced
func validatePlugin(key string, plugin models.Plugin, _ map[string]models.Plugin) error {
	if plugin.Enforce != nil && !plugin.Enforce.IsValid() {
		return fmt.Errorf("plugin '%s' has unknown enforce value %q", key, *plugin.Enforce)
	}
	for _, dep := range plugin.DependsOn {
		if dep == "" {
			return fmt.Errorf("plugin '%s' depends on an empty name", key)
		}
	}
	return nil
}

// Register adds or replaces the entry for plugin.Src
func (r *Registry) Register(plugin models.Plugin) error {
	plugin.Src = utils.NormalizePath(plugin.Src)
	plugin.PluginMeta = plugin.PluginMeta.Clone()

	if err := r.plugins.Register(plugin.Src, plugin); err != nil {
		return errors.WrapRegistryError("register", plugin.Src, err)
	}
	return nil
}

// Lookup finds the entry for a module id. The id is normalized first.
func (r *Registry) Lookup(id string) (models.Plugin, bool) {
	plugin, ok := r.plugins.Get(utils.NormalizePath(id))
	if !ok {
		return models.Plugin{}, false
	}
	plugin.PluginMeta = plugin.PluginMeta.Clone()
	return plugin, true
}

// Size returns the number of entries
func (r *Registry) Size() int {
	return r.plugins.Size()
}

// List returns the entries in scheduling order: ascending order value, then
// source path
func (r *Registry) List() []models.Plugin {
	plugins := r.plugins.Values()
	slices.SortFunc(plugins, func(a, b models.Plugin) int {
		if c := cmp.Compare(EffectiveOrder(a.PluginMeta), EffectiveOrder(b.PluginMeta)); c != 0 {
			return c
		}
		return cmp.Compare(a.Src, b.Src)
	})
	for i := range plugins {
		plugins[i].PluginMeta = plugins[i].PluginMeta.Clone()
	}
	return plugins
}

// EffectiveOrder is the order a plugin is scheduled at: its explicit order,
// or the value its enforce label maps to
func EffectiveOrder(meta models.PluginMeta) int {
	if meta.Order != nil {
		return *meta.Order
	}
	if meta.Enforce != nil {
		return order.ForEnforce(*meta.Enforce)
	}
	return order.ForEnforce(models.EnforceDefault)
}
