package registry

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/models"
	"github.com/toyz/pluginmeta/internal/utils"
)

// Format is a manifest serialization
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Manifest is the on-disk form of a registry
type Manifest struct {
	Plugins []models.Plugin `json:"plugins" yaml:"plugins" toml:"plugins"`
}

// FormatForPath picks a format from a manifest's file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Newf(errors.RegistryErrorCode, "unsupported registry manifest extension %q", filepath.Ext(path)).
			WithSuggestion("Use a .json, .yaml, .yml or .toml registry file")
	}
}

// Encode serializes the registry's entries in scheduling order
func (r *Registry) Encode(format Format) ([]byte, error) {
	manifest := Manifest{Plugins: r.List()}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(manifest); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(manifest)
	default:
		return nil, errors.Newf(errors.RegistryErrorCode, "unknown registry format %q", format)
	}
}

// Decode parses a manifest and registers each of its entries
func (r *Registry) Decode(data []byte, format Format) error {
	var manifest Manifest

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &manifest)
	case FormatYAML:
		err = yaml.Unmarshal(data, &manifest)
	case FormatTOML:
		err = toml.Unmarshal(data, &manifest)
	default:
		return errors.Newf(errors.RegistryErrorCode, "unknown registry format %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.RegistryErrorCode, "failed to parse "+string(format)+" registry manifest", err)
	}

	for _, plugin := range manifest.Plugins {
		if err := r.Register(plugin); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a registry manifest from disk
func Load(path string) (*Registry, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	content, err := utils.NewFileReader().ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := New()
	if err := r.Decode([]byte(content), format); err != nil {
		if be, ok := err.(*errors.BaseError); ok {
			return nil, be.WithLocation(errors.SourceLocation{File: path})
		}
		return nil, err
	}
	return r, nil
}

// Save writes the registry to disk in the format its extension names
func (r *Registry) Save(path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	data, err := r.Encode(format)
	if err != nil {
		return errors.Wrap(errors.RegistryErrorCode, "failed to encode registry manifest", err)
	}

	if err := utils.NewFileReader().WriteFile(path, string(data)); err != nil {
		return errors.Wrap(errors.RegistryErrorCode, "failed to write registry manifest", err)
	}
	return nil
}
