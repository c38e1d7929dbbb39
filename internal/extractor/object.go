package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/jsast"
	"github.com/toyz/pluginmeta/internal/models"
)

// Recognized metadata keys
const (
	KeyName      = "name"
	KeyOrder     = "order"
	KeyEnforce   = "enforce"
	KeyDependsOn = "dependsOn"
)

func isMetadataKey(key string) bool {
	switch key {
	case KeyName, KeyOrder, KeyEnforce, KeyDependsOn:
		return true
	default:
		return false
	}
}

// metaFromObject builds a record from the literal-valued metadata properties
// of an object literal. Every property must have a static key. Values that
// are not literals are skipped.
func metaFromObject(t *jsast.Tree, obj *sitter.Node, file string) (models.PluginMeta, error) {
	meta := models.PluginMeta{}

	for _, prop := range t.Properties(obj) {
		key := t.PropertyKey(prop)
		if !key.IsStatic() {
			reason := "property key must be an identifier or string"
			if key.Kind == jsast.KeySpread {
				reason = "spread elements are not supported"
			}
			return models.PluginMeta{}, errors.NewInvalidMetadataError(reason, t.Location(prop, file))
		}
		if !isMetadataKey(key.Name) {
			continue
		}

		value := t.PropertyValue(prop)
		if value == nil {
			continue
		}

		if key.Name == KeyDependsOn {
			dependsOn, ok, err := dependsOnValue(t, value, file)
			if err != nil {
				return models.PluginMeta{}, err
			}
			if ok {
				meta.DependsOn = dependsOn
			}
			continue
		}

		lit, accepted, err := evalLiteral(t, value)
		if err != nil {
			return models.PluginMeta{}, errors.NewInvalidMetadataError(err.Error(), t.Location(value, file))
		}
		if !accepted {
			continue
		}
		assign(&meta, key.Name, lit)
	}

	return meta, nil
}

// assign stores lit on meta when its type fits the field
func assign(meta *models.PluginMeta, key string, lit literal) {
	switch key {
	case KeyName:
		if lit.kind == literalString {
			meta.Name = models.StringPtr(lit.str)
		}
	case KeyOrder:
		if v, ok := lit.integer(); ok {
			meta.Order = models.IntPtr(v)
		}
	case KeyEnforce:
		if lit.kind == literalString {
			e := models.Enforce(lit.str)
			meta.Enforce = &e
		}
	}
}

// dependsOnValue accepts an array of string literals. Any other literal, or
// an array holding anything but string literals, is an error. Non-literal
// expressions are skipped.
func dependsOnValue(t *jsast.Tree, value *sitter.Node, file string) ([]string, bool, error) {
	if value.Type() != jsast.NodeArray {
		if _, accepted, _ := evalLiteral(t, value); accepted {
			return nil, false, errors.NewInvalidDependsOnError(t.Location(value, file))
		}
		return nil, false, nil
	}

	elements, holes := t.Elements(value)
	if holes {
		return nil, false, errors.NewInvalidDependsOnError(t.Location(value, file))
	}

	out := make([]string, 0, len(elements))
	for _, element := range elements {
		if element.Type() != jsast.NodeString {
			return nil, false, errors.NewInvalidDependsOnError(t.Location(element, file))
		}
		s, err := t.StringValue(element)
		if err != nil {
			return nil, false, errors.NewInvalidDependsOnError(t.Location(element, file))
		}
		out = append(out, s)
	}
	return out, true, nil
}
