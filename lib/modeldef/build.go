// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package modeldef

import (
	"fmt"
	"strings"

	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/registry"
)

// Build turns a descriptor into a collection. Any issue reported by
// Validate fails the whole descriptor with model.ErrInvalidDefinition.
func Build(descriptor *Descriptor) (*registry.Collection, error) {
	if issues := Validate(descriptor); len(issues) > 0 {
		return nil, fmt.Errorf("%w: collection %q:\n  %s", model.ErrInvalidDefinition, descriptor.Name, strings.Join(issues, "\n  "))
	}
	index := newModelIndex(descriptor)
	collection := registry.NewCollection(descriptor.Name, descriptor.Namespace, descriptor.Version)

	// Models first, so properties can reference any of them.
	models := make([]*model.Object, len(descriptor.Models))
	for i, m := range descriptor.Models {
		version := m.Version
		if version == 0 {
			version = descriptor.Version
		}
		created, err := collection.CreateModelVersion(m.Name, m.UUID, version,
			model.WithTitle(m.Title), model.WithSpecificType(m.SpecificType))
		if err != nil {
			return nil, err
		}
		models[i] = created
	}

	for i, m := range descriptor.Models {
		for _, property := range m.Properties {
			if err := addProperty(models[i], property, models, index); err != nil {
				return nil, err
			}
		}
	}

	for _, service := range descriptor.Services {
		schema, err := collection.CreateServiceSchema(service.Name)
		if err != nil {
			return nil, err
		}
		for _, method := range service.Methods {
			input, _ := index.resolve(method.Input)
			output, _ := index.resolve(method.Output)
			if err := schema.AddMethod(method.Name, models[input], models[output]); err != nil {
				return nil, err
			}
		}
	}
	return collection, nil
}

func addProperty(object *model.Object, property PropertyDescriptor, models []*model.Object, index *modelIndex) error {
	propertyType, err := model.ParsePropertyType(property.Type)
	if err != nil {
		return err
	}
	contentType, err := model.ParseContentType(property.Content)
	if err != nil {
		return err
	}
	options := []model.Option{
		model.WithTitle(property.Title),
		model.WithSpecificType(property.SpecificType),
		model.WithContentType(contentType),
	}
	switch {
	case propertyType == model.TypeObjectSingleReference:
		referenced, _ := index.resolve(property.Reference)
		_, err = object.AddSingleReference(property.Name, property.Key, models[referenced], options...)
	case propertyType == model.TypeObjectMultiReference:
		referenced, _ := index.resolve(property.Reference)
		_, err = object.AddMultiReference(property.Name, property.Key, models[referenced], options...)
	case propertyType == model.TypeEnum:
		_, err = object.AddEnumProperty(property.Name, property.Key, property.Values, options...)
	default:
		_, err = object.AddProperty(property.Name, property.Key, propertyType, options...)
	}
	return err
}

// Load reads, validates, and builds the descriptor at path.
func Load(path string) (*registry.Collection, error) {
	descriptor, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	collection, err := Build(descriptor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return collection, nil
}
