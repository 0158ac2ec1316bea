// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package modeldef

import (
	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/registry"
)

// Describe renders a collection as a descriptor. Building the result
// yields an equivalent collection. Model references are written by
// name when the name identifies the model within the collection, and
// by uuid otherwise. Decoders are code and are not described.
func Describe(collection *registry.Collection) *Descriptor {
	descriptor := &Descriptor{
		Name:      collection.Name,
		Namespace: collection.Namespace,
		Version:   collection.Version,
	}
	reference := func(m *model.Object) string {
		if named, ok := collection.ModelByName(m.Name()); ok && named == m {
			return m.Name()
		}
		return m.UUID()
	}

	for _, m := range collection.Models() {
		described := ModelDescriptor{
			Name:         m.Name(),
			UUID:         m.UUID(),
			Title:        m.Title(),
			SpecificType: m.SpecificType(),
			Properties:   make([]PropertyDescriptor, 0, m.Len()),
		}
		if m.Version() != collection.Version {
			described.Version = m.Version()
		}
		for _, property := range m.Properties() {
			entry := PropertyDescriptor{
				Name:         property.Name(),
				Key:          property.Key(),
				Type:         property.Type().String(),
				SpecificType: property.SpecificType(),
				Title:        property.Title(),
				Values:       property.EnumValues(),
			}
			if property.ContentType() != model.ContentGeneric {
				entry.Content = property.ContentType().String()
			}
			if property.IsReference() {
				entry.Reference = reference(property.ReferencedObject())
			}
			described.Properties = append(described.Properties, entry)
		}
		descriptor.Models = append(descriptor.Models, described)
	}

	for _, service := range collection.ServiceSchemas() {
		described := ServiceDescriptor{Name: service.Name}
		for _, method := range service.Methods() {
			described.Methods = append(described.Methods, MethodDescriptor{
				Name:   method.Name,
				Input:  reference(method.Input),
				Output: reference(method.Output),
			})
		}
		descriptor.Services = append(descriptor.Services, described)
	}
	return descriptor
}
