// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package modeldef

import (
	"fmt"

	"github.com/modelwire/modelwire/lib/model"
)

// Validate checks a descriptor for structural issues and returns a
// list of human-readable descriptions. An empty list means Build will
// succeed.
//
// Checks include:
//   - Every model has a name and a uuid, both unique in the descriptor
//   - Property names and keys are unique within their model
//   - Type and content names are known
//   - Reference properties name a model of the descriptor; other
//     properties carry no reference
//   - ENUM properties list unique, non-empty values; other properties
//     list none
//   - Service names are unique, method names are unique per service,
//     and method models resolve
func Validate(descriptor *Descriptor) []string {
	var issues []string
	if descriptor.Name == "" {
		issues = append(issues, "collection has no name")
	}
	if len(descriptor.Models) == 0 {
		issues = append(issues, "collection has no models")
	}

	index := newModelIndex(descriptor)
	issues = append(issues, index.issues...)

	for modelIndex, m := range descriptor.Models {
		prefix := fmt.Sprintf("models[%d] %q", modelIndex, m.Name)
		names := make(map[string]int, len(m.Properties))
		keys := make(map[int16]int, len(m.Properties))
		for propertyIndex, property := range m.Properties {
			propertyPrefix := fmt.Sprintf("%s properties[%d] %q", prefix, propertyIndex, property.Name)
			if property.Name == "" {
				issues = append(issues, propertyPrefix+": name is required")
			} else if first, exists := names[property.Name]; exists {
				issues = append(issues, fmt.Sprintf("%s: duplicate property name (first used at properties[%d])", propertyPrefix, first))
			} else {
				names[property.Name] = propertyIndex
			}
			if first, exists := keys[property.Key]; exists {
				issues = append(issues, fmt.Sprintf("%s: duplicate key %d (first used at properties[%d])", propertyPrefix, property.Key, first))
			} else {
				keys[property.Key] = propertyIndex
			}
			issues = append(issues, validateProperty(property, propertyPrefix, index)...)
		}
	}

	services := make(map[string]int, len(descriptor.Services))
	for serviceIndex, service := range descriptor.Services {
		prefix := fmt.Sprintf("services[%d] %q", serviceIndex, service.Name)
		if service.Name == "" {
			issues = append(issues, prefix+": name is required")
		} else if first, exists := services[service.Name]; exists {
			issues = append(issues, fmt.Sprintf("%s: duplicate service name (first used at services[%d])", prefix, first))
		} else {
			services[service.Name] = serviceIndex
		}
		methods := make(map[string]bool, len(service.Methods))
		for methodIndex, method := range service.Methods {
			methodPrefix := fmt.Sprintf("%s methods[%d] %q", prefix, methodIndex, method.Name)
			if method.Name == "" {
				issues = append(issues, methodPrefix+": name is required")
			} else if methods[method.Name] {
				issues = append(issues, methodPrefix+": duplicate method name")
			}
			methods[method.Name] = true
			for _, ref := range []struct{ role, name string }{{"input", method.Input}, {"output", method.Output}} {
				if _, ok := index.resolve(ref.name); !ok {
					issues = append(issues, fmt.Sprintf("%s: %s model %q is not declared", methodPrefix, ref.role, ref.name))
				}
			}
		}
	}
	return issues
}

func validateProperty(property PropertyDescriptor, prefix string, index *modelIndex) []string {
	var issues []string
	propertyType, err := model.ParsePropertyType(property.Type)
	if err != nil {
		issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
	} else if propertyType == model.TypeObject {
		issues = append(issues, prefix+": OBJECT is not a property type, use OBJECT_SINGLE_REFERENCE or OBJECT_MULTI_REFERENCE")
	}
	if _, err := model.ParseContentType(property.Content); err != nil {
		issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
	}
	if err != nil {
		return issues
	}

	if propertyType.IsReference() {
		if property.Reference == "" {
			issues = append(issues, prefix+": reference properties must name the referenced model")
		} else if _, ok := index.resolve(property.Reference); !ok {
			issues = append(issues, fmt.Sprintf("%s: referenced model %q is not declared", prefix, property.Reference))
		}
	} else if property.Reference != "" {
		issues = append(issues, fmt.Sprintf("%s: reference is only valid on reference properties", prefix))
	}

	if propertyType == model.TypeEnum {
		if len(property.Values) == 0 {
			issues = append(issues, prefix+": ENUM properties must list their values")
		}
		seen := make(map[string]bool, len(property.Values))
		for _, value := range property.Values {
			if value == "" || seen[value] {
				issues = append(issues, fmt.Sprintf("%s: empty or duplicate enum value %q", prefix, value))
			}
			seen[value] = true
		}
	} else if len(property.Values) > 0 {
		issues = append(issues, prefix+": values are only valid on ENUM properties")
	}
	return issues
}

// modelIndex resolves model references by name first, then by uuid.
type modelIndex struct {
	byName map[string]int
	byUUID map[string]int
	issues []string
}

func newModelIndex(descriptor *Descriptor) *modelIndex {
	index := &modelIndex{
		byName: make(map[string]int, len(descriptor.Models)),
		byUUID: make(map[string]int, len(descriptor.Models)),
	}
	for i, m := range descriptor.Models {
		prefix := fmt.Sprintf("models[%d] %q", i, m.Name)
		if m.Name == "" {
			index.issues = append(index.issues, prefix+": name is required")
		} else if first, exists := index.byName[m.Name]; exists {
			index.issues = append(index.issues, fmt.Sprintf("%s: duplicate model name (first used at models[%d])", prefix, first))
		} else {
			index.byName[m.Name] = i
		}
		if m.UUID == "" {
			index.issues = append(index.issues, prefix+": uuid is required")
		} else if first, exists := index.byUUID[m.UUID]; exists {
			index.issues = append(index.issues, fmt.Sprintf("%s: duplicate uuid %q (first used at models[%d])", prefix, m.UUID, first))
		} else {
			index.byUUID[m.UUID] = i
		}
	}
	return index
}

func (index *modelIndex) resolve(reference string) (int, bool) {
	if i, ok := index.byName[reference]; ok {
		return i, true
	}
	i, ok := index.byUUID[reference]
	return i, ok
}
