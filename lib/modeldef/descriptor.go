// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package modeldef

// Descriptor is a model collection in file form.
type Descriptor struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Version is the collection version and the default version of
	// every model that does not set its own.
	Version int16 `json:"version" yaml:"version"`

	Models   []ModelDescriptor   `json:"models" yaml:"models"`
	Services []ServiceDescriptor `json:"services,omitempty" yaml:"services,omitempty"`
}

// ModelDescriptor declares one model.
type ModelDescriptor struct {
	Name string `json:"name" yaml:"name"`
	UUID string `json:"uuid" yaml:"uuid"`

	// Version overrides the collection version when non-zero.
	Version int16 `json:"version,omitempty" yaml:"version,omitempty"`

	Title        string               `json:"title,omitempty" yaml:"title,omitempty"`
	SpecificType string               `json:"specific_type,omitempty" yaml:"specific_type,omitempty"`
	Properties   []PropertyDescriptor `json:"properties" yaml:"properties"`
}

// PropertyDescriptor declares one property of a model.
type PropertyDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Key  int16  `json:"key" yaml:"key"`
	Type string `json:"type" yaml:"type"`

	// Content is a content type name. Empty means GENERIC.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	SpecificType string `json:"specific_type,omitempty" yaml:"specific_type,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`

	// Reference names the referenced model of a reference property.
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`

	// Values lists the values of an ENUM property in ordinal order.
	Values []string `json:"values,omitempty" yaml:"values,omitempty,flow"`
}

// ServiceDescriptor declares a service schema.
type ServiceDescriptor struct {
	Name    string             `json:"name" yaml:"name"`
	Methods []MethodDescriptor `json:"methods" yaml:"methods"`
}

// MethodDescriptor declares one service method by its request and
// response models.
type MethodDescriptor struct {
	Name   string `json:"name" yaml:"name"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}
