// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"slices"

	"github.com/modelwire/modelwire/lib/model"
)

// ServiceSchema describes the methods of one service by their request
// and response models.
type ServiceSchema struct {
	Name    string
	methods []ServiceMethod
}

// ServiceMethod is one request/response pair.
type ServiceMethod struct {
	Name   string
	Input  *model.Object
	Output *model.Object
}

// AddMethod declares a method. Method names are unique within a
// service. Input and output are required.
func (s *ServiceSchema) AddMethod(name string, input, output *model.Object) error {
	if name == "" || input == nil || output == nil {
		return fmt.Errorf("%w: service %s: method %q needs a name and both models",
			model.ErrInvalidDefinition, s.Name, name)
	}
	if _, ok := s.Method(name); ok {
		return fmt.Errorf("%w: service %s already declares method %q", model.ErrDefinitionConflict, s.Name, name)
	}
	s.methods = append(s.methods, ServiceMethod{Name: name, Input: input, Output: output})
	return nil
}

// Method returns the method named name.
func (s *ServiceSchema) Method(name string) (ServiceMethod, bool) {
	index := slices.IndexFunc(s.methods, func(m ServiceMethod) bool { return m.Name == name })
	if index < 0 {
		return ServiceMethod{}, false
	}
	return s.methods[index], true
}

// Methods returns the methods in declaration order.
func (s *ServiceSchema) Methods() []ServiceMethod {
	return slices.Clone(s.methods)
}
