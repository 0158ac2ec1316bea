// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/modelwire/modelwire/lib/message"
	"github.com/modelwire/modelwire/lib/model"
)

// Collection is a named, namespaced, versioned bundle of models, their
// decoders, and service schemas, shared between a producer and its
// consumers. Model uuids are unique within a collection.
type Collection struct {
	Name      string
	Namespace string

	// Version is the collection version. Models created through
	// CreateModel take it as their model version.
	Version int16

	models   []*model.Object
	byUUID   map[string]*model.Object
	decoders message.DecoderMap
	services []*ServiceSchema
}

// NewCollection returns an empty collection.
func NewCollection(name, namespace string, version int16) *Collection {
	return &Collection{
		Name:      name,
		Namespace: namespace,
		Version:   version,
		byUUID:    make(map[string]*model.Object),
		decoders:  make(message.DecoderMap),
	}
}

// CreateModel creates an empty model at the collection version and adds
// it.
func (c *Collection) CreateModel(name, modelUUID string, options ...model.Option) (*model.Object, error) {
	return c.CreateModelVersion(name, modelUUID, c.Version, options...)
}

// CreateModelVersion creates an empty model with an explicit version and
// adds it.
func (c *Collection) CreateModelVersion(name, modelUUID string, version int16, options ...model.Option) (*model.Object, error) {
	m := model.NewObject(modelUUID, name, version, options...)
	if err := c.AddModel(m); err != nil {
		return nil, err
	}
	return m, nil
}

// AddModel adds m. A second model with the same uuid fails with
// model.ErrDefinitionConflict.
func (c *Collection) AddModel(m *model.Object) error {
	if m.UUID() == "" {
		return fmt.Errorf("%w: model %s has no uuid", model.ErrInvalidDefinition, m.Name())
	}
	if existing, ok := c.byUUID[m.UUID()]; ok {
		return fmt.Errorf("%w: collection %s already contains %s", model.ErrDefinitionConflict, c.Name, existing)
	}
	c.models = append(c.models, m)
	c.byUUID[m.UUID()] = m
	return nil
}

// Model returns the model with the given uuid.
func (c *Collection) Model(modelUUID string) (*model.Object, bool) {
	m, ok := c.byUUID[modelUUID]
	return m, ok
}

// ModelByName returns the first model named name.
func (c *Collection) ModelByName(name string) (*model.Object, bool) {
	index := slices.IndexFunc(c.models, func(m *model.Object) bool { return m.Name() == name })
	if index < 0 {
		return nil, false
	}
	return c.models[index], true
}

// Models returns the models in the order they were added.
func (c *Collection) Models() []*model.Object {
	return slices.Clone(c.models)
}

// AddDecoder registers a decoder for one of the collection's models.
func (c *Collection) AddDecoder(decoder message.Decoder) error {
	if _, ok := c.byUUID[decoder.ObjectUUID()]; !ok {
		return fmt.Errorf("%w: collection %s has no model %q for the decoder",
			model.ErrUnresolvedModel, c.Name, decoder.ObjectUUID())
	}
	c.decoders.Add(decoder)
	return nil
}

// Decoder returns the decoder for a model uuid, making the collection
// usable as message.Decoders while it is being assembled.
func (c *Collection) Decoder(modelUUID string) (message.Decoder, bool) {
	return c.decoders.Decoder(modelUUID)
}

// CreateServiceSchema adds an empty service schema. Service names are
// unique within a collection.
func (c *Collection) CreateServiceSchema(name string) (*ServiceSchema, error) {
	if slices.ContainsFunc(c.services, func(s *ServiceSchema) bool { return s.Name == name }) {
		return nil, fmt.Errorf("%w: collection %s already declares service %q", model.ErrDefinitionConflict, c.Name, name)
	}
	service := &ServiceSchema{Name: name}
	c.services = append(c.services, service)
	return service, nil
}

// ServiceSchemas returns the service schemas in declaration order.
func (c *Collection) ServiceSchemas() []*ServiceSchema {
	return slices.Clone(c.services)
}

// NewRegistry returns a registry holding exactly this collection.
func (c *Collection) NewRegistry() *Registry {
	r := New()
	r.AddCollection(c)
	return r
}

// NewModelUUID returns a fresh random identity for a new model. The
// same uuid must then be kept for every later version of that model.
func NewModelUUID() string {
	return uuid.NewString()
}
