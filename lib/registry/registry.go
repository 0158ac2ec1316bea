// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/modelwire/modelwire/lib/message"
	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/wire"
)

// identity is the wire identity of a decodable shape.
type identity struct {
	uuid    string
	version int16
}

// Registry catalogues models by (uuid, version) and decoders by uuid.
//
// Read operations (Model, LatestModel, Decoder, and everything built on
// them) take a read lock and proceed in parallel. Registration takes
// the write lock. The registry is read on every decode and written
// rarely.
type Registry struct {
	mu sync.RWMutex

	// all holds every registered model in registration order.
	all []*model.Object

	known map[identity]bool

	// versions holds every version per uuid, ascending.
	versions map[string][]*model.Object

	// latest holds the highest version per uuid.
	latest map[string]*model.Object

	decoders map[string]message.Decoder
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		known:    make(map[identity]bool),
		versions: make(map[string][]*model.Object),
		latest:   make(map[string]*model.Object),
		decoders: make(map[string]message.Decoder),
	}
}

// AddModel registers m. Registering the same (uuid, version) twice is a
// no-op and reports false. m becomes the latest model for its uuid when
// no higher version is registered.
func (r *Registry) AddModel(m *model.Object) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addModel(m)
}

func (r *Registry) addModel(m *model.Object) bool {
	key := identity{uuid: m.UUID(), version: m.Version()}
	if r.known[key] {
		return false
	}
	r.known[key] = true
	r.all = append(r.all, m)

	versions := r.versions[key.uuid]
	position, _ := slices.BinarySearchFunc(versions, key.version, func(existing *model.Object, version int16) int {
		return int(existing.Version()) - int(version)
	})
	r.versions[key.uuid] = slices.Insert(versions, position, m)

	if current, ok := r.latest[key.uuid]; !ok || m.Version() > current.Version() {
		r.latest[key.uuid] = m
	}
	return true
}

// AddModels registers each model in order.
func (r *Registry) AddModels(models ...*model.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range models {
		r.addModel(m)
	}
}

// AddCollection registers every model of c and every decoder it
// carries.
func (r *Registry) AddCollection(c *Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range c.models {
		r.addModel(m)
		if decoder, ok := c.decoders[m.UUID()]; ok {
			r.decoders[m.UUID()] = decoder
		}
	}
}

// AddDecoder registers decoder for its model uuid, replacing any
// previous decoder for that uuid.
func (r *Registry) AddDecoder(decoder message.Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[decoder.ObjectUUID()] = decoder
}

// Decoder returns the decoder registered for uuid. It makes the
// registry usable as message.Decoders.
func (r *Registry) Decoder(uuid string) (message.Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decoder, ok := r.decoders[uuid]
	return decoder, ok
}

// Model returns the model for (uuid, version) if version is the latest
// registered version of uuid. Otherwise it fails with
// model.ErrUnresolvedModel. It makes the registry usable as
// message.Resolver.
func (r *Registry) Model(uuid string, version int16) (*model.Object, error) {
	r.mu.RLock()
	latest, ok := r.latest[uuid]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no model with uuid %q", model.ErrUnresolvedModel, uuid)
	}
	if latest.Version() != version {
		return nil, fmt.Errorf("%w: %q version %d, latest registered is %d",
			model.ErrUnresolvedModel, uuid, version, latest.Version())
	}
	return latest, nil
}

// ModelVersion returns the model registered for exactly (uuid, version),
// whether or not it is the latest. A missing pair fails with
// model.ErrUnresolvedModel.
func (r *Registry) ModelVersion(uuid string, version int16) (*model.Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.versions[uuid] {
		if m.Version() == version {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: no model %q version %d", model.ErrUnresolvedModel, uuid, version)
}

// History returns a resolver that matches any registered version
// exactly, for decoding messages written against superseded models.
func (r *Registry) History() message.Resolver {
	return historyResolver{r}
}

type historyResolver struct{ registry *Registry }

func (h historyResolver) Model(uuid string, version int16) (*model.Object, error) {
	return h.registry.ModelVersion(uuid, version)
}

// LatestModel returns the highest registered version of uuid.
func (r *Registry) LatestModel(uuid string) (*model.Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.latest[uuid]
	return m, ok
}

// ModelVersions returns every registered version of uuid in ascending
// version order.
func (r *Registry) ModelVersions(uuid string) []*model.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.versions[uuid])
}

// AllModels returns every registered model in registration order.
func (r *Registry) AllModels() []*model.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.all)
}

// LatestModels returns the latest model of every uuid, sorted by uuid.
func (r *Registry) LatestModels() []*model.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uuids := slices.Sorted(maps.Keys(r.latest))
	models := make([]*model.Object, len(uuids))
	for i, uuid := range uuids {
		models[i] = r.latest[uuid]
	}
	return models
}

// ModelForMessage resolves the model of an encoded message from its
// header alone.
func (r *Registry) ModelForMessage(data []byte) (*model.Object, error) {
	uuid, version, err := message.PeekHeader(data)
	if err != nil {
		return nil, err
	}
	return r.Model(uuid, version)
}

// Merge registers every model of other in other's registration order,
// and copies the decoders this registry does not have yet.
func (r *Registry) Merge(other *Registry) {
	if other == r {
		return
	}
	other.mu.RLock()
	models := slices.Clone(other.all)
	decoders := maps.Clone(other.decoders)
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range models {
		r.addModel(m)
	}
	for uuid, decoder := range decoders {
		if _, ok := r.decoders[uuid]; !ok {
			r.decoders[uuid] = decoder
		}
	}
}

// PropertyDefinition resolves a qualified property name of the form
// "<model name>-<uuid>/<property name>" against the latest models.
func (r *Registry) PropertyDefinition(qualifiedName string) (*model.Property, error) {
	slash := strings.LastIndexByte(qualifiedName, '/')
	if slash < 0 {
		return nil, fmt.Errorf("%w: %q is not a qualified property name", model.ErrUnknownProperty, qualifiedName)
	}
	objectName, propertyName := qualifiedName[:slash], qualifiedName[slash+1:]
	for _, m := range r.LatestModels() {
		if m.QualifiedName() != objectName {
			continue
		}
		property, ok := m.PropertyByName(propertyName)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no property %q", model.ErrUnknownProperty, m, propertyName)
		}
		return property, nil
	}
	return nil, fmt.Errorf("%w: no latest model named %q", model.ErrUnresolvedModel, objectName)
}

// Decode decodes one top-level message. When a decoder is registered
// for the message's model the result is that decoder's typed record,
// otherwise a generic *message.Object. options.Decoders defaults to the
// registry itself.
func (r *Registry) Decode(data []byte, options message.ReadOptions) (message.Record, error) {
	m, err := r.ModelForMessage(data)
	if err != nil {
		return nil, err
	}
	if options.Decoders == nil {
		options.Decoders = r
	}
	if decoder, ok := options.Decoders.Decoder(m.UUID()); ok {
		reader := wire.NewBytesReader(data)
		record, err := decoder.Decode(reader, options)
		if err != nil {
			return nil, err
		}
		if trailing := int64(len(data)) - reader.Offset(); trailing != 0 {
			return nil, fmt.Errorf("decoding %s: %d trailing bytes", m, trailing)
		}
		return record, nil
	}
	object, err := message.UnmarshalResolved(data, r, options)
	if err != nil {
		return nil, err
	}
	return object, nil
}

// DecodeAnyVersion decodes a message written against any registered
// version of its model. Messages of the latest version decode exactly
// as Decode does. Older versions decode generically against the model
// they were written with, ignoring decoders, which are built for the
// latest version.
func (r *Registry) DecodeAnyVersion(data []byte, options message.ReadOptions) (message.Record, error) {
	uuid, version, err := message.PeekHeader(data)
	if err != nil {
		return nil, err
	}
	if latest, ok := r.LatestModel(uuid); ok && latest.Version() == version {
		return r.Decode(data, options)
	}
	options.Decoders = nil
	object, err := message.UnmarshalResolved(data, r.History(), options)
	if err != nil {
		return nil, err
	}
	return object, nil
}

// Remap projects a generically decoded message into the typed record of
// its model's decoder, or returns a generic copy with nested references
// remapped when the model has no decoder.
func (r *Registry) Remap(object *message.Object) (message.Record, error) {
	if decoder, ok := r.Decoder(object.Model().UUID()); ok {
		return decoder.Remap(object)
	}
	remapped, err := object.Remap(r)
	if err != nil {
		return nil, err
	}
	return remapped, nil
}
