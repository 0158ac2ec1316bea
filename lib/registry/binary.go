// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bytes"
	"fmt"

	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/wire"
)

// MarshalBinary encodes every registered model as a count followed by
// one model definition each, in registration order. Decoders are code
// and are not included.
func (r *Registry) MarshalBinary() ([]byte, error) {
	models := r.AllModels()
	var buffer bytes.Buffer
	w := wire.NewWriter(&buffer)
	w.Count(len(models))
	for _, m := range models {
		m.WriteDefinition(w)
	}
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("encoding registry: %w", err)
	}
	return buffer.Bytes(), nil
}

// Unmarshal decodes a registry produced by MarshalBinary.
func Unmarshal(data []byte) (*Registry, error) {
	r := wire.NewBytesReader(data)
	count := r.Count()
	registry := New()
	for i := 0; i < count && r.Err() == nil; i++ {
		m, err := model.ReadDefinition(r)
		if err != nil {
			return nil, fmt.Errorf("decoding registry model %d: %w", i, err)
		}
		registry.AddModel(m)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}
	if trailing := int64(len(data)) - r.Offset(); trailing != 0 {
		return nil, fmt.Errorf("decoding registry: %d trailing bytes", trailing)
	}
	return registry, nil
}
