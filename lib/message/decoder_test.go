// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/wire"
)

// userRecord and addressRecord stand in for generated typed wrappers.
type userRecord struct{ *Object }

func (u userRecord) First() string { return u.String("first") }

type addressRecord struct{ *Object }

func (a addressRecord) Street() string { return a.String("street") }

func newDecoders(models testModels) DecoderMap {
	decoders := DecoderMap{}
	decoders.Add(NewTypedDecoder(models.user, decoders, func(o *Object) userRecord { return userRecord{o} }))
	decoders.Add(NewTypedDecoder(models.address, decoders, func(o *Object) addressRecord { return addressRecord{o} }))
	return decoders
}

func sampleUser(t *testing.T, models testModels) *Object {
	t.Helper()
	user := New(models.user)
	mustSet(t, user.SetString("first", "Tom"))
	mustSet(t, user.SetReference("address", newAddress(t, models, "Main Street 4", "New York", 10001)))
	for _, street := range []string{"A", "B", "C"} {
		mustSet(t, user.AddReference("addresses", newAddress(t, models, street, "", 0)))
	}
	return user
}

func TestNestedReferencesUseRegisteredDecoders(t *testing.T) {
	models := newTestModels(t)
	data, err := sampleUser(t, models).Marshal(nil)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Unmarshal(data, models.user, ReadOptions{Decoders: newDecoders(models)})
	if err != nil {
		t.Fatal(err)
	}
	address, ok := decoded.Reference("address").(addressRecord)
	if !ok {
		t.Fatalf("address decoded as %T, want addressRecord", decoded.Reference("address"))
	}
	if address.Street() != "Main Street 4" {
		t.Errorf("Street() = %q", address.Street())
	}
	for i, record := range decoded.References("addresses") {
		if _, ok := record.(addressRecord); !ok {
			t.Errorf("addresses[%d] decoded as %T", i, record)
		}
	}

	// Without decoders the same bytes decode generically.
	generic, err := Unmarshal(data, models.user, ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := generic.Reference("address").(*Object); !ok {
		t.Errorf("generic address decoded as %T", generic.Reference("address"))
	}
	if !generic.Equal(decoded) {
		t.Error("typed and generic decodes differ in content")
	}
}

func TestTypedDecoderDecode(t *testing.T) {
	models := newTestModels(t)
	decoders := newDecoders(models)
	data, err := sampleUser(t, models).Marshal(nil)
	if err != nil {
		t.Fatal(err)
	}

	decoder, _ := decoders.Decoder(models.user.UUID())
	record, err := decoder.Decode(wire.NewBytesReader(data), ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	user, ok := record.(userRecord)
	if !ok || user.First() != "Tom" {
		t.Fatalf("Decode = %T %v", record, record)
	}

	typed := decoder.(*TypedDecoder[userRecord])
	direct, err := typed.Unmarshal(data, ReadOptions{})
	if err != nil || direct.First() != "Tom" {
		t.Fatalf("Unmarshal = %v, %v", direct, err)
	}

	addressDecoder, _ := decoders.Decoder(models.address.UUID())
	if _, err := addressDecoder.Decode(wire.NewBytesReader(data), ReadOptions{}); !errors.Is(err, model.ErrModelMismatch) {
		t.Errorf("decoding a user as an address: err = %v, want ErrModelMismatch", err)
	}
}

func TestRemapProjectsGenericTree(t *testing.T) {
	models := newTestModels(t)
	decoders := newDecoders(models)
	data, err := sampleUser(t, models).Marshal(nil)
	if err != nil {
		t.Fatal(err)
	}
	generic, err := Unmarshal(data, models.user, ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}

	decoder, _ := decoders.Decoder(models.user.UUID())
	record, err := decoder.Remap(generic)
	if err != nil {
		t.Fatal(err)
	}
	user := record.(userRecord)
	if _, ok := user.Reference("address").(addressRecord); !ok {
		t.Errorf("remapped address is %T", user.Reference("address"))
	}
	references := user.References("addresses")
	if len(references) != 3 {
		t.Fatalf("remapped %d addresses, want 3", len(references))
	}
	for i, want := range []string{"A", "B", "C"} {
		address, ok := references[i].(addressRecord)
		if !ok {
			t.Fatalf("addresses[%d] is %T, want addressRecord", i, references[i])
		}
		if address.Street() != want {
			t.Errorf("addresses[%d].Street() = %q, want %q", i, address.Street(), want)
		}
	}

	// The projection is a copy: mutating it leaves the generic tree alone.
	mustSet(t, user.SetString("first", "Changed"))
	if generic.String("first") != "Tom" {
		t.Error("remap shares storage with its source")
	}

	if _, err := decoder.Remap(generic.Object("address")); !errors.Is(err, model.ErrModelMismatch) {
		t.Errorf("remapping an address with the user decoder: err = %v, want ErrModelMismatch", err)
	}
}

func TestRemapIsIdempotent(t *testing.T) {
	models := newTestModels(t)
	decoders := newDecoders(models)
	decoder, _ := decoders.Decoder(models.user.UUID())
	typedDecoder := decoder.(*TypedDecoder[userRecord])

	data, err := sampleUser(t, models).Marshal(nil)
	if err != nil {
		t.Fatal(err)
	}
	original, err := typedDecoder.Unmarshal(data, ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}

	again, err := typedDecoder.RemapTyped(original.MessageObject())
	if err != nil {
		t.Fatal(err)
	}
	if !again.MessageObject().Equal(original.MessageObject()) {
		t.Fatalf("remap changed the value:\n%s\nwant:\n%s", again.Explain(), original.Explain())
	}
	if _, ok := again.Reference("address").(addressRecord); !ok {
		t.Errorf("nested address lost its type: %T", again.Reference("address"))
	}
}

func nodeModel(t *testing.T) *model.Object {
	t.Helper()
	node := model.NewObject("node-model", "node", 1)
	if _, err := node.AddSingleReference("child", 1, node); err != nil {
		t.Fatal(err)
	}
	return node
}

// nodeChain encodes a node whose child references nest levels deep.
// Nested headers carry nestedVersion.
func nodeChain(t *testing.T, node *model.Object, levels int, nestedVersion int16) []byte {
	t.Helper()
	var buffer bytes.Buffer
	w := wire.NewWriter(&buffer)
	w.String(node.UUID())
	w.Int16(node.Version())
	for range levels {
		w.Int16(1)
		w.Byte(model.TypeObjectSingleReference.ID())
		w.Int16(1)
		w.String(node.UUID())
		w.Int16(nestedVersion)
	}
	w.Int16(0)
	if err := w.Err(); err != nil {
		t.Fatal(err)
	}
	return buffer.Bytes()
}

func TestNestingDepthIsBounded(t *testing.T) {
	node := nodeModel(t)
	typed := DecoderMap{}
	typed.Add(NewTypedDecoder(node, typed, func(o *Object) *Object { return o }))

	tests := []struct {
		name    string
		levels  int
		options ReadOptions
		tooDeep bool
	}{
		{"at limit", 3, ReadOptions{MaxDepth: 3}, false},
		{"past limit", 4, ReadOptions{MaxDepth: 3}, true},
		{"typed at limit", 3, ReadOptions{MaxDepth: 3, Decoders: typed}, false},
		{"typed past limit", 4, ReadOptions{MaxDepth: 3, Decoders: typed}, true},
		{"default limit", DefaultMaxDepth + 1, ReadOptions{}, true},
		{"typed default limit", DefaultMaxDepth + 1, ReadOptions{Decoders: typed}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data := nodeChain(t, node, test.levels, node.Version())
			decoded, err := Unmarshal(data, node, test.options)
			if test.tooDeep {
				if !errors.Is(err, ErrTooDeep) {
					t.Fatalf("err = %v, want ErrTooDeep", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			depth := 0
			for current := decoded; ; depth++ {
				child := current.Reference("child")
				if child == nil {
					break
				}
				current = child.MessageObject()
			}
			if depth != test.levels {
				t.Errorf("decoded %d levels, want %d", depth, test.levels)
			}
		})
	}
}

func TestTypedDecoderUsesCallerLogger(t *testing.T) {
	node := nodeModel(t)
	typed := DecoderMap{}
	typed.Add(NewTypedDecoder(node, typed, func(o *Object) *Object { return o }))
	data := nodeChain(t, node, 2, 7)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	if _, err := Unmarshal(data, node, ReadOptions{Decoders: typed, Logger: logger}); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := strings.Count(logs.String(), `"stream_version":7`); got != 2 {
		t.Errorf("caller logger saw %d nested version warnings, want 2:\n%s", got, logs.String())
	}
}
