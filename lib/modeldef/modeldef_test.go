// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package modeldef

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/registry"
	"github.com/modelwire/modelwire/lib/testutil"
)

func TestYAMLAndJSONCAgree(t *testing.T) {
	fromYAML, err := ReadFile(filepath.Join("testdata", "users.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	fromJSONC, err := ReadFile(filepath.Join("testdata", "users.jsonc"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromYAML, fromJSONC) {
		t.Fatalf("descriptors differ:\nyaml:  %+v\njsonc: %+v", fromYAML, fromJSONC)
	}
}

func TestLoad(t *testing.T) {
	collection, err := Load(filepath.Join("testdata", "users.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if collection.Name != "users" || collection.Namespace != "org.example.users" || collection.Version != 1 {
		t.Errorf("collection header = %q %q %d", collection.Name, collection.Namespace, collection.Version)
	}

	address, ok := collection.Model("adr.model")
	if !ok || address.Version() != 1 || address.Title() != "Postal address" {
		t.Fatalf("address = %v", address)
	}
	user, ok := collection.ModelByName("user")
	if !ok || user.Version() != 2 || user.SpecificType() != "UserRecord" {
		t.Fatalf("user = %v", user)
	}

	checks := []struct {
		name       string
		key        int16
		typ        model.PropertyType
		referenced *model.Object
	}{
		{"address", 4, model.TypeObjectSingleReference, address},
		{"addresses", 5, model.TypeObjectMultiReference, address},
		{"manager", 8, model.TypeObjectSingleReference, user},
		{"avatar", 9, model.TypeFile, nil},
	}
	for _, check := range checks {
		property, ok := user.PropertyByName(check.name)
		if !ok {
			t.Errorf("user.%s missing", check.name)
			continue
		}
		if property.Key() != check.key || property.Type() != check.typ || property.ReferencedObject() != check.referenced {
			t.Errorf("user.%s = %v", check.name, property)
		}
	}

	state, _ := user.PropertyByName("state")
	if !slices.Equal(state.EnumValues(), []string{"active", "blocked"}) {
		t.Errorf("state values = %v", state.EnumValues())
	}
	created, _ := user.PropertyByName("created")
	if created.ContentType() != model.ContentTimestamp {
		t.Errorf("created content = %s", created.ContentType())
	}
	addressProperty, _ := user.PropertyByName("address")
	if addressProperty.Title() != "Address of user" {
		t.Errorf("address title = %q", addressProperty.Title())
	}

	services := collection.ServiceSchemas()
	if len(services) != 1 || services[0].Name != "userService" {
		t.Fatalf("services = %v", services)
	}
	lookup, ok := services[0].Method("lookup")
	if !ok || lookup.Input != user || lookup.Output != address {
		t.Errorf("lookup = %+v", lookup)
	}
}

func TestValidateReportsEveryIssue(t *testing.T) {
	descriptor := &Descriptor{
		Name:    "broken",
		Version: 1,
		Models: []ModelDescriptor{
			{Name: "a", UUID: "u1", Properties: []PropertyDescriptor{
				{Name: "x", Key: 1, Type: "STRING"},
				{Name: "x", Key: 1, Type: "INT"},
				{Name: "ref", Key: 2, Type: "OBJECT_SINGLE_REFERENCE"},
				{Name: "dangling", Key: 3, Type: "OBJECT_MULTI_REFERENCE", Reference: "nowhere"},
				{Name: "kind", Key: 4, Type: "ENUM"},
				{Name: "colour", Key: 5, Type: "COLOR"},
				{Name: "when", Key: 6, Type: "LONG", Content: "SOMETIME"},
				{Name: "stray", Key: 7, Type: "INT", Reference: "a", Values: []string{"v"}},
			}},
			{Name: "a", UUID: "u1"},
		},
		Services: []ServiceDescriptor{
			{Name: "svc", Methods: []MethodDescriptor{{Name: "call", Input: "a", Output: "missing"}}},
		},
	}

	issues := Validate(descriptor)
	wants := []string{
		`duplicate property name`,
		`duplicate key 1`,
		`reference properties must name the referenced model`,
		`referenced model "nowhere" is not declared`,
		`ENUM properties must list their values`,
		`unknown property type "COLOR"`,
		`SOMETIME`,
		`reference is only valid on reference properties`,
		`values are only valid on ENUM properties`,
		`duplicate model name`,
		`duplicate uuid "u1"`,
		`output model "missing" is not declared`,
	}
	joined := strings.Join(issues, "\n")
	for _, want := range wants {
		if !strings.Contains(joined, want) {
			t.Errorf("issues lack %q:\n%s", want, joined)
		}
	}

	if _, err := Build(descriptor); !errors.Is(err, model.ErrInvalidDefinition) {
		t.Errorf("Build err = %v, want ErrInvalidDefinition", err)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	yamlInput := []byte("name: x\nversion: 1\nmodels:\n  - name: a\n    uuid: u\n    propertys: []\n")
	if _, err := Parse(yamlInput, FormatYAML); err == nil {
		t.Error("YAML with a misspelled key parsed without error")
	}
	jsonInput := []byte(`{"name": "x", "version": 1, "modles": []}`)
	if _, err := Parse(jsonInput, FormatJSON); err == nil {
		t.Error("JSON with a misspelled key parsed without error")
	}
}

func TestReadFileNamesUnnamedDescriptors(t *testing.T) {
	directory := t.TempDir()
	path := testutil.WriteFile(t, directory, "inventory.yml", []byte("version: 3\nmodels:\n  - {name: item, uuid: item-1, properties: []}\n"))
	descriptor, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if descriptor.Name != "inventory" {
		t.Errorf("Name = %q, want inventory", descriptor.Name)
	}
	if _, err := ReadFile(filepath.Join(directory, "inventory.toml")); err == nil {
		t.Error("unknown extension accepted")
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.yaml", FormatYAML}, {"a.YML", FormatYAML}, {"a.json", FormatJSON},
		{"a.jsonc", FormatJSON}, {"a.cbor", FormatCBOR},
	}
	for _, test := range tests {
		if got, err := FormatFromPath(test.path); err != nil || got != test.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", test.path, got, err)
		}
	}
	if format, err := ParseFormat("yml"); err != nil || format != FormatYAML {
		t.Errorf("ParseFormat(yml) = %q, %v", format, err)
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("ParseFormat(toml) succeeded")
	}
}

// definitions encodes every model of c, which pins the complete
// definition including referenced models.
func definitions(t *testing.T, c *registry.Collection) [][]byte {
	t.Helper()
	var result [][]byte
	for _, m := range c.Models() {
		data, err := m.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		result = append(result, data)
	}
	return result
}

func TestDescribeRoundTrip(t *testing.T) {
	original, err := Load(filepath.Join("testdata", "users.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := definitions(t, original)

	for _, format := range []Format{FormatYAML, FormatJSON, FormatCBOR} {
		t.Run(string(format), func(t *testing.T) {
			encoded, err := Encode(Describe(original), format)
			if err != nil {
				t.Fatal(err)
			}
			parsed, err := Parse(encoded, format)
			if err != nil {
				t.Fatalf("Parse: %v\n%s", err, encoded)
			}
			rebuilt, err := Build(parsed)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !slices.EqualFunc(definitions(t, rebuilt), want, bytes.Equal) {
				t.Error("rebuilt models differ from the original")
			}
			if rebuilt.Name != original.Name || rebuilt.Namespace != original.Namespace || rebuilt.Version != original.Version {
				t.Errorf("header = %q %q %d", rebuilt.Name, rebuilt.Namespace, rebuilt.Version)
			}
			method, ok := rebuilt.ServiceSchemas()[0].Method("lookup")
			if !ok || method.Input.Name() != "user" || method.Output.Name() != "address" {
				t.Errorf("lookup = %+v", method)
			}
		})
	}
}

func TestDescribeOmitsDefaults(t *testing.T) {
	collection, err := Load(filepath.Join("testdata", "users.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	described := Describe(collection)
	if described.Models[0].Version != 0 || described.Models[1].Version != 2 {
		t.Errorf("model versions = %d, %d; want 0 (inherited) and 2", described.Models[0].Version, described.Models[1].Version)
	}
	yamlOutput, err := Encode(described, FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(yamlOutput), "content: GENERIC") {
		t.Errorf("generic content type written out:\n%s", yamlOutput)
	}
	if !strings.Contains(string(yamlOutput), "content: TIMESTAMP") {
		t.Errorf("timestamp content type missing:\n%s", yamlOutput)
	}
}
