// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package modeldef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/modelwire/modelwire/lib/codec"
)

// Format is a descriptor serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// FormatFromPath selects the format by file extension: .yaml and .yml
// are YAML, .json and .jsonc are JSONC, .cbor is CBOR.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("cannot tell the descriptor format of %s (want .yaml, .yml, .json, .jsonc or .cbor)", path)
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(name string) (Format, error) {
	switch format := Format(strings.ToLower(name)); format {
	case FormatYAML, FormatJSON, FormatCBOR:
		return format, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown descriptor format %q", name)
}

// Parse decodes a descriptor. YAML and JSON input reject unknown
// fields so that a misspelled key fails loudly. JSON input may contain
// // and /* */ comments and trailing commas.
func Parse(data []byte, format Format) (*Descriptor, error) {
	var descriptor Descriptor
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&descriptor); err != nil {
			return nil, fmt.Errorf("parsing descriptor: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&descriptor); err != nil {
			return nil, fmt.Errorf("parsing descriptor: %w", err)
		}
	case FormatCBOR:
		if err := codec.Unmarshal(data, &descriptor); err != nil {
			return nil, fmt.Errorf("parsing descriptor: %w", err)
		}
	default:
		return nil, fmt.Errorf("parsing descriptor: unknown format %q", format)
	}
	return &descriptor, nil
}

// ReadFile reads and parses the descriptor at path, choosing the format
// by extension. A descriptor without a name is named after the file.
func ReadFile(path string) (*Descriptor, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	descriptor, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if descriptor.Name == "" {
		descriptor.Name = NameFromPath(path)
	}
	return descriptor, nil
}

// NameFromPath strips the directory and extension from path:
// "protocol/users.yaml" yields "users".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Encode writes descriptor in format. JSON output is indented; CBOR
// output is deterministic.
func Encode(descriptor *Descriptor, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buffer bytes.Buffer
		encoder := yaml.NewEncoder(&buffer)
		encoder.SetIndent(2)
		if err := encoder.Encode(descriptor); err != nil {
			return nil, fmt.Errorf("encoding descriptor: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encoding descriptor: %w", err)
		}
		return buffer.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(descriptor, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding descriptor: %w", err)
		}
		return append(data, '\n'), nil
	case FormatCBOR:
		data, err := codec.Marshal(descriptor)
		if err != nil {
			return nil, fmt.Errorf("encoding descriptor: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("encoding descriptor: unknown format %q", format)
}
