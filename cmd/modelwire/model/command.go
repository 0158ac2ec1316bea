// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/modelwire/modelwire/cmd/modelwire/cli"
	libmodel "github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/modeldef"
	"github.com/modelwire/modelwire/lib/registry"
)

// Command returns the "model" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "model",
		Summary: "Inspect, validate, and export model descriptors",
		Description: `Work with model collection descriptors.

A descriptor is a YAML (.yaml, .yml), JSONC (.json, .jsonc), or CBOR
(.cbor) file listing the models of a collection, their properties, and
the service schemas built from them.`,
		Subcommands: []*cli.Command{
			showCommand(),
			validateCommand(),
			exportCommand(),
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Print every model of a descriptor with its properties",
		Usage:   "modelwire model show <descriptor>",
		Examples: []cli.Example{
			{
				Description: "List the models of a collection",
				Command:     "modelwire model show protocol/users.yaml",
			},
		},
		Run: func(args []string) error {
			path, err := descriptorArgument("show", args)
			if err != nil {
				return err
			}
			collection, err := modeldef.Load(path)
			if err != nil {
				return err
			}
			return show(os.Stdout, collection)
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Summary: "Check a descriptor and report every problem",
		Usage:   "modelwire model validate <descriptor>",
		Description: `Parse a descriptor and check it the way loading it would.

Every problem is printed, not just the first. The exit code is 1 when
any problem is found.`,
		Run: func(args []string) error {
			path, err := descriptorArgument("validate", args)
			if err != nil {
				return err
			}
			return validate(os.Stdout, path)
		},
	}
}

func exportCommand() *cli.Command {
	var (
		format    string
		modelName string
	)
	return &cli.Command{
		Name:    "export",
		Summary: "Convert a descriptor to another format",
		Usage:   "modelwire model export <descriptor> [--format json|yaml|cbor|binary] [--model NAME]",
		Description: `Write the collection of a descriptor to stdout.

The json, yaml, and cbor formats write a normalized descriptor. The
binary format writes model definitions in the schema encoding peers
exchange at runtime: with --model, the definition of that model (and
every model it references); without it, every model of the collection.`,
		Examples: []cli.Example{
			{
				Description: "Normalize a JSONC descriptor to YAML",
				Command:     "modelwire model export users.jsonc --format yaml",
			},
			{
				Description: "Ship the user model definition to a peer",
				Command:     "modelwire model export users.yaml --format binary --model user > user.schema",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
			flagSet.StringVarP(&format, "format", "f", "yaml", "output format: json, yaml, cbor, or binary")
			flagSet.StringVarP(&modelName, "model", "m", "", "export only this model, by name or uuid (binary format)")
			return flagSet
		},
		Run: func(args []string) error {
			path, err := descriptorArgument("export", args)
			if err != nil {
				return err
			}
			collection, err := modeldef.Load(path)
			if err != nil {
				return err
			}
			return export(os.Stdout, collection, format, modelName)
		},
	}
}

func descriptorArgument(command string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s takes exactly one descriptor path, got %d arguments", command, len(args))
	}
	return args[0], nil
}

// show writes a human-readable listing of collection.
func show(w io.Writer, collection *registry.Collection) error {
	fmt.Fprintf(w, "collection %s", collection.Name)
	if collection.Namespace != "" {
		fmt.Fprintf(w, " (%s)", collection.Namespace)
	}
	fmt.Fprintf(w, " version %d\n", collection.Version)

	for _, m := range collection.Models() {
		fmt.Fprintf(w, "\n%s", m)
		if title := m.Title(); title != "" {
			fmt.Fprintf(w, " %q", title)
		}
		if specificType := m.SpecificType(); specificType != "" {
			fmt.Fprintf(w, " as %s", specificType)
		}
		fmt.Fprintln(w)

		tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  KEY\tNAME\tTYPE\tCONTENT\tDETAIL")
		for _, property := range m.Properties() {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n",
				property.Key(), property.Name(), property.Type(), property.ContentType(), detail(property))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	services := collection.ServiceSchemas()
	if len(services) > 0 {
		fmt.Fprintf(w, "\nservices\n")
	}
	for _, service := range services {
		fmt.Fprintf(w, "  %s\n", service.Name)
		for _, method := range service.Methods() {
			fmt.Fprintf(w, "    %s(%s) -> %s\n", method.Name, method.Input.Name(), method.Output.Name())
		}
	}
	return nil
}

// detail is the type-specific column of show: the referenced model or
// the enum values, then the title.
func detail(property *libmodel.Property) string {
	var parts []string
	switch {
	case property.IsReference():
		referenced := property.ReferencedObject()
		parts = append(parts, fmt.Sprintf("-> %s [%s]", referenced.Name(), referenced.UUID()))
	case property.IsEnum():
		parts = append(parts, "["+strings.Join(property.EnumValues(), " ")+"]")
	}
	if property.SpecificType() != "" {
		parts = append(parts, "as "+property.SpecificType())
	}
	if property.Title() != "" {
		parts = append(parts, fmt.Sprintf("%q", property.Title()))
	}
	return strings.Join(parts, " ")
}

// validate reports every issue of the descriptor at path. Issues end
// the command with exit code 1 after they are printed.
func validate(w io.Writer, path string) error {
	descriptor, err := modeldef.ReadFile(path)
	if err != nil {
		return err
	}
	if issues := modeldef.Validate(descriptor); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(w, "%s: %s\n", path, issue)
		}
		return &cli.ExitError{Code: 1}
	}
	collection, err := modeldef.Build(descriptor)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: ok (%d models, %d services)\n",
		path, len(collection.Models()), len(collection.ServiceSchemas()))
	return nil
}

// export writes collection in format. modelName restricts binary
// output to one model and is rejected for descriptor formats, whose
// references could not resolve without the rest of the collection.
func export(w io.Writer, collection *registry.Collection, format, modelName string) error {
	var (
		data []byte
		err  error
	)
	if format == "binary" {
		if modelName == "" {
			data, err = collection.NewRegistry().MarshalBinary()
		} else {
			m, ok := collection.ModelByName(modelName)
			if !ok {
				m, ok = collection.Model(modelName)
			}
			if !ok {
				return fmt.Errorf("collection %s has no model %q", collection.Name, modelName)
			}
			data, err = m.MarshalBinary()
		}
	} else {
		if modelName != "" {
			return fmt.Errorf("--model applies only to --format binary")
		}
		descriptorFormat, parseErr := modeldef.ParseFormat(format)
		if parseErr != nil {
			return fmt.Errorf("%w (or binary)", parseErr)
		}
		data, err = modeldef.Encode(modeldef.Describe(collection), descriptorFormat)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
