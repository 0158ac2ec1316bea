// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Command modelwire inspects model collection descriptors and encoded
// messages.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	catalogcmd "github.com/modelwire/modelwire/cmd/modelwire/catalog"
	"github.com/modelwire/modelwire/cmd/modelwire/cli"
	messagecmd "github.com/modelwire/modelwire/cmd/modelwire/message"
	modelcmd "github.com/modelwire/modelwire/cmd/modelwire/model"
	"github.com/modelwire/modelwire/lib/registry"
	"github.com/modelwire/modelwire/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own diagnostics (model validate)
		// return an ExitError; there is nothing more to say.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "modelwire",
		Description: `modelwire: schema-driven binary messages.

Inspect model collection descriptors, decode captured messages, keep
a catalog of model versions, and mint model uuids.`,
		Subcommands: []*cli.Command{
			modelcmd.Command(),
			messagecmd.Command(),
			catalogcmd.Command(),
			uuidCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("modelwire %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

func uuidCommand() *cli.Command {
	var count int
	return &cli.Command{
		Name:    "uuid",
		Summary: "Print fresh model uuids",
		Usage:   "modelwire uuid [-n N]",
		Description: `Print fresh model uuids, one per line.

A model uuid is chosen once, when a logical type is introduced, and
kept by every later version of that type.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("uuid", pflag.ContinueOnError)
			flagSet.IntVarP(&count, "count", "n", 1, "number of uuids to print")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("uuid takes no positional arguments, got %q", args[0])
			}
			return printUUIDs(os.Stdout, count)
		},
	}
}

func printUUIDs(w io.Writer, count int) error {
	if count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", count)
	}
	for range count {
		if _, err := fmt.Fprintln(w, registry.NewModelUUID()); err != nil {
			return err
		}
	}
	return nil
}
