// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/modelwire/modelwire/cmd/modelwire/cli"
	libcatalog "github.com/modelwire/modelwire/lib/catalog"
	"github.com/modelwire/modelwire/lib/modeldef"
)

// Command returns the "catalog" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Summary: "Store model definitions in a local catalog",
		Description: `Store model definitions in a local SQLite catalog.

A catalog keeps every version of every model ever imported. A stored
(uuid, version) pair never changes: importing a different definition
under the same pair fails and leaves the catalog untouched.`,
		Subcommands: []*cli.Command{
			importCommand(),
			listCommand(),
		},
	}
}

func importCommand() *cli.Command {
	var (
		database string
		verbose  bool
	)
	return &cli.Command{
		Name:    "import",
		Summary: "Add the models of a descriptor to a catalog",
		Usage:   "modelwire catalog import --db PATH <descriptor>...",
		Examples: []cli.Example{
			{
				Description: "Record the current user models",
				Command:     "modelwire catalog import --db models.db protocol/users.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
			flagSet.StringVar(&database, "db", "", "catalog database file (required)")
			flagSet.BoolVarP(&verbose, "verbose", "v", false, "log debug detail")
			return flagSet
		},
		Run: func(args []string) error {
			if database == "" {
				return fmt.Errorf("--db is required")
			}
			if len(args) == 0 {
				return fmt.Errorf("import takes at least one descriptor path")
			}
			logger := cli.NewCommandLogger(verbose).With("command", "catalog/import")
			cat, err := libcatalog.Open(libcatalog.Options{Path: database, Logger: logger})
			if err != nil {
				return err
			}
			defer cat.Close()
			return importDescriptors(context.Background(), os.Stdout, cat, args)
		},
	}
}

func listCommand() *cli.Command {
	var (
		database   string
		outputJSON bool
	)
	return &cli.Command{
		Name:    "list",
		Summary: "List the model versions stored in a catalog",
		Usage:   "modelwire catalog list --db PATH [--json]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.StringVar(&database, "db", "", "catalog database file (required)")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if database == "" {
				return fmt.Errorf("--db is required")
			}
			if len(args) > 0 {
				return fmt.Errorf("list takes no positional arguments, got %q", args[0])
			}
			cat, err := libcatalog.Open(libcatalog.Options{Path: database, Logger: cli.NewCommandLogger(false)})
			if err != nil {
				return err
			}
			defer cat.Close()
			return list(context.Background(), os.Stdout, cat, outputJSON)
		},
	}
}

func importDescriptors(ctx context.Context, w io.Writer, cat *libcatalog.Catalog, paths []string) error {
	for _, path := range paths {
		collection, err := modeldef.Load(path)
		if err != nil {
			return err
		}
		added, err := cat.PutCollection(ctx, collection)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(w, "%s: %d of %d models added\n", path, added, len(collection.Models()))
	}
	return nil
}

func list(ctx context.Context, w io.Writer, cat *libcatalog.Catalog, outputJSON bool) error {
	entries, err := cat.Entries(ctx)
	if err != nil {
		return err
	}
	if outputJSON {
		return cli.WriteJSON(w, entries)
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UUID\tVERSION\tNAME\tCOLLECTION\tSIZE\tADDED")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n",
			entry.UUID, entry.Version, entry.Name, entry.Collection, entry.Size, entry.AddedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
