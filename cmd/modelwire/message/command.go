// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/modelwire/modelwire/cmd/modelwire/cli"
	"github.com/modelwire/modelwire/lib/attachment"
	"github.com/modelwire/modelwire/lib/catalog"
	libmessage "github.com/modelwire/modelwire/lib/message"
	"github.com/modelwire/modelwire/lib/modeldef"
)

// Command returns the "message" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "message",
		Summary: "Inspect encoded messages",
		Description: `Inspect encoded messages.

Both subcommands read the message from a trailing file argument or,
without one, from stdin. With --hex the input is hex text rather than
raw bytes; whitespace in it is ignored.`,
		Subcommands: []*cli.Command{
			peekCommand(),
			decodeCommand(),
		},
	}
}

func peekCommand() *cli.Command {
	var (
		hexInput   bool
		outputJSON bool
	)
	return &cli.Command{
		Name:    "peek",
		Summary: "Print the model uuid and version a message was written with",
		Usage:   "modelwire message peek [--hex] [--json] [file]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("peek", pflag.ContinueOnError)
			flagSet.BoolVarP(&hexInput, "hex", "x", false, "treat input as hex")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			data, remaining, err := cli.ReadInput(args, os.Stdin, hexInput)
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				return fmt.Errorf("peek takes at most one file argument, got %q", remaining[0])
			}
			return peek(os.Stdout, data, outputJSON)
		},
	}
}

func decodeCommand() *cli.Command {
	var (
		models        string
		catalogPath   string
		attachments   string
		attachmentKey string
		hexInput      bool
		outputJSON    bool
		verbose       bool
	)
	return &cli.Command{
		Name:    "decode",
		Summary: "Decode a message against the models of a descriptor or catalog",
		Usage:   "modelwire message decode (--models <descriptor> | --catalog PATH) [--attachments DIR] [--hex] [--json] [file]",
		Description: `Decode a message against the models of a descriptor and print it.

With --catalog the models come from a catalog database instead, and
the message decodes against exactly the model version it was written
with, even when a newer version has been imported since.

The model is chosen by the uuid in the message header. Without --json
the message is printed as an indented tree; with it, as a JSON object
keyed by property name.

File properties are printed with their name, length, and transfer id.
With --attachments pointing at an attachment store directory, the
content is restored and the local path printed as well. A store
written with an encryption key needs the same key, given with
--attachment-key as a file holding 32 raw bytes or 64 hex digits.`,
		Examples: []cli.Example{
			{
				Description: "Decode a captured message as JSON",
				Command:     "modelwire message decode --models users.yaml --json capture.bin",
			},
			{
				Description: "Decode a hex dump from a log line",
				Command:     "echo '0009 6669 ...' | modelwire message decode --models users.yaml --hex",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.StringVar(&models, "models", "", "model collection descriptor")
			flagSet.StringVar(&catalogPath, "catalog", "", "model catalog database, instead of --models")
			flagSet.StringVar(&attachments, "attachments", "", "attachment store directory used to restore file properties")
			flagSet.StringVar(&attachmentKey, "attachment-key", "", "file holding the attachment store encryption key")
			flagSet.BoolVarP(&hexInput, "hex", "x", false, "treat input as hex")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			flagSet.BoolVarP(&verbose, "verbose", "v", false, "log debug detail")
			return flagSet
		},
		Run: func(args []string) error {
			if (models == "") == (catalogPath == "") {
				return fmt.Errorf("exactly one of --models and --catalog is required")
			}
			if attachmentKey != "" && attachments == "" {
				return fmt.Errorf("--attachment-key requires --attachments")
			}
			data, remaining, err := cli.ReadInput(args, os.Stdin, hexInput)
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				return fmt.Errorf("decode takes at most one file argument, got %q", remaining[0])
			}
			logger := cli.NewCommandLogger(verbose).With("command", "message/decode")
			decodeMessage, err := loadDecoder(models, catalogPath, logger)
			if err != nil {
				return err
			}
			options := libmessage.ReadOptions{Logger: logger}
			if attachments != "" {
				storeOptions := attachment.StoreOptions{Directory: attachments, Logger: logger}
				if attachmentKey != "" {
					if storeOptions.EncryptionKey, err = readKey(attachmentKey); err != nil {
						return err
					}
				}
				store, err := attachment.NewStore(storeOptions)
				if err != nil {
					return err
				}
				options.Files = store
			}
			return decode(os.Stdout, decodeMessage, data, options, outputJSON)
		},
	}
}

// decodeFunc decodes one top-level message.
type decodeFunc func(data []byte, options libmessage.ReadOptions) (libmessage.Record, error)

// loadDecoder returns the decode function for a descriptor's models, or
// for every version stored in a catalog.
func loadDecoder(descriptorPath, catalogPath string, logger *slog.Logger) (decodeFunc, error) {
	if descriptorPath != "" {
		collection, err := modeldef.Load(descriptorPath)
		if err != nil {
			return nil, err
		}
		return collection.NewRegistry().Decode, nil
	}
	cat, err := catalog.Open(catalog.Options{Path: catalogPath, PoolSize: 1, Logger: logger})
	if err != nil {
		return nil, err
	}
	defer cat.Close()
	reg, err := cat.Registry(context.Background())
	if err != nil {
		return nil, err
	}
	return reg.DecodeAnyVersion, nil
}

// readKey reads an attachment encryption key: either exactly KeySize
// raw bytes or their hex encoding, surrounding whitespace ignored.
func readKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attachment key: %w", err)
	}
	if len(data) == attachment.KeySize {
		return data, nil
	}
	text := strings.TrimSpace(string(data))
	if len(text) == hex.EncodedLen(attachment.KeySize) {
		key, err := hex.DecodeString(text)
		if err == nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("attachment key %s must hold %d raw bytes or %d hex digits", path, attachment.KeySize, hex.EncodedLen(attachment.KeySize))
}

type header struct {
	UUID    string `json:"uuid"`
	Version int16  `json:"version"`
}

func peek(w io.Writer, data []byte, outputJSON bool) error {
	uuid, version, err := libmessage.PeekHeader(data)
	if err != nil {
		return err
	}
	if outputJSON {
		return cli.WriteJSON(w, header{UUID: uuid, Version: version})
	}
	_, err = fmt.Fprintf(w, "%s\t%d\n", uuid, version)
	return err
}

func decode(w io.Writer, decodeMessage decodeFunc, data []byte, options libmessage.ReadOptions, outputJSON bool) error {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	record, err := decodeMessage(data, options)
	if err != nil {
		return err
	}
	object := record.MessageObject()
	if outputJSON {
		return cli.WriteJSON(w, object.Map())
	}
	_, err = io.WriteString(w, object.Explain())
	return err
}
