// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the modelwire
// tool.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. Commands are assembled into a tree in cmd/modelwire and
// dispatched through [Command.Execute], which handles flag parsing,
// subcommand routing, and help output with examples.
//
// An unknown subcommand or flag is answered with the closest known
// name by Levenshtein distance (at most 3 edits), see suggest.go.
//
// Commands that read a message or a blob take it from a trailing file
// argument or from stdin, optionally hex encoded: [ReadInput].
package cli
