// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"message", "mesage", 1},
		{"validate", "valdiate", 2},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			if got := levenshtein(test.a, test.b); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if reverse := levenshtein(test.b, test.a); reverse != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.b, test.a, reverse, test.want)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "show"}, {Name: "validate"}, {Name: "export"}}
	tests := []struct {
		input string
		want  string
	}{
		{"shwo", "show"},
		{"validat", "validate"},
		{"exprot", "export"},
		{"completely-different", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	flagSet.Bool("json", false, "")
	flagSet.String("models", "", "")
	flagSet.BoolP("hex", "x", false, "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--jsno"}, "--json"},
		{[]string{"--models=a.yaml", "--hx"}, "--hex"},
		{[]string{"-x", "--modls", "a.yaml"}, "--models"},
		{[]string{"--unrelated-flag-name"}, ""},
		{[]string{"--", "--jsno"}, ""},
	}
	for _, test := range tests {
		if got := suggestFlag(test.args, flagSet); got != test.want {
			t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}
