// SPDX-License-Identifier: MPL-2.0

package task

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// FlagKind is the value type of a declared task flag.
type FlagKind int

const (
	// FlagString declares a string-valued flag.
	FlagString FlagKind = iota
	// FlagBool declares a boolean flag.
	FlagBool
	// FlagInt declares an integer flag.
	FlagInt
)

type (
	// Flag declares one accepted flag on a task type. Declarations are
	// turned into a fresh pflag.FlagSet per Instance, so parsed values
	// never bleed between invocations.
	Flag struct {
		Name      string
		Shorthand string
		Usage     string
		// Default is the textual default value; parsed per Kind
		// ("true"/"false" for FlagBool, decimal for FlagInt).
		Default string
		Kind    FlagKind
	}

	// Positional declares one named positional argument. Positionals are
	// matched in declaration order against the tokens left over after
	// flag parsing.
	Positional struct {
		Name     string
		Required bool
	}
)

// buildFlagSet constructs the per-instance parser from the type's
// declarations and the optional SetupFlags hook.
func buildFlagSet(name string, t *Type) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	for _, f := range t.Flags {
		switch f.Kind {
		case FlagBool:
			def := f.Default == "true"
			fs.BoolP(f.Name, f.Shorthand, def, f.Usage)
		case FlagInt:
			def, _ := strconv.Atoi(f.Default)
			fs.IntP(f.Name, f.Shorthand, def, f.Usage)
		default:
			fs.StringP(f.Name, f.Shorthand, f.Default, f.Usage)
		}
	}
	if t.SetupFlags != nil {
		t.SetupFlags(fs)
	}
	if t.ExtraArgs {
		// Unknown shorthands inside a recognized cluster flow through
		// instead of failing the parse; whole unknown flags never reach
		// the parser (see splitKnownArgs).
		fs.ParseErrorsWhitelist.UnknownFlags = true
	}
	return fs
}

// splitKnownArgs separates argv into the tokens fs can parse (declared
// flags with their values) and the leftover tokens: positional candidates
// plus flags the set does not declare, kept in their original order.
// pflag's unknown-flag whitelist discards unknown tokens instead of
// returning them, so passthrough types segregate before parsing.
func splitKnownArgs(fs *pflag.FlagSet, argv []string) (known, leftover []string) {
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		switch {
		case tok == "--":
			// End of options; the rest is raw passthrough.
			leftover = append(leftover, argv[i+1:]...)
			return known, leftover
		case strings.HasPrefix(tok, "--"):
			name, _, hasValue := strings.Cut(tok[2:], "=")
			f := fs.Lookup(name)
			if f == nil {
				leftover = append(leftover, tok)
				continue
			}
			known = append(known, tok)
			if !hasValue && f.NoOptDefVal == "" && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			f := fs.ShorthandLookup(tok[1:2])
			if f == nil {
				leftover = append(leftover, tok)
				continue
			}
			known = append(known, tok)
			if len(tok) == 2 && f.NoOptDefVal == "" && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}
		default:
			leftover = append(leftover, tok)
		}
	}
	return known, leftover
}

// looksLikeFlag reports whether a leftover token is a flag-shaped extra
// rather than a positional candidate. A lone "-" conventionally means
// stdin and stays positional.
func looksLikeFlag(tok string) bool {
	return len(tok) > 1 && strings.HasPrefix(tok, "-")
}
