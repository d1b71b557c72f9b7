// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Flag and positional splitting for herder subcommands.

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgParser splits the arguments after a command name. "--name value",
// "--name=value" and "-n value" set string flags; a flag with no value
// (or "=true"/"=false") is boolean. Everything else is positional, and
// the first positional is the subcommand.
//
//	p := NewArgParser([]string{"get", "server.url", "--force"})
//	p.Subcommand()     // "get"
//	p.Positional(1)    // "server.url"
//	p.BoolFlag("force") // true
type ArgParser struct {
	values     map[string]string
	switches   map[string]bool
	positional []string
}

// NewArgParser parses raw.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		values:   make(map[string]string),
		switches: make(map[string]bool),
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			continue
		}

		name, val, hasVal := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		switch {
		case hasVal && (val == "true" || val == "false"):
			p.switches[name] = val == "true"
		case hasVal:
			p.values[name] = val
		case i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-"):
			i++
			p.values[name] = raw[i]
		default:
			p.switches[name] = true
		}
	}
	return p
}

func flagName(name string) string { return strings.TrimLeft(name, "-") }

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string { return p.Positional(0) }

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// Flag returns the value of a string flag, or "".
func (p *ArgParser) Flag(name string) string { return p.values[flagName(name)] }

// BoolFlag reports whether a boolean flag is set. A switch that swallowed
// the next word as its value ("--force show") still counts as set.
func (p *ArgParser) BoolFlag(name string) bool {
	name = flagName(name)
	if on, ok := p.switches[name]; ok {
		return on
	}
	_, ok := p.values[name]
	return ok
}

// HasFlag reports whether the flag appeared at all.
func (p *ArgParser) HasFlag(name string) bool {
	name = flagName(name)
	_, isValue := p.values[name]
	_, isSwitch := p.switches[name]
	return isValue || isSwitch
}

// ParsePositiveInt parses the value of flag as an integer above zero.
func ParsePositiveInt(s, flag string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%s requires a value", flag)
	}
	n, err := strconv.Atoi(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s must be a whole number, got %q", flag, s)
	case n <= 0:
		return 0, fmt.Errorf("%s must be positive, got %d", flag, n)
	}
	return n, nil
}
