// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tfctl/ncdiff/internal/command"
	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/log"
	"github.com/tfctl/ncdiff/internal/version"
)

var ctx = context.Background()

// valueFlags take a separate value argument when not written as --flag=value.
var valueFlags = map[string]bool{
	"aggr":     true,
	"depth":    true,
	"endpoint": true,
	"filter":   true,
	"ignore":   true,
	"output":   true,
	"padding":  true,
	"path":     true,
	"profile":  true,
	"region":   true,
	"sort":     true,
}

// flagAliases maps short names to the flag they stand for.
var flagAliases = map[string]string{
	"c": "color",
	"d": "depth",
	"f": "filter",
	"o": "output",
	"p": "path",
	"s": "sort",
	"t": "titles",
}

// repeatableFlags accumulate instead of overriding each other.
var repeatableFlags = map[string]bool{
	"ignore": true,
}

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		// Short-circuit completion: pass args directly.
		return args
	}

	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)

	args = deduplicateFlags(args)
	log.Debugf("args after dedup: args=%v", args)
	return args
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly expands an @set argument into the flags stored under
// "<command>.<set>" in the config file. Without an @set, "<command>.defaults"
// is injected right after the command so explicit flags override it.
func processSetOnly(args []string) []string {
	if len(args) < 2 {
		return args
	}

	idx := 2
	set := "defaults"
	insertIdx := idx
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			insertIdx = idx + i
			// Remove the @set argument.
			args = append(args[:insertIdx:insertIdx], args[insertIdx+1:]...)
			break
		}
	}

	entries, _ := config.GetStringSlice(args[1] + "." + set)
	return injectConfigSet(args, entries, insertIdx)
}

// injectConfigSet splits each entry on whitespace and inserts the fields at
// insertIdx.
func injectConfigSet(args []string, entries []string, insertIdx int) []string {
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)+len(expanded))
	out = append(out, args[:insertIdx]...)
	out = append(out, expanded...)
	return append(out, args[insertIdx:]...)
}

// deduplicateFlags keeps only the last occurrence of each flag after the
// command so later values override earlier ones (config defaults first,
// command line last). Repeatable flags and positional arguments are kept as
// they are. Everything after a "--" terminator is left alone.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type group struct {
		key  string
		args []string
	}

	var groups []group
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if a == "--" {
			groups = append(groups, group{args: rest[i:]})
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			groups = append(groups, group{args: []string{a}})
			continue
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if alias, ok := flagAliases[name]; ok {
			name = alias
		}
		g := group{key: name, args: []string{a}}
		if !hasValue && valueFlags[name] && i+1 < len(rest) {
			i++
			g.args = append(g.args, rest[i])
		}
		groups = append(groups, g)
	}

	last := map[string]int{}
	for i, g := range groups {
		if g.key != "" {
			last[g.key] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, g := range groups {
		if g.key != "" && !repeatableFlags[g.key] && last[g.key] != i {
			continue
		}
		out = append(out, g.args...)
	}
	return out
}
