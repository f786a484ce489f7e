// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// NewGlobalFlags returns the flags shared by every subcommand. With a
// namespace and a config file path, the config-backed flags also resolve
// from "<ns>.<flag>" and then "<flag>" in that file.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored output (default: when stdout is a terminal)",
			Value:   false,
		},
		&cli.StringSliceFlag{
			Name:  "ignore",
			Usage: "path to drop from both snapshots, repeatable",
		},
	}

	for _, f := range []*cli.StringFlag{
		{
			Name:  "aggr",
			Usage: "aggregation mode: stored or computed",
			Value: "stored",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NCDIFF_AGGR"),
			),
			Validator: func(value string) error {
				return FlagValidators(value, AggrValidator)
			},
		},
		{
			Name:  "endpoint",
			Usage: "S3 compatible endpoint URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NCDIFF_ENDPOINT"),
				cli.EnvVar("AWS_ENDPOINT_URL_S3"),
			),
		},
		{
			Name:  "profile",
			Usage: "AWS shared config profile",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWS_PROFILE"),
			),
		},
		{
			Name:  "region",
			Usage: "AWS region for S3 snapshots",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWS_REGION"),
			),
		},
	} {
		if len(params) == 2 && params[1] != "" {
			f = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], f)
		}
		flags = append(flags, f)
	}

	return
}

// NewRenderFlags returns the flags of commands that print a diff tree.
func NewRenderFlags(params ...string) (flags []cli.Flag) {
	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format: text, json or yaml",
		Value:   "text",
		Sources: cli.NewValueSourceChain(),
		Validator: func(value string) error {
			return FlagValidators(value, OutputValidator)
		},
	}
	if len(params) == 2 && params[1] != "" {
		outputFlag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], outputFlag)
	}

	flags = []cli.Flag{
		outputFlag,
		&cli.BoolFlag{
			Name:  "apparent",
			Usage: "show apparent sizes instead of disk usage",
		},
		&cli.BoolFlag{
			Name:  "changed",
			Usage: "hide entries that did not change",
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated filter expressions, e.g. status=created,delta>1MiB",
		},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "padding between text columns",
			Value: 1,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated fields to sort siblings by (name, path, kind, status, delta, old, new)",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
