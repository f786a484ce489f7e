// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the CLI command set for ncdiff: diff, browse and
// info. It wires flags, config-backed flag defaults, validators and actions.
package command
