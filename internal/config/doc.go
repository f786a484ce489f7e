// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for ncdiff's user
// configuration. The configuration is a YAML document named by
// NCDIFF_CFG_FILE or located in the user's configuration directory:
//   - Linux: $XDG_CONFIG_HOME/ncdiff.yaml or $HOME/.config/ncdiff.yaml
//   - macOS: $HOME/Library/Application Support/ncdiff.yaml
//   - Windows: %APPDATA%/ncdiff.yaml
//
// Recognized keys:
//
//	progver: "1.14.2"     # expected ncdu version, mismatches warn
//	ignore: [/srv/tmp]    # paths dropped while parsing snapshots
//	cache:
//	  clean: 24           # purge cached S3 bodies older than this many hours
//	colors:
//	  title: "#87afff"
//	  created: "#5fd75f"
//	  removed: "#ff5f5f"
//	  modified: "#ffd75f"
//	diff:
//	  output: text        # flag defaults, namespaced per subcommand
//	  defaults:           # injected before the command line flags
//	    - --changed
//	  wide:               # expanded in place of @wide
//	    - --depth 3
package config
