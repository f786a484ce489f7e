// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/ncdiff/internal/meta"
)

const bashCompletionScript = `# bash completion for ncdiff
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_ncdiff()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "browse diff info completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--aggr --color -c --endpoint --ignore --profile --region"
    local render="--apparent --changed --filter -f --output -o --padding --sort -s --titles -t"

    case "$cmd" in
        diff)
            local opts="$common $render --depth -d --eager --path -p"
            ;;
        browse)
            local opts="$common --apparent --changed"
            ;;
        info)
            local opts="$common"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --aggr)
            COMPREPLY=( $(compgen -W "stored computed" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Snapshots are files or directories of them.
    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _ncdiff ncdiff
`

const zshCompletionScript = `#compdef ncdiff

_ncdiff() {
  local -a cmds
  cmds=(
    'browse:explore the difference interactively'
    'diff:show what changed between two snapshots'
    'info:compare snapshot headers'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '--aggr[aggregation mode]:mode:(stored computed)'
  '(-c --color)'{-c,--color}'[enable colored output]'
  '--endpoint[S3 compatible endpoint]:url'
  '*--ignore[path to drop]:path'
  '--profile[AWS profile]:profile'
  '--region[AWS region]:region'
  )

  local -a render
  render=(
  '--apparent[show apparent sizes]'
  '--changed[hide unchanged entries]'
  '(-f --filter)'{-f,--filter}'[filter expressions]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '--padding[column padding]:padding'
  '(-s --sort)'{-s,--sort}'[sort siblings]:fields'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'ncdiff commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    diff)
      _arguments -C \
        $common \
        $render \
        '(-d --depth)'{-d,--depth}'[levels to expand]:depth' \
        '--eager[diff the whole tree up front]' \
        '(-p --path)'{-p,--path}'[subtree to show]:path' \
        '*:snapshot:_files'
      ;;
    browse)
      _arguments -C \
        $common \
        '--apparent[show apparent sizes]' \
        '--changed[hide unchanged entries]' \
        '*:snapshot:_files'
      ;;
    info)
      _arguments -C $common '*:snapshot:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:snapshot:_files'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _ncdiff ncdiff
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := stdout(GetMeta(cmd))

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: ncdiff completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "ncdiff completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
