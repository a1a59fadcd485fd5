// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/szinit/internal/errors"
)

// bashCompletionTemplate is the bash completion script for szinit.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for szinit
# Installation:
#   source <(szinit completion bash)

_szinit_completion() {
    local cur prev commands config_flags
    commands="initialize status debug-database-url wait-for-database version completion"
    config_flags="--database-url --root-dir --debug --log-format --log-file"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Find the command, skipping global flags
    local cmd="" i
    for ((i=1; i<COMP_CWORD; i++)); do
        case "${COMP_WORDS[i]}" in
            --config|--env-file) ((i++)) ;;
            -*) ;;
            *) cmd="${COMP_WORDS[i]}"; break ;;
        esac
    done

    if [ -z "${cmd}" ]; then
        if [[ ${cur} == -* ]] ; then
            COMPREPLY=( $(compgen -W "--version --config --env-file --json --quiet --no-color" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        fi
        return 0
    fi

    case "${prev}" in
        --root-dir|--log-file|--metrics-file|--config|--env-file)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "text json yaml" -- ${cur}) )
            return 0
            ;;
        --log-format)
            COMPREPLY=( $(compgen -W "text json" -- ${cur}) )
            return 0
            ;;
    esac

    case "${cmd}" in
        initialize)
            COMPREPLY=( $(compgen -W "${config_flags} --delay --metrics-file" -- ${cur}) )
            ;;
        status)
            COMPREPLY=( $(compgen -W "${config_flags} --format" -- ${cur}) )
            ;;
        debug-database-url)
            COMPREPLY=( $(compgen -W "${config_flags} --format --show-password" -- ${cur}) )
            ;;
        wait-for-database)
            COMPREPLY=( $(compgen -W "${config_flags} --timeout --interval" -- ${cur}) )
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- ${cur}) )
            ;;
    esac
    return 0
}

complete -F _szinit_completion szinit
`

// zshCompletionTemplate is the zsh completion script for szinit.
const zshCompletionTemplate = `#compdef szinit

# Zsh completion script for szinit
# Installation:
#   szinit completion zsh > "${fpath[1]}/_szinit"

_szinit() {
    local -a commands config_flags
    commands=(
        'initialize:Render configuration files and record completion'
        'status:Show the sentinel and the managed files'
        'debug-database-url:Show how a connection string would be rendered'
        'wait-for-database:Wait until the database accepts connections'
        'version:Show version information'
        'completion:Generate shell completion script'
    )
    config_flags=(
        '--database-url[Database connection string]:url:'
        '--root-dir[Directory prepended to every managed path]:dir:_files -/'
        '--debug[Enable debug logging]'
        '--log-format[Log format]:format:(text json)'
        '--log-file[Also write logs to this file]:file:_files'
    )

    _arguments -C \
        '--version[Show version and exit]' \
        '--config[Path to a YAML configuration file]:file:_files' \
        '--env-file[Path to a .env file]:file:_files' \
        '--json[Output results and errors as JSON]' \
        '(-q --quiet)'{-q,--quiet}'[Only print warnings and errors]' \
        '--no-color[Disable colored output]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                initialize)
                    _arguments $config_flags \
                        '--delay[Seconds to wait before initializing]:seconds:' \
                        '--metrics-file[Write Prometheus metrics to this file]:file:_files'
                    ;;
                status)
                    _arguments $config_flags '--format[Output format]:format:(text json yaml)'
                    ;;
                debug-database-url)
                    _arguments $config_flags \
                        '--format[Output format]:format:(text json yaml)' \
                        '--show-password[Print the password instead of masking it]'
                    ;;
                wait-for-database)
                    _arguments $config_flags \
                        '--timeout[Give up after this long]:duration:' \
                        '--interval[Time between attempts]:duration:'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh)'
                    ;;
            esac
            ;;
    esac
}

_szinit "$@"
`

// runCompletion executes the 'completion' command, printing a shell
// completion script to stdout.
func runCompletion(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: szinit completion <shell>

Description:
  Generate shell completion scripts for bash or zsh.

Arguments:
  shell    Shell type: bash or zsh (required)

Examples:
  # Load bash completions in current shell
  source <(szinit completion bash)

  # Install bash completions permanently (Linux)
  szinit completion bash > /etc/bash_completion.d/szinit

  # Install zsh completions
  szinit completion zsh > "${fpath[1]}/_szinit"

`)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return errors.NewInputError("Invalid option", err.Error(), "Run 'szinit completion --help' for usage", err)
	}

	if fs.NArg() != 1 {
		return errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'szinit completion bash' or 'szinit completion zsh'",
			nil,
		)
	}

	switch shell := fs.Arg(0); shell {
	case "bash":
		fmt.Fprint(stdout, bashCompletionTemplate)
	case "zsh":
		fmt.Fprint(stdout, zshCompletionTemplate)
	default:
		return errors.NewInputError(
			fmt.Sprintf("Unsupported shell: %s", shell),
			"Only bash and zsh are supported",
			"Run 'szinit completion bash' or 'szinit completion zsh'",
			nil,
		)
	}
	return nil
}
