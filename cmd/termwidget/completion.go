package main

import "fmt"

func completionMain(args []string) {
	shell := "bash"
	if len(args) > 0 && args[0] != "" {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	default:
		log.Fatalf("unsupported shell: %s (use bash or zsh)", shell)
	}
}

const bashCompletion = `
_termwidget_completions()
{
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "$prev" in
        --enable|-enable|--disable|-disable)
            COMPREPLY=( $(compgen -W "no_defaults ignore_command_case no_history no_echo_back no_auto_scroll no_newline_parsing danger_mode locked read_only disabled disable_on_process hide_prompt_when_disabled auto_focus" -- "$cur") )
            return 0
            ;;
    esac

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "init-config completion --config --title --alt-screen -c --enable --disable" -- "$cur") )
        return 0
    fi

    case "${COMP_WORDS[1]}" in
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            ;;
        init-config)
            COMPREPLY=( $(compgen -W "--config --force -c" -- "$cur") )
            ;;
        *)
            COMPREPLY=( $(compgen -W "--config --title --alt-screen -c" -- "$cur") )
            ;;
    esac
}
complete -F _termwidget_completions termwidget
`

const zshCompletion = `
#compdef termwidget

_termwidget() {
  local -a subcmds
  subcmds=(
    'init-config:write the effective config to disk'
    'completion:print shell completion script'
  )
  _arguments -C \
    '--config[path to config file]:file:_files' \
    '--title[title shown above the terminal]:title:' \
    '--alt-screen[run in the alternate screen]' \
    '*-c[override config value key=value]:override:' \
    '*--enable[turn on a terminal option]:option:' \
    '*--disable[turn off a terminal option]:option:' \
    '1:subcommand:->subcmd' \
    '*::arg:->args'

  case $state in
    subcmd)
      _describe 'subcommand' subcmds
      ;;
  esac
}

_termwidget "$@"
`
