package main

import (
	"fmt"
	"strings"

	"termwidget/internal/config"
)

type rootArgs struct {
	overrides []string
}

// parseRootArgs 抽出全局的 -c/--enable/--disable，其余参数按原顺序留给子命令。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	var overrides stringSlice
	var enable stringSlice
	var disable stringSlice
	targets := map[string]*stringSlice{
		"c":       &overrides,
		"enable":  &enable,
		"disable": &disable,
	}

	rest := []string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}
		name, value, hasValue := splitFlag(arg)
		target, ok := targets[name]
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return rootArgs{}, nil, fmt.Errorf("flag needs an argument: -%s", name)
			}
			i++
			value = args[i]
		}
		_ = target.Set(value)
	}

	flagOverrides, err := buildFlagOverrides(enable, disable)
	if err != nil {
		return rootArgs{}, nil, err
	}
	all := append([]string{}, overrides...)
	all = append(all, flagOverrides...)
	return rootArgs{overrides: all}, rest, nil
}

func splitFlag(arg string) (string, string, bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", "", false
	}
	name := strings.TrimPrefix(arg[1:], "-")
	if before, after, ok := strings.Cut(name, "="); ok {
		return before, after, true
	}
	return name, "", false
}

func prependOverrides(root []string, overrides []string) []string {
	merged := append([]string{}, root...)
	return append(merged, overrides...)
}

func buildFlagOverrides(enable []string, disable []string) ([]string, error) {
	var overrides []string
	for _, key := range enable {
		if !config.IsFlag(key) {
			return nil, fmt.Errorf("unknown terminal option: %s", key)
		}
		overrides = append(overrides, fmt.Sprintf("%s=%t", key, true))
	}
	for _, key := range disable {
		if !config.IsFlag(key) {
			return nil, fmt.Errorf("unknown terminal option: %s", key)
		}
		overrides = append(overrides, fmt.Sprintf("%s=%t", key, false))
	}
	return overrides, nil
}
