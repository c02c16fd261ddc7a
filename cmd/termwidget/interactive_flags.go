package main

import "flag"

// interactiveArgs 收集交互入口与 init-config 共用的参数。
type interactiveArgs struct {
	cfgPath         string
	title           string
	altScreen       bool
	configOverrides stringSlice
}

func newInteractiveFlagSet(name string, errorHandling flag.ErrorHandling) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, errorHandling)
	args := &interactiveArgs{}

	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.termwidget/config.toml)")
	fs.StringVar(&args.title, "title", "", "Title shown above the terminal")
	fs.BoolVar(&args.altScreen, "alt-screen", false, "Run in the alternate screen; output is not kept after exit")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")

	return fs, args
}
