package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"termwidget/internal/config"
)

func initConfigMain(root rootArgs, args []string) {
	if err := runInitConfig(root, args, os.Stdout); err != nil {
		log.Fatalf("init-config failed: %v", err)
	}
}

// runInitConfig 把当前生效的配置（含 -c 覆盖）写回配置文件。
func runInitConfig(root rootArgs, args []string, out io.Writer) error {
	fs, cli := newInteractiveFlagSet("init-config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var force bool
	fs.BoolVar(&force, "force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyKVOverrides(cfg, prependOverrides(root.overrides, cli.configOverrides))
	if _, err := cfg.Options(); err != nil {
		return err
	}

	path := cfg.Source
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; pass -force to overwrite", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
