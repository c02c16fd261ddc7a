package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"termwidget/internal/config"
	"termwidget/internal/logger"
	"termwidget/internal/terminal"
	"termwidget/internal/tui"
)

var log = logger.Named("main")

func main() {
	logger.Configure("")

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "init-config":
			initConfigMain(root, rest[1:])
			return
		case "completion":
			completionMain(rest[1:])
			return
		}
	}
	runInteractive(root, rest)
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("termwidget", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, prependOverrides(root.overrides, cli.configOverrides))

	logger.Configure(cfg.LogLevel)
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logger.DefaultLogPath
	}
	if logFile, _, err := logger.SetupFile(logPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	sess, err := newSession(cfg)
	if err != nil {
		log.Fatalf("failed to create terminal: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	sess.Start(ctx)
	defer sess.Close()

	res, err := tui.Run(tui.Options{
		Session:   sess,
		Title:     cli.title,
		AltScreen: cli.altScreen,
	})
	if err != nil {
		log.Fatalf("tui exited: %v", err)
	}
	log.WithField("session_id", res.SessionID).Infof("session ended with %d lines and %d history entries", len(res.State.Lines), len(res.State.History))
}

// newSession 按配置构造会话，演示命令排在配置命令之前。
func newSession(cfg config.Config) (*terminal.Session, error) {
	opts, err := cfg.Options(demoCommands()...)
	if err != nil {
		return nil, err
	}
	opts.CommandCallback = func(res terminal.Result) {
		entry := log.WithFields(logger.Fields{
			"submission_id": res.SubmissionID,
			"command":       res.Command,
		})
		if res.Err != nil {
			entry.Warnf("command executed with error: %v", res.Err)
			return
		}
		entry.Debug("command executed")
	}
	return terminal.New(opts)
}
