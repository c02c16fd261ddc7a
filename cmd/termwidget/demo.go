package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"termwidget/internal/commands"
	"termwidget/internal/terminal"
)

const (
	defaultDelay  = time.Second
	progressSteps = 10
	progressTick  = 150 * time.Millisecond
)

var errNoSession = errors.New("command must run inside a terminal session")

// demoCommands 返回演示用命令，顺序即 help 的输出顺序。
func demoCommands() []*commands.Command {
	var counter atomic.Int64
	return []*commands.Command{
		{
			Name:        "echo",
			Description: "Echo a passed string.",
			Usage:       "echo <string>",
			Fn:          echoHandler,
		},
		{
			Name:        "danger",
			Description: "Prints styled output. Escape sequences are only kept when danger_mode is on.",
			Fn:          dangerHandler,
		},
		{
			Name:        "wait",
			Description: "Returns at once, then pushes another line after a delay.",
			Usage:       "wait [ms]",
			Fn:          waitHandler,
		},
		{
			Name:        "delay",
			Description: "Blocks for a while before answering. Try it with disable_on_process.",
			Usage:       "delay [ms]",
			Fn:          delayHandler,
		},
		{
			Name:        "progress",
			Description: "Displays a progress counter.",
			Fn:          progressHandler(progressTick),
		},
		{
			Name:        "increment",
			Description: "Increments a number by one. Run it with locked to update the line in place.",
			Fn: func(context.Context, []string) (any, error) {
				return counter.Add(1), nil
			},
		},
		{
			Name:        "CaSeMatTeRs",
			Description: "With ignore_command_case this command runs regardless of casing.",
			Fn: func(context.Context, []string) (any, error) {
				return `This command is called "CaSeMatTeRs", but with ignore_command_case it can also be called with "casematters"!`, nil
			},
		},
	}
}

func echoHandler(_ context.Context, args []string) (any, error) {
	return strings.Join(args, " "), nil
}

func dangerHandler(context.Context, []string) (any, error) {
	return "I can \x1b[1mbold\x1b[0m and \x1b[31mcolor\x1b[0m\nthis output\nand it will be kept", nil
}

func parseDelay(args []string) (time.Duration, error) {
	if len(args) == 0 {
		return defaultDelay, nil
	}
	ms, err := strconv.Atoi(args[0])
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("invalid delay %q", args[0])
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func waitHandler(ctx context.Context, args []string) (any, error) {
	d, err := parseDelay(args)
	if err != nil {
		return nil, err
	}
	sess, ok := terminal.FromContext(ctx)
	if !ok {
		return nil, errNoSession
	}
	time.AfterFunc(d, func() {
		sess.Push(fmt.Sprintf("Tada! %d ms passed!", d.Milliseconds()))
	})
	return "Running, please wait...", nil
}

func delayHandler(ctx context.Context, args []string) (any, error) {
	d, err := parseDelay(args)
	if err != nil {
		return nil, err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return fmt.Sprintf("Done after %d ms.", d.Milliseconds()), nil
	}
}

// progressHandler 在执行期间逐步推送进度，返回前会话保持处理中。
func progressHandler(tick time.Duration) commands.HandlerFunc {
	return func(ctx context.Context, _ []string) (any, error) {
		sess, ok := terminal.FromContext(ctx)
		if !ok {
			return nil, errNoSession
		}
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for step := 1; step <= progressSteps; step++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ticker.C:
			}
			sess.Push(fmt.Sprintf("Progress: %d%%", step*100/progressSteps))
		}
		return "Finished.", nil
	}
}
