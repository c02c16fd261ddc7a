package config

import (
	"context"
	"fmt"

	"termwidget/internal/commands"
	"termwidget/internal/i18n"
	"termwidget/internal/render"
	"termwidget/internal/terminal"
)

// WelcomeMessage 把 welcome 字段解码为欢迎语：
// true 为默认文案，false 或缺省为无，字符串为一行，数组为多行。
func (c Config) WelcomeMessage() (terminal.Welcome, error) {
	switch v := c.Welcome.(type) {
	case nil:
		return terminal.WelcomeNone(), nil
	case bool:
		if v {
			return terminal.WelcomeDefault(), nil
		}
		return terminal.WelcomeNone(), nil
	case string:
		return terminal.WelcomeText(v), nil
	case []string:
		return terminal.WelcomeLines(v...), nil
	case []any:
		lines := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return terminal.Welcome{}, fmt.Errorf("welcome[%d]: expected string, got %T", i, item)
			}
			lines = append(lines, s)
		}
		return terminal.WelcomeLines(lines...), nil
	default:
		return terminal.Welcome{}, fmt.Errorf("welcome: expected bool, string or list, got %T", v)
	}
}

// CommandList 把配置中声明的命令转换为固定回复的命令。
func (c Config) CommandList() []*commands.Command {
	out := make([]*commands.Command, 0, len(c.Commands))
	for _, decl := range c.Commands {
		cmd := &commands.Command{
			Name:         decl.Name,
			Description:  decl.Description,
			Usage:        decl.Usage,
			ExplicitExec: decl.ExplicitExec,
		}
		if decl.Reply != "" {
			cmd.Fn = staticReply(decl.Reply)
		}
		out = append(out, cmd)
	}
	return out
}

func staticReply(reply string) commands.HandlerFunc {
	return func(context.Context, []string) (any, error) {
		return reply, nil
	}
}

// Options 生成会话选项；extra 为宿主程序注册的命令，排在配置命令之前。
func (c Config) Options(extra ...*commands.Command) (terminal.Options, error) {
	style, err := render.ParseEchoStyle(c.StyleEchoBack)
	if err != nil {
		return terminal.Options{}, fmt.Errorf("style_echo_back: %w", err)
	}
	welcome, err := c.WelcomeMessage()
	if err != nil {
		return terminal.Options{}, err
	}
	if c.MaxOutput < 0 {
		return terminal.Options{}, fmt.Errorf("max_output: must not be negative, got %d", c.MaxOutput)
	}
	theme := render.DefaultTheme().WithColors(c.Theme.Label, c.Theme.Input, c.Theme.Text)

	cmds := append(append([]*commands.Command(nil), extra...), c.CommandList()...)
	return terminal.Options{
		Commands:               cmds,
		NoDefaults:             c.NoDefaults,
		IgnoreCommandCase:      c.IgnoreCommandCase,
		NoHistory:              c.NoHistory,
		NoEchoBack:             c.NoEchoBack,
		NoAutoScroll:           c.NoAutoScroll,
		NoNewlineParsing:       c.NoNewlineParsing,
		DangerMode:             c.DangerMode,
		Locked:                 c.Locked,
		ReadOnly:               c.ReadOnly,
		Disabled:               c.Disabled,
		DisableOnProcess:       c.DisableOnProcess,
		HidePromptWhenDisabled: c.HidePromptWhenDisabled,
		ErrorText:              c.ErrorText,
		Welcome:                welcome,
		PromptLabel:            c.PromptLabel,
		StyleEchoBack:          style,
		MaxOutput:              c.MaxOutput,
		Language:               i18n.Normalize(c.Language),
		AutoFocus:              c.AutoFocus,
		Theme:                  &theme,
	}, nil
}
