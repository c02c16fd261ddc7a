package commands

import (
	"strings"

	"termwidget/internal/i18n"
	"termwidget/internal/logger"
)

var log = logger.Named("commands")

// Options 控制命令表的校验方式。
type Options struct {
	NoDefaults        bool
	IgnoreCommandCase bool
	Language          i18n.Language
}

// Validate 校验用户命令并生成注册表。未设置 NoDefaults 时先注册 help/clear。
// 缺少描述的命令会被就地补上 DefaultDescription。
// 每次调用都返回全新的注册表，不与旧表合并。
func Validate(user []*Command, help, clear HandlerFunc, opts Options) (*Registry, error) {
	reg := newRegistry(opts.IgnoreCommandCase)

	if !opts.NoDefaults {
		reg.add(&Command{
			Name:        NameHelp,
			Description: opts.Language.Text(i18n.KeyHelpDescription),
			Fn:          help,
		})
		reg.add(&Command{
			Name:         NameClear,
			Description:  opts.Language.Text(i18n.KeyClearDescription),
			ExplicitExec: true,
			Fn:           clear,
		})
	}
	builtins := reg.Len()

	for _, cmd := range user {
		if cmd == nil {
			continue
		}
		if err := validateOne(reg, cmd, builtins, opts); err != nil {
			log.WithField("command", err.Command).Warnf("command table rejected: %s", err.Reason)
			return nil, err
		}
		if cmd.Description == "" {
			cmd.Description = DefaultDescription
		}
		if idx, ok := reg.index[reg.key(cmd.Name)]; ok {
			// 仅在 NoDefaults 下可达：后定义者原位替换
			reg.commands[idx] = cmd
			continue
		}
		reg.add(cmd)
	}
	log.WithField("count", reg.Len()).Debug("command table validated")
	return reg, nil
}

func validateOne(reg *Registry, cmd *Command, builtins int, opts Options) *ValidationError {
	if cmd.Name == "" {
		return invalidNameError(cmd.Name)
	}
	if cmd.Fn == nil {
		return invalidHandlerError(cmd.Name, cmd.Fn)
	}
	if opts.IgnoreCommandCase && !validName(cmd.Name) {
		return invalidNameError(cmd.Name)
	}
	idx, exists := reg.index[reg.key(cmd.Name)]
	if !exists {
		return nil
	}
	existing := reg.commands[idx]
	if idx < builtins {
		return reservedError(cmd.Name, existing.Name)
	}
	if !opts.NoDefaults {
		return duplicateError(cmd.Name, existing.Name)
	}
	return nil
}

// validName 限制忽略大小写时的命令名字符集为 [A-Za-z0-9_-]。
func validName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return name != ""
}

// foldKey 生成大小写无关的索引键；名字已被限制为 ASCII。
func foldKey(name string) string {
	return strings.ToLower(name)
}
