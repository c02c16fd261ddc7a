// Package commands 维护终端的命令表：校验用户命令、注入内置命令、按名称解析与补全。
package commands

import (
	"context"
	"fmt"
)

// HandlerFunc 是命令处理函数。返回值成为一行输出；阻塞即等价于“待定值”，
// 调度器会等待其返回。
type HandlerFunc func(ctx context.Context, args []string) (any, error)

// Command 描述一条可执行命令。注册表只持有调用方的指针，不做拷贝。
type Command struct {
	Name        string
	Description string
	Usage       string
	Fn          HandlerFunc
	// ExplicitExec 表示执行后还需再调用一次 Fn（不捕获输出），用于以副作用为目的的命令，如 clear。
	ExplicitExec bool
}

// 内置命令名称。
const (
	NameHelp  = "help"
	NameClear = "clear"
)

// DefaultDescription 为缺少描述的命令补齐的文案。
const DefaultDescription = "None"

// ErrorKind 区分命令表校验失败的原因。
type ErrorKind int

const (
	KindReserved ErrorKind = iota + 1
	KindInvalidName
	KindInvalidHandler
	KindDuplicate
)

func (k ErrorKind) String() string {
	switch k {
	case KindReserved:
		return "reserved"
	case KindInvalidName:
		return "invalid_name"
	case KindInvalidHandler:
		return "invalid_handler"
	case KindDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// ValidationError 表示命令表不合法，属于配置错误，直接交给宿主处理。
type ValidationError struct {
	Kind    ErrorKind
	Command string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Reason
}

func reservedError(name, builtin string) *ValidationError {
	return &ValidationError{
		Kind:    KindReserved,
		Command: name,
		Reason:  fmt.Sprintf("cannot overwrite default command '%s'; set NoDefaults to enable overriding of default commands", builtin),
	}
}

func invalidNameError(name string) *ValidationError {
	reason := fmt.Sprintf("command name '%s' is invalid; only [A-Za-z0-9_-] is allowed when IgnoreCommandCase is enabled", name)
	if name == "" {
		reason = "command name cannot be empty"
	}
	return &ValidationError{Kind: KindInvalidName, Command: name, Reason: reason}
}

func invalidHandlerError(name string, fn HandlerFunc) *ValidationError {
	found := "nil"
	if fn != nil {
		found = fmt.Sprintf("%T", fn)
	}
	return &ValidationError{
		Kind:    KindInvalidHandler,
		Command: name,
		Reason:  fmt.Sprintf("'fn' property of command '%s' is invalid; expected 'func', got '%s'", name, found),
	}
}

func duplicateError(name, existing string) *ValidationError {
	return &ValidationError{
		Kind:    KindDuplicate,
		Command: name,
		Reason:  fmt.Sprintf("command '%s' collides with already defined command '%s'", name, existing),
	}
}
