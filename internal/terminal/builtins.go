package terminal

import (
	"context"
	"fmt"

	"termwidget/internal/events"
)

type sessionKey struct{}

func withSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext 返回执行当前命令的会话，处理函数可借此在返回前多次输出。
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}

// showHelp 按注册顺序逐条输出 "name - description[ - usage]"。
func (s *Session) showHelp(context.Context, []string) (any, error) {
	s.mu.Lock()
	cmds := s.registry.Commands()
	s.mu.Unlock()

	for _, cmd := range cmds {
		line := fmt.Sprintf("%s - %s", cmd.Name, cmd.Description)
		if cmd.Usage != "" {
			line += " - " + cmd.Usage
		}
		s.Push(line)
	}
	return nil, nil
}

// clearOutput 清空输出区。clear 是 ExplicitExec 命令：第一次调用的返回值被输出，
// 第二次调用再把它清掉。
func (s *Session) clearOutput(context.Context, []string) (any, error) {
	s.update("", func() []events.Event {
		s.lines = nil
		return []events.Event{{Type: events.EventOutputChanged}}
	})
	return nil, nil
}
