package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// EchoStyle 决定回显继承哪些样式。
type EchoStyle int

const (
	// EchoStyleNone 不继承任何样式。
	EchoStyleNone EchoStyle = iota
	// EchoStyleLabelOnly 只有提示符段继承提示符样式。
	EchoStyleLabelOnly
	// EchoStyleTextOnly 只有文本段继承输入样式。
	EchoStyleTextOnly
	// EchoStyleFullInherit 两段都继承提示区样式。
	EchoStyleFullInherit
	// EchoStyleMessageInherit 两段都使用普通输出样式。
	EchoStyleMessageInherit
)

func (s EchoStyle) String() string {
	switch s {
	case EchoStyleLabelOnly:
		return "labelOnly"
	case EchoStyleTextOnly:
		return "textOnly"
	case EchoStyleFullInherit:
		return "fullInherit"
	case EchoStyleMessageInherit:
		return "messageInherit"
	default:
		return "none"
	}
}

// ParseEchoStyle 解析配置中的回显样式名，兼容 inherit/message 简写。
func ParseEchoStyle(value string) (EchoStyle, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "default":
		return EchoStyleNone, nil
	case "labelonly", "label":
		return EchoStyleLabelOnly, nil
	case "textonly", "text":
		return EchoStyleTextOnly, nil
	case "fullinherit", "inherit":
		return EchoStyleFullInherit, nil
	case "messageinherit", "message":
		return EchoStyleMessageInherit, nil
	default:
		return EchoStyleNone, fmt.Errorf("unknown echo style %q", value)
	}
}

// Segment 是回显中的一段文本及其样式；Styled 为 false 时按原样输出。
type Segment struct {
	Text   string
	Style  lipgloss.Style
	Styled bool
}

// Render 按需套用样式。
func (s Segment) Render() string {
	if !s.Styled {
		return s.Text
	}
	return s.Style.Render(s.Text)
}

// Echo 是提交行的回显：提示符段 + 输入文本段。
type Echo struct {
	Label Segment
	Input Segment
}

// BuildEcho 根据样式模式构造回显，不依赖任何会话状态。
func BuildEcho(label, raw string, mode EchoStyle, theme Theme) Echo {
	echo := Echo{
		Label: Segment{Text: label},
		Input: Segment{Text: raw},
	}
	switch mode {
	case EchoStyleLabelOnly:
		echo.Label.Style, echo.Label.Styled = theme.PromptLabel, true
	case EchoStyleTextOnly:
		echo.Input.Style, echo.Input.Styled = theme.InputText, true
	case EchoStyleFullInherit:
		echo.Label.Style, echo.Label.Styled = theme.PromptLabel, true
		echo.Input.Style, echo.Input.Styled = theme.InputText, true
	case EchoStyleMessageInherit:
		echo.Label.Style, echo.Label.Styled = theme.Message, true
		echo.Input.Style, echo.Input.Styled = theme.Message, true
	}
	return echo
}

// String 返回不带样式的回显文本。
func (e Echo) String() string {
	return e.Label.Text + " " + e.Input.Text
}

// Render 返回带样式的回显。
func (e Echo) Render() string {
	return e.Label.Render() + " " + e.Input.Render()
}
