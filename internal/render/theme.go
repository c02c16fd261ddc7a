package render

import "github.com/charmbracelet/lipgloss"

// Theme 汇总终端各部分的样式。
type Theme struct {
	Container   lipgloss.Style
	PromptLabel lipgloss.Style
	InputText   lipgloss.Style
	Message     lipgloss.Style
	Status      lipgloss.Style
}

// DefaultTheme 返回默认配色：深色背景、橙色提示符、浅橙色输入。
func DefaultTheme() Theme {
	return Theme{
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5E6472")).
			Padding(0, 1),
		PromptLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("#EE9C34")),
		InputText:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F0BF81")),
		Message:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")),
	}
}

// WithColors 按配置覆盖前景色，空字符串表示保持默认。
func (t Theme) WithColors(label, input, text string) Theme {
	if label != "" {
		t.PromptLabel = t.PromptLabel.Foreground(lipgloss.Color(label))
	}
	if input != "" {
		t.InputText = t.InputText.Foreground(lipgloss.Color(input))
	}
	if text != "" {
		t.Message = t.Message.Foreground(lipgloss.Color(text))
	}
	return t
}
