package render

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Scrollback 包装 bubbles viewport，只在内容变化时重设文本。
// Follow 为 true 时，若更新前停在底部则更新后仍贴底。
type Scrollback struct {
	viewport.Model
	Follow    bool
	lastLines []string
}

// NewScrollback 创建滚动输出区。
func NewScrollback(width, height int, follow bool) Scrollback {
	return Scrollback{Model: viewport.New(width, height), Follow: follow}
}

// Resize 更新宽高；宽度变化时丢弃缓存，下一次 SetLines 强制刷新。
func (v *Scrollback) Resize(width, height int) {
	if v == nil {
		return
	}
	if v.Width != width {
		v.Invalidate()
	}
	v.Width = width
	v.Height = height
}

// HandleUpdate 代理 bubbles 的 Update（鼠标滚轮等）。
func (v *Scrollback) HandleUpdate(msg tea.Msg) tea.Cmd {
	if v == nil {
		return nil
	}
	var cmd tea.Cmd
	v.Model, cmd = v.Model.Update(msg)
	return cmd
}

// SetLines 更新内容，返回内容是否发生变化。
func (v *Scrollback) SetLines(lines []string) bool {
	if v == nil {
		return false
	}
	if v.lastLines != nil && slices.Equal(lines, v.lastLines) {
		return false
	}
	stick := v.Follow && v.AtBottom()
	v.lastLines = append([]string{}, lines...)
	v.SetContent(strings.Join(lines, "\n"))
	if stick {
		v.GotoBottom()
	}
	return true
}

// Lines 返回最近一次设置的内容。
func (v *Scrollback) Lines() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.lastLines...)
}

// Invalidate 清空缓存的行。
func (v *Scrollback) Invalidate() {
	if v == nil {
		return
	}
	v.lastLines = nil
}
