package tui

import (
	"fmt"
	"strings"

	"termwidget/internal/commands"

	"github.com/charmbracelet/lipgloss"
)

var (
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EE9C34"))
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#2F2A3D"))
)

type completionItem struct {
	Name        string
	Description string
}

// completion 维护 Tab 补全候选列表的选择状态。
type completion struct {
	items    []completionItem
	selected int
	open     bool
	maxLines int
	// rest 是命令名之后的原始输入，插入候选时保留。
	rest string
}

func newCompletion(maxLines int) *completion {
	if maxLines <= 0 {
		maxLines = 6
	}
	return &completion{maxLines: maxLines}
}

// splitCommandLine 把输入拆成命令名与其后的剩余部分（含前导空白）。
func splitCommandLine(value string) (string, string) {
	trimmed := strings.TrimLeft(value, " \t")
	idx := strings.IndexAny(trimmed, " \t")
	if idx < 0 {
		return trimmed, ""
	}
	return trimmed[:idx], trimmed[idx:]
}

func completionItems(names []string, cmds []*commands.Command) []completionItem {
	desc := make(map[string]string, len(cmds))
	for _, cmd := range cmds {
		desc[cmd.Name] = cmd.Description
	}
	items := make([]completionItem, 0, len(names))
	for _, name := range names {
		items = append(items, completionItem{Name: name, Description: desc[name]})
	}
	return items
}

// Open 返回候选列表是否展示。
func (c *completion) Open() bool {
	return c != nil && c.open
}

func (c *completion) show(items []completionItem, rest string) {
	c.items = items
	c.rest = rest
	c.selected = 0
	c.open = len(items) > 0
}

func (c *completion) close() {
	c.open = false
	c.items = nil
	c.selected = 0
	c.rest = ""
}

// insertValue 返回选中候选写回输入框后的内容。
func (c *completion) insertValue() string {
	if len(c.items) == 0 {
		return ""
	}
	return buildCommandValue(c.items[c.selected].Name, c.rest)
}

func buildCommandValue(name, rest string) string {
	args := strings.TrimSpace(rest)
	if args != "" {
		return name + " " + args
	}
	return name + " "
}

type completionAction int

const (
	completionNone completionAction = iota
	completionInsert
	completionClose
)

// handleKey 处理候选列表打开时的按键，第二个返回值表示按键是否被消费。
func (c *completion) handleKey(key string) (completionAction, bool) {
	if !c.Open() {
		return completionNone, false
	}
	switch key {
	case "up", "ctrl+p", "shift+tab":
		c.selected--
		if c.selected < 0 {
			c.selected = len(c.items) - 1
		}
		return completionNone, true
	case "down", "ctrl+n":
		c.selected = (c.selected + 1) % len(c.items)
		return completionNone, true
	case "tab", "enter":
		return completionInsert, true
	case "esc":
		return completionClose, true
	default:
		return completionNone, false
	}
}

// View 渲染候选列表，选中项在可见窗口内。
func (c *completion) View(width int) string {
	if !c.Open() {
		return ""
	}
	if width < 20 {
		width = 20
	}
	nameWidth := 10
	for _, item := range c.items {
		if w := lipgloss.Width(item.Name); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > width-8 {
		nameWidth = width - 8
	}
	descWidth := width - nameWidth - 2

	start, end := visibleWindow(len(c.items), c.selected, c.maxLines)
	lines := make([]string, 0, end-start)
	for idx := start; idx < end; idx++ {
		item := c.items[idx]
		nameCell := lipgloss.NewStyle().Width(nameWidth).Render(nameStyle.Render(truncateToWidth(item.Name, nameWidth)))
		line := fmt.Sprintf("%s  %s", nameCell, descStyle.Render(truncateToWidth(item.Description, descWidth)))
		if idx == c.selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// Height 返回候选列表占用的行数。
func (c *completion) Height() int {
	if !c.Open() {
		return 0
	}
	start, end := visibleWindow(len(c.items), c.selected, c.maxLines)
	return end - start
}

func visibleWindow(total, selected, maxLines int) (int, int) {
	if total <= maxLines {
		return 0, total
	}
	start := selected - maxLines + 1
	if start < 0 {
		start = 0
	}
	return start, start + maxLines
}
