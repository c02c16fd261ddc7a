package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// LineOptions 控制输出行转成终端文本的方式。
type LineOptions struct {
	Width int
	// DangerMode 为 true 时原样输出字符串里的终端控制序列，否则先剥离。
	DangerMode bool
	Theme      Theme
}

// RenderLines 把输出行渲染成视口可直接显示的文本行（已按宽度折行）。
func RenderLines(lines []Line, opts LineOptions) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, RenderLine(line, opts)...)
	}
	return out
}

// RenderLine 渲染单行输出，可能因折行产生多行。
func RenderLine(line Line, opts LineOptions) []string {
	switch msg := line.Message.(type) {
	case string:
		if opts.DangerMode {
			return wrapRaw(msg, opts.Width)
		}
		return styleEach(wrapText(Sanitize(msg), opts.Width), line.IsEcho, opts.Theme)
	case Echo:
		if opts.DangerMode {
			return strings.Split(msg.Render(), "\n")
		}
		return renderEcho(msg, opts.Width)
	case Renderable:
		return strings.Split(msg.Render(), "\n")
	default:
		return styleEach(wrapText(Sanitize(Stringify(msg)), opts.Width), line.IsEcho, opts.Theme)
	}
}

// renderEcho 剥离输入中的控制序列并按宽度折行，续行与首行输入对齐。
func renderEcho(echo Echo, width int) []string {
	labelWidth := runewidth.StringWidth(echo.Label.Text) + 1
	inputWidth := width - labelWidth
	if width > 0 && inputWidth < 1 {
		inputWidth = 1
	}
	input := Sanitize(echo.Input.Text)
	parts := wrapText(input, inputWidth)
	indent := strings.Repeat(" ", labelWidth)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		seg := echo.Input
		seg.Text = part
		if i == 0 {
			out = append(out, echo.Label.Render()+" "+seg.Render())
			continue
		}
		out = append(out, indent+seg.Render())
	}
	return out
}

// Sanitize 剥离文本中的 ANSI 控制序列，非危险模式下防止输出操纵终端。
func Sanitize(text string) string {
	return ansi.Strip(text)
}

// PlainText 返回去掉样式后的整行文本，供复制与测试使用。
func PlainText(line Line) string {
	return ansi.Strip(Stringify(line.Message))
}

func styleEach(lines []string, echo bool, theme Theme) []string {
	if echo {
		return lines
	}
	for i, l := range lines {
		lines[i] = theme.Message.Render(l)
	}
	return lines
}
