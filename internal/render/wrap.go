package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// wrapText 按显示宽度做词级别换行，宽字符按两列计算。
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	lines := []string{}
	for _, raw := range strings.Split(text, "\n") {
		if raw == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapLine(raw, width)...)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

func wrapLine(line string, width int) []string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	out := []string{}
	current := ""
	for _, word := range strings.Fields(line) {
		wordWidth := runewidth.StringWidth(word)
		if current == "" {
			if wordWidth > width {
				out = append(out, breakLongWord(word, width)...)
				continue
			}
			current = word
			continue
		}
		if runewidth.StringWidth(current)+1+wordWidth <= width {
			current += " " + word
			continue
		}
		out = append(out, current)
		if wordWidth > width {
			out = append(out, breakLongWord(word, width)...)
			current = ""
			continue
		}
		current = word
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) == 0 {
		return []string{line}
	}
	return out
}

func breakLongWord(word string, width int) []string {
	out := []string{}
	current := strings.Builder{}
	used := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if used+w > width && used > 0 {
			out = append(out, current.String())
			current.Reset()
			used = 0
		}
		current.WriteRune(r)
		used += w
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// wrapRaw 对可能含 ANSI 序列的原始文本换行，保持转义序列完整。
func wrapRaw(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}
	return strings.Split(ansi.Wrap(text, width, " "), "\n")
}
