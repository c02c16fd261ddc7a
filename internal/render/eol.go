package render

import "strings"

// escapedNewline 是两个字符的转义序列 `\n`，与真实换行同样视为断行标记。
const escapedNewline = `\n`

// HasLineBreak 判断文本中是否含有断行标记。
func HasLineBreak(text string) bool {
	return strings.Contains(text, "\n") || strings.Contains(text, escapedNewline)
}

// SplitLineBreaks 按断行标记切分文本。
func SplitLineBreaks(text string) []string {
	text = strings.ReplaceAll(text, escapedNewline, "\n")
	return strings.Split(text, "\n")
}

// ExpandEOL 把含断行标记的非回显字符串行展开为多行，每段一行且 IsEcho=false。
// 回显行与非字符串内容原样保留。顺序不变，对已展开的结果再次调用不会改变内容。
func ExpandEOL(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		text, ok := line.Message.(string)
		if line.IsEcho || !ok || !HasLineBreak(text) {
			out = append(out, line)
			continue
		}
		for _, segment := range SplitLineBreaks(text) {
			out = append(out, Line{Message: segment})
		}
	}
	return out
}
