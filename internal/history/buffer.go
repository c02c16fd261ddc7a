package history

// Buffer 按提交顺序保存原始输入，只追加。
type Buffer struct {
	entries []string
}

// Append 追加一条非空输入。
func (b *Buffer) Append(text string) bool {
	if b == nil || text == "" {
		return false
	}
	b.entries = append(b.entries, text)
	return true
}

// Entries 返回从旧到新的副本。
func (b *Buffer) Entries() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.entries...)
}

// Len 返回历史条数。
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Scroll 在当前缓冲区上执行一次浏览。
func (b *Buffer) Scroll(dir Direction, cur Cursor) (Step, bool) {
	if b == nil {
		return Step{}, false
	}
	return Scroll(dir, b.entries, cur)
}
