// Package history 实现输入历史：只追加的缓冲区与上下箭头浏览的纯状态转移函数。
package history

// Direction 是历史浏览方向。
type Direction int

const (
	// Up 回看更早的输入。
	Up Direction = iota + 1
	// Down 回到更新的输入，越过最新一条后回到空白输入。
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Position 是反转后历史（最新在前）中的下标。
type Position int

// Unset 表示当前没有在浏览历史。
const Unset Position = -1

// Cursor 记录当前与上一次的浏览位置。
// Previous 只用于区分“按一次 Up 再按 Down”（清空输入）与“正常向下翻”。
type Cursor struct {
	Position Position
	Previous Position
}

// Reset 返回未浏览状态的游标。
func Reset() Cursor {
	return Cursor{Position: Unset, Previous: Unset}
}

// Browsing 返回游标是否停在某条历史上。
func (c Cursor) Browsing() bool {
	return c.Position != Unset
}

// Step 是一次浏览的结果：输入框的新内容与新的游标。
type Step struct {
	Value  string
	Cursor Cursor
}

// Scroll 计算一次上下箭头后的输入内容与游标。
// 历史（去掉空项后）为空时返回 false，调用方保持原状态。
func Scroll(dir Direction, entries []string, cur Cursor) (Step, bool) {
	recent := newestFirst(entries)
	n := Position(len(recent))
	if n == 0 {
		return Step{}, false
	}
	pos, prev := cur.Position, cur.Previous

	switch dir {
	case Up:
		switch {
		case pos == Unset:
			return Step{Value: recent[0], Cursor: Cursor{Position: 0, Previous: Unset}}, true
		case pos+1 >= n:
			// 停在最旧一条；Previous 指向倒数第二条，避免之后 Down 看起来跳过一条。
			// 只有一条历史时，上一个位置其实是“未浏览”。
			previous := n - 2
			if n == 1 {
				previous = Unset
			}
			return Step{Value: recent[n-1], Cursor: Cursor{Position: n - 1, Previous: previous}}, true
		default:
			return Step{Value: recent[pos+1], Cursor: Cursor{Position: pos + 1, Previous: pos}}, true
		}
	case Down:
		switch {
		case pos == Unset || pos < 0 || pos >= n:
			return Step{Value: "", Cursor: Reset()}, true
		case pos == 0:
			value := ""
			if prev != Unset && prev != 1 {
				value = recent[0]
			}
			return Step{Value: value, Cursor: Reset()}, true
		default:
			return Step{Value: recent[pos-1], Cursor: Cursor{Position: pos - 1, Previous: pos}}, true
		}
	}
	return Step{}, false
}

// newestFirst 去掉空项并反转顺序，下标 0 为最新输入。
func newestFirst(entries []string) []string {
	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i] == "" {
			continue
		}
		out = append(out, entries[i])
	}
	return out
}
