// Package render 负责输出行的后处理与展示：换行展开、回显构造、主题与滚动视口。
package render

import (
	"encoding/json"
	"fmt"
)

// Line 是输出区中的一行。Message 可以是 string，也可以是任意可渲染值；
// 核心逻辑只区分“是否为字符串”。
type Line struct {
	Message any
	IsEcho  bool
}

// Renderable 是自带样式的结构化输出（例如回显）。
type Renderable interface {
	Render() string
}

// IsText 返回该行是否为纯字符串。
func (l Line) IsText() bool {
	_, ok := l.Message.(string)
	return ok
}

// Text 返回该行的纯文本内容。
func (l Line) Text() string {
	return Stringify(l.Message)
}

// Stringify 把任意输出值转成文本：字符串原样返回，Stringer/error 取其文本，
// 其余值按 JSON 序列化，失败时退回 fmt 格式。
func Stringify(message any) string {
	switch v := message.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	case []byte:
		return string(v)
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Sprint(message)
	}
	return string(data)
}
