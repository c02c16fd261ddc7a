package commands

import (
	"reflect"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Registry 是校验后的命令表，保持注册顺序（help 依此顺序列出）。
// 忽略大小写时使用预先折叠好的索引，查找不构造正则。
type Registry struct {
	commands   []*Command
	index      map[string]int
	ignoreCase bool
}

func newRegistry(ignoreCase bool) *Registry {
	return &Registry{
		index:      map[string]int{},
		ignoreCase: ignoreCase,
	}
}

func (r *Registry) key(name string) string {
	if r.ignoreCase {
		return foldKey(name)
	}
	return name
}

func (r *Registry) add(cmd *Command) {
	r.index[r.key(cmd.Name)] = len(r.commands)
	r.commands = append(r.commands, cmd)
}

// Len 返回命令数量。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.commands)
}

// IgnoreCase 返回注册表是否按大小写无关方式查找。
func (r *Registry) IgnoreCase() bool {
	return r != nil && r.ignoreCase
}

// Lookup 按名称解析命令，返回注册时的命令（名称为定义时的写法）。
func (r *Registry) Lookup(name string) (*Command, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	idx, ok := r.index[r.key(name)]
	if !ok {
		return nil, false
	}
	return r.commands[idx], true
}

// Commands 返回按注册顺序排列的命令切片副本。
func (r *Registry) Commands() []*Command {
	if r == nil {
		return nil
	}
	return append([]*Command(nil), r.commands...)
}

// Names 返回按注册顺序排列的命令名。
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.commands))
	for _, cmd := range r.commands {
		names = append(names, cmd.Name)
	}
	return names
}

// Complete 返回可补全 prefix 的命令名：先按注册顺序列出前缀匹配，
// 没有前缀匹配时退回模糊匹配并按得分排序。
func (r *Registry) Complete(prefix string) []string {
	prefix = strings.TrimSpace(prefix)
	if r == nil || prefix == "" {
		return nil
	}
	names := r.Names()
	var out []string
	for _, name := range names {
		if r.hasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	if len(out) > 0 {
		return out
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = strings.ToLower(name)
	}
	results := fuzzy.Find(strings.ToLower(prefix), keys)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Index < results[j].Index
		}
		return results[i].Score > results[j].Score
	})
	for _, res := range results {
		out = append(out, names[res.Index])
	}
	return out
}

func (r *Registry) hasPrefix(name, prefix string) bool {
	if r.ignoreCase {
		return strings.HasPrefix(foldKey(name), foldKey(prefix))
	}
	return strings.HasPrefix(name, prefix)
}

// Equal 结构化比较两组命令定义，决定是否需要重新校验。
// 处理函数按指针身份比较。
func Equal(a, b []*Command) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalCommand(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalCommand(a, b *Command) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.Usage == b.Usage &&
		a.ExplicitExec == b.ExplicitExec &&
		funcPointer(a.Fn) == funcPointer(b.Fn)
}

func funcPointer(fn HandlerFunc) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}
