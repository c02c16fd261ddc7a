package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StatusIndicatorState 枚举了状态指示器可显示的所有状态。
type StatusIndicatorState int

const (
	// StatusIdle 表示空闲，不显示状态行。
	StatusIdle StatusIndicatorState = iota
	// StatusWorking 表示命令正在执行，计时器持续累加。
	StatusWorking
	// StatusError 表示上一条命令执行失败。
	StatusError
)

func (s StatusIndicatorState) String() string {
	switch s {
	case StatusWorking:
		return "working"
	case StatusError:
		return "error"
	case StatusIdle:
		return "idle"
	default:
		return "unknown"
	}
}

func (s StatusIndicatorState) tracksElapsed() bool {
	return s == StatusWorking
}

func (s StatusIndicatorState) visible() bool {
	return s != StatusIdle
}

// StatusIndicator 管理状态行：spinner + 标题 + 计时。
type StatusIndicator struct {
	header string
	state  StatusIndicatorState

	startedAt time.Time
	elapsed   time.Duration

	clock func() time.Time
}

// NewStatusIndicator 构造空闲状态的指示器；clock 为 nil 时使用 time.Now。
func NewStatusIndicator(clock func() time.Time) *StatusIndicator {
	if clock == nil {
		clock = time.Now
	}
	return &StatusIndicator{clock: clock}
}

// Start 进入 Working 并从零开始计时。
func (w *StatusIndicator) Start(header string) {
	if w == nil {
		return
	}
	w.state = StatusWorking
	w.header = header
	w.startedAt = w.clock()
	w.elapsed = 0
}

// Stop 结束计时；failed 为 true 时停留在错误态，否则回到空闲。
func (w *StatusIndicator) Stop(failed bool, header string) {
	if w == nil {
		return
	}
	if w.state.tracksElapsed() {
		w.elapsed = w.clock().Sub(w.startedAt)
	}
	if failed {
		w.state = StatusError
		w.header = header
		return
	}
	w.state = StatusIdle
	w.header = ""
}

// State 返回当前状态。
func (w *StatusIndicator) State() StatusIndicatorState {
	if w == nil {
		return StatusIdle
	}
	return w.state
}

// ElapsedSeconds 返回累计秒数。
func (w *StatusIndicator) ElapsedSeconds() uint64 {
	if w == nil {
		return 0
	}
	return uint64(w.elapsedAt(w.clock()).Seconds())
}

func (w *StatusIndicator) elapsedAt(now time.Time) time.Duration {
	if w.state.tracksElapsed() {
		return now.Sub(w.startedAt)
	}
	return w.elapsed
}

// Render 绘制状态行，frame 为当前 spinner 帧；空闲时返回空串。
func (w *StatusIndicator) Render(width int, frame string) string {
	if w == nil || width <= 0 || !w.state.visible() {
		return ""
	}
	lead := frame
	if w.state == StatusError {
		lead = "!"
	}
	text := lead
	if w.header != "" {
		text += " " + w.header
	}
	hint := fmt.Sprintf("(%s)", fmtElapsedCompact(uint64(w.elapsedAt(w.clock()).Seconds())))
	line := truncateToWidth(text, width)
	remaining := width - runewidth.StringWidth(line)
	if remaining > 1 {
		line += " " + lipgloss.NewStyle().Faint(true).Render(truncateToWidth(hint, remaining-1))
	}
	return line
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		minutes := elapsedSecs / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	w := 0
	out := make([]rune, 0, len(text))
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			break
		}
		out = append(out, r)
		w += rw
	}
	return string(out)
}
