package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"termwidget/internal/events"
	"termwidget/internal/history"
	"termwidget/internal/i18n"
	"termwidget/internal/logger"
	"termwidget/internal/render"
	"termwidget/internal/terminal"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var log = logger.Named("tui")

// Options 控制 TUI 的宿主行为；会话相关的开关全部来自 Session.Options()。
type Options struct {
	Session *terminal.Session
	Title   string
	// AltScreen 使用备用屏幕，退出后不留下输出。
	AltScreen bool
	// Copy 覆盖剪贴板写入，测试中替换。
	Copy func(string) error
}

type sessionEventMsg struct {
	Event events.Event
}

type sessionClosedMsg struct{}

type submitErrMsg struct {
	Err error
}

type copyResultMsg struct {
	Text string
	Err  error
}

// Model 是承载一个终端会话的 Bubble Tea 模型。
type Model struct {
	session    *terminal.Session
	opts       terminal.Options
	sub        <-chan events.Event
	input      textinput.Model
	output     render.Scrollback
	spin       spinner.Model
	status     *StatusIndicator
	completion *completion
	copy       func(string) error
	title      string
	state      terminal.State
	notice     string
	err        error
	width      int
	height     int
	dirty      bool
}

func New(opts Options) *Model {
	sessionOpts := opts.Session.Options()
	theme := *sessionOpts.Theme

	ti := textinput.New()
	ti.Prompt = theme.PromptLabel.Render(sessionOpts.PromptLabel) + " "
	ti.TextStyle = theme.InputText
	ti.Cursor.Style = theme.InputText
	ti.CharLimit = 0
	ti.Width = 76
	if sessionOpts.AutoFocus {
		ti.Focus()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.PromptLabel

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	m := &Model{
		session:    opts.Session,
		opts:       sessionOpts,
		sub:        opts.Session.Subscribe(),
		input:      ti,
		output:     render.NewScrollback(80, 20, !sessionOpts.NoAutoScroll),
		spin:       spin,
		status:     NewStatusIndicator(nil),
		completion: newCompletion(6),
		copy:       copyFn,
		title:      opts.Title,
	}
	m.state = m.session.Snapshot()
	m.refreshOutput()
	return m
}

// Focus 聚焦输入框。
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur 取消输入框焦点。
func (m *Model) Blur() {
	m.input.Blur()
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenSession(), m.spin.Tick}
	if m.input.Focused() {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.finish(cmds...)
	case sessionEventMsg:
		m.handleSessionEvent(msg.Event)
		cmds = append(cmds, m.listenSession())
		return m.finish(cmds...)
	case sessionClosedMsg:
		cmds = append(cmds, tea.Quit)
		return m.finish(cmds...)
	case submitErrMsg:
		m.err = msg.Err
		return m.finish(cmds...)
	case copyResultMsg:
		if msg.Err != nil {
			m.err = fmt.Errorf("copy: %w", msg.Err)
		} else {
			m.notice = "copied: " + truncateToWidth(msg.Text, 40)
		}
		return m.finish(cmds...)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		return m.finish(cmds...)
	case tea.MouseMsg:
		if cmd := m.output.HandleUpdate(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m.finish(cmds...)
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m.finish(cmds...)
		}
	}

	if m.state.InputDisabled || !m.state.PromptVisible {
		return m.finish(cmds...)
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if after := m.input.Value(); after != before {
		m.session.SetInput(after)
		m.completion.close()
	}
	return m.finish(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if act, ok := m.completion.handleKey(msg.String()); ok {
		switch act {
		case completionInsert:
			m.setInput(m.completion.insertValue())
			m.completion.close()
		case completionClose:
			m.completion.close()
		}
		return nil, true
	}
	if cmd, handled := m.handleScrollKeys(msg); handled {
		return cmd, true
	}
	switch msg.String() {
	case "ctrl+y":
		return m.copyLastLine(), true
	}
	if m.state.InputDisabled || !m.state.PromptVisible {
		return nil, msg.Type == tea.KeyEnter || msg.Type == tea.KeyUp || msg.Type == tea.KeyDown || msg.Type == tea.KeyTab
	}
	switch msg.Type {
	case tea.KeyEnter:
		m.notice = ""
		m.err = nil
		return m.submit(m.input.Value()), true
	case tea.KeyUp:
		if value, ok := m.session.ScrollHistory(history.Up); ok {
			m.setInput(value)
		}
		return nil, true
	case tea.KeyDown:
		if value, ok := m.session.ScrollHistory(history.Down); ok {
			m.setInput(value)
		}
		return nil, true
	case tea.KeyTab:
		m.complete()
		return nil, true
	}
	return nil, false
}

func (m *Model) submit(raw string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if _, err := session.Submit(context.Background(), raw); err != nil {
			if errors.Is(err, terminal.ErrInputDisabled) {
				return nil
			}
			return submitErrMsg{Err: err}
		}
		return nil
	}
}

// complete 补全命令名：唯一候选直接写入，多个候选时展开列表。
func (m *Model) complete() {
	name, rest := splitCommandLine(m.input.Value())
	if name == "" {
		return
	}
	names := m.session.Complete(name)
	switch len(names) {
	case 0:
		m.notice = fmt.Sprintf("no command matches %q", name)
	case 1:
		m.setInput(buildCommandValue(names[0], rest))
	default:
		m.completion.show(completionItems(names, m.state.Commands), rest)
	}
}

func (m *Model) setInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.session.SetInput(value)
}

func (m *Model) copyLastLine() tea.Cmd {
	lines := m.session.Lines()
	if len(lines) == 0 {
		return nil
	}
	text := render.PlainText(lines[len(lines)-1])
	copyFn := m.copy
	return func() tea.Msg {
		return copyResultMsg{Text: text, Err: copyFn(text)}
	}
}

func (m *Model) listenSession() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	sub := m.sub
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionEventMsg{Event: ev}
	}
}

func (m *Model) handleSessionEvent(ev events.Event) {
	m.state = m.session.Snapshot()
	// 慢消费时 output.changed 会被合并，任何事件都按最新快照重绘
	m.dirty = true
	switch ev.Type {
	case events.EventProcessingStarted:
		m.status.Start(m.opts.Language.Text(i18n.KeyProcessing))
	case events.EventProcessingFinished:
		m.status.Stop(false, "")
	case events.EventInputChanged:
		if change, ok := ev.Payload.(events.InputChange); ok && change.Value != m.input.Value() {
			m.input.SetValue(change.Value)
			m.input.CursorEnd()
		}
	case events.EventCommandComplete:
		if res, ok := ev.Payload.(terminal.Result); ok && res.Err != nil {
			m.status.Stop(true, fmt.Sprintf("%s: %v", res.Command, res.Err))
		}
	case events.EventCommandsChanged:
		m.completion.close()
	}
	log.WithField("type", string(ev.Type)).Debug("session event")
}

func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	if m.dirty {
		m.refreshOutput()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshOutput() {
	width := m.output.Width
	if width <= 0 {
		width = 80
	}
	lines := render.RenderLines(m.session.Lines(), render.LineOptions{
		Width:      width,
		DangerMode: m.opts.DangerMode,
		Theme:      *m.opts.Theme,
	})
	m.output.SetLines(lines)
	m.dirty = false
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	innerWidth := width - 4 // border + padding
	if innerWidth < 10 {
		innerWidth = 10
	}
	reserved := 2 + 1 + 1 + 1 // border, prompt, status, hints
	if m.title != "" {
		reserved++
	}
	viewHeight := height - reserved - m.completion.Height()
	if viewHeight < 3 {
		viewHeight = 3
	}
	m.output.Resize(innerWidth, viewHeight)
	m.input.Width = innerWidth - lipgloss.Width(m.input.Prompt) - 1
	m.dirty = true
}

func (m *Model) View() string {
	parts := []string{}
	if m.title != "" {
		parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EE9C34")).Render(m.title))
	}
	parts = append(parts, m.output.View())
	if m.state.PromptVisible {
		prompt := m.input.View()
		if m.state.InputDisabled {
			prompt = lipgloss.NewStyle().Faint(true).Render(prompt)
		}
		parts = append(parts, prompt)
	}
	if m.completion.Open() {
		parts = append(parts, m.completion.View(m.output.Width))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, parts...)
	pane := renderPane(*m.opts.Theme, body, m.width)
	return lipgloss.JoinVertical(lipgloss.Left, pane, m.statusLine(), renderHints(m.width))
}

func (m *Model) statusLine() string {
	width := maxInt(20, m.width)
	segments := []string{}
	if line := m.status.Render(width/2, m.spin.View()); line != "" {
		segments = append(segments, line)
	}
	if m.err != nil {
		segments = append(segments, fmt.Sprintf("Error: %v", m.err))
	} else if m.notice != "" {
		segments = append(segments, m.notice)
	}
	if status := m.renderScrollStatus(); status != "" {
		segments = append(segments, status)
	}
	return m.opts.Theme.Status.
		Padding(0, 1).
		Width(width).
		Render(strings.Join(segments, " • "))
}

func renderPane(theme render.Theme, body string, width int) string {
	style := theme.Container
	if width > 0 {
		style = style.Width(width - 2)
	}
	return style.Render(body)
}

func renderHints(width int) string {
	hint := "Enter run • ↑/↓ history • Tab complete • PgUp/PgDn scroll • Ctrl+Y copy • Ctrl+C quit"
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7A85")).
		Padding(0, 1).
		Width(maxInt(20, width)).
		Render(hint)
}

func (m *Model) handleScrollKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyPgUp:
		m.output.PageUp()
		return nil, true
	case tea.KeyPgDown:
		m.output.PageDown()
		return nil, true
	case tea.KeyHome:
		if msg.Alt {
			m.output.GotoTop()
			return nil, true
		}
	case tea.KeyEnd:
		if msg.Alt {
			m.output.GotoBottom()
			return nil, true
		}
	case tea.KeyUp, tea.KeyDown:
		if msg.Alt {
			if msg.Type == tea.KeyUp {
				m.output.ScrollUp(1)
			} else {
				m.output.ScrollDown(1)
			}
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) renderScrollStatus() string {
	if m.output.TotalLineCount() <= m.output.Height {
		return ""
	}
	percent := int(math.Round(m.output.ScrollPercent() * 100))
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return fmt.Sprintf("%3d%%", percent)
}

// State 返回模型最近一次同步的会话状态。
func (m *Model) State() terminal.State {
	return m.state
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
