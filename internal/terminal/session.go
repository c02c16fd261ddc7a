// Package terminal 实现终端会话：命令分发、历史浏览与输出缓冲。
// 所有状态变更都经由同一把锁下的 update 串行执行，并通过 EQ 广播。
package terminal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"termwidget/internal/commands"
	"termwidget/internal/events"
	"termwidget/internal/history"
	"termwidget/internal/i18n"
	"termwidget/internal/logger"
	"termwidget/internal/render"

	"github.com/google/uuid"
)

var (
	// ErrInputDisabled 表示当前会话不接受输入（只读、禁用或处理中禁用）。
	ErrInputDisabled = errors.New("terminal input disabled")

	commandPlaceholder = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(i18n.PlaceholderCommand))
)

// State 是会话状态的只读快照。
type State struct {
	SessionID     string
	Commands      []*commands.Command
	Lines         []render.Line
	History       []string
	Cursor        history.Cursor
	Input         string
	Processing    bool
	PromptVisible bool
	InputDisabled bool
}

// Session 是一个终端会话。提交进入 SQ，由唯一的 worker 逐条执行；
// Push 可以从任意 goroutine 调用。
type Session struct {
	id   string
	opts Options
	log  *logger.LogEntry

	sq *events.SubmissionQueue
	eq *events.EventQueue

	mu         sync.Mutex
	registry   *commands.Registry
	source     []commands.Command
	lines      []render.Line
	history    history.Buffer
	cursor     history.Cursor
	input      string
	processing bool

	startOnce sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New 校验命令表并创建会话，随后输出欢迎语。命令表非法时返回 *commands.ValidationError。
func New(opts Options) (*Session, error) {
	opts = opts.withDefaults()
	s := &Session{
		id:     uuid.NewString(),
		opts:   opts,
		sq:     events.NewSubmissionQueue(64),
		eq:     events.NewEventQueue(256),
		cursor: history.Reset(),
		done:   make(chan struct{}),
	}
	s.log = logger.Named("session").WithField("session_id", s.id)

	reg, err := s.validate(opts.Commands)
	if err != nil {
		return nil, fmt.Errorf("validate commands: %w", err)
	}
	s.registry = reg
	s.source = snapshotCommands(opts.Commands)

	for _, msg := range opts.Welcome.Messages(opts.Language) {
		s.appendLine(render.Line{Message: msg})
	}
	s.log.WithField("commands", reg.Len()).Info("session created")
	return s, nil
}

// ID 返回会话标识。
func (s *Session) ID() string {
	return s.id
}

// Options 返回补全默认值后的会话选项。
func (s *Session) Options() Options {
	return s.opts
}

// Start 启动提交 worker；重复调用无效。
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go s.run(ctx)
	})
}

// Close 停止 worker 并关闭队列；排队未执行的提交被丢弃。
// 正在执行的处理函数会收到 ctx 取消，Close 等待其返回。
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.sq.Close()
		// 未启动过的会话没有 worker，直接视为已结束
		s.startOnce.Do(func() { close(s.done) })
		if s.cancel != nil {
			s.cancel()
		}
		<-s.done
		s.eq.Close()
		s.log.Info("session closed")
	})
}

// Subscribe 订阅会话事件；会话关闭时通道随之关闭。
func (s *Session) Subscribe() <-chan events.Event {
	return s.eq.Subscribe()
}

// Submit 将一行输入排入队列并返回提交 ID。处理中再次提交会排队等待，不会交错执行。
func (s *Session) Submit(ctx context.Context, raw string) (string, error) {
	s.mu.Lock()
	disabled := s.opts.ReadOnly || inputDisabled(s.opts, s.processing)
	s.mu.Unlock()
	if disabled {
		return "", ErrInputDisabled
	}

	sub := events.Submission{
		ID:        uuid.NewString(),
		SessionID: s.id,
		Input:     raw,
		Timestamp: time.Now(),
	}
	if err := s.sq.Submit(ctx, sub); err != nil {
		return "", err
	}
	s.publish(events.Event{Type: events.EventSubmissionAccepted, SubmissionID: sub.ID, Payload: raw})
	return sub.ID, nil
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	for {
		sub, err := s.sq.Receive(ctx)
		if err != nil {
			if !errors.Is(err, events.ErrSubmissionQueueClosed) && !errors.Is(err, context.Canceled) {
				s.log.Warnf("receive submission: %v", err)
			}
			return
		}
		s.execute(ctx, sub)
	}
}

// execute 按固定顺序处理一行输入：进入处理中、记录历史、回显、解析执行、退出处理中。
func (s *Session) execute(ctx context.Context, sub events.Submission) {
	raw := sub.Input
	s.update(sub.ID, func() []events.Event {
		s.processing = true
		evs := []events.Event{{Type: events.EventProcessingStarted}}
		if !s.opts.NoHistory && s.history.Append(raw) {
			s.cursor = history.Reset()
		}
		if !s.opts.NoEchoBack {
			echo := render.BuildEcho(s.opts.PromptLabel, raw, s.opts.StyleEchoBack, *s.opts.Theme)
			s.appendLine(render.Line{Message: echo, IsEcho: true})
			evs = append(evs, events.Event{Type: events.EventOutputChanged})
		}
		return evs
	})

	result := Result{SubmissionID: sub.ID, RawInput: raw}
	if fields := strings.Fields(raw); len(fields) > 0 {
		result.Command, result.Args = fields[0], fields[1:]
		s.dispatch(ctx, &result)
	}

	s.update(sub.ID, func() []events.Event {
		s.processing = false
		s.input = ""
		s.cursor = history.Reset()
		return []events.Event{
			{Type: events.EventProcessingFinished},
			{Type: events.EventInputChanged, Payload: events.InputChange{}},
			{Type: events.EventCommandComplete, Payload: result},
		}
	})
	if s.opts.CommandCallback != nil {
		s.opts.CommandCallback(result)
	}
}

func (s *Session) dispatch(ctx context.Context, result *Result) {
	s.mu.Lock()
	reg := s.registry
	s.mu.Unlock()

	cmd, ok := reg.Lookup(result.Command)
	if !ok {
		s.log.WithField("command", result.Command).Debug("command not found")
		s.Push(s.notFoundText(result.Command))
		return
	}

	ctx = withSession(ctx, s)
	value, err := invoke(ctx, cmd, result.Args)
	if err != nil {
		result.Err = err
		s.log.WithFields(logger.Fields{
			"command":       cmd.Name,
			"submission_id": result.SubmissionID,
		}).Errorf("command failed: %v", err)
		s.Push(s.handlerFailedText(cmd.Name, err))
		return
	}
	s.Push(value)
	result.Result = value
	if cmd.ExplicitExec {
		if _, err := invoke(ctx, cmd, result.Args); err != nil {
			s.log.WithField("command", cmd.Name).Warnf("explicit exec failed: %v", err)
		}
	}
}

// invoke 调用处理函数并把 panic 转成错误。
func invoke(ctx context.Context, cmd *commands.Command, args []string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return cmd.Fn(ctx, args)
}

func (s *Session) notFoundText(name string) string {
	template := s.opts.ErrorText
	if template == "" {
		template = s.opts.Language.Text(i18n.KeyNotFound)
	}
	return commandPlaceholder.ReplaceAllLiteralString(template, name)
}

func (s *Session) handlerFailedText(name string, err error) string {
	text := s.opts.Language.Text(i18n.KeyHandlerFailed)
	text = strings.ReplaceAll(text, i18n.PlaceholderCommand, name)
	return strings.ReplaceAll(text, i18n.PlaceholderError, err.Error())
}

// PushOption 调整一次 Push 的行为。
type PushOption func(*pushConfig)

type pushConfig struct {
	echo     bool
	rawInput string
}

// WithEcho 将该行标记为回显，展示时不套用普通输出样式。
func WithEcho() PushOption {
	return func(c *pushConfig) { c.echo = true }
}

// WithRawInput 同时把 raw 记入历史。
func WithRawInput(raw string) PushOption {
	return func(c *pushConfig) { c.rawInput = raw }
}

// Push 向输出区追加一行，可以从任意 goroutine 调用。
// Locked 时先丢弃最后一行；设置 MaxOutput 时先丢弃最旧的行。
func (s *Session) Push(message any, opts ...PushOption) {
	cfg := pushConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.update("", func() []events.Event {
		s.appendLine(render.Line{Message: message, IsEcho: cfg.echo})
		if cfg.rawInput != "" && s.history.Append(cfg.rawInput) {
			s.cursor = history.Reset()
		}
		return []events.Event{{Type: events.EventOutputChanged}}
	})
}

// appendLine 是输出区唯一的追加入口，调用方需持有锁（构造期除外）。
func (s *Session) appendLine(line render.Line) {
	if s.opts.Locked && len(s.lines) > 0 {
		s.lines = s.lines[:len(s.lines)-1]
	}
	if s.opts.MaxOutput > 0 && len(s.lines) >= s.opts.MaxOutput {
		drop := len(s.lines) - s.opts.MaxOutput + 1
		s.lines = append([]render.Line(nil), s.lines[drop:]...)
	}
	s.lines = append(s.lines, line)
}

// ScrollHistory 按方向浏览历史并改写输入内容；历史为空时返回 false。
func (s *Session) ScrollHistory(dir history.Direction) (string, bool) {
	var (
		value string
		moved bool
	)
	s.update("", func() []events.Event {
		step, ok := s.history.Scroll(dir, s.cursor)
		if !ok {
			return nil
		}
		s.cursor = step.Cursor
		s.input = step.Value
		value, moved = step.Value, true
		return []events.Event{{Type: events.EventInputChanged, Payload: events.InputChange{Value: step.Value}}}
	})
	return value, moved
}

// SetInput 同步宿主输入框中的当前内容。
func (s *Session) SetInput(value string) {
	s.mu.Lock()
	s.input = value
	s.mu.Unlock()
}

// SetCommands 在命令定义变化时重新校验并整体替换命令表；
// 校验失败时保留旧表并返回错误。
func (s *Session) SetCommands(cmds []*commands.Command) error {
	s.mu.Lock()
	unchanged := commands.Equal(commandPointers(s.source), cmds)
	s.mu.Unlock()
	if unchanged {
		return nil
	}

	reg, err := s.validate(cmds)
	if err != nil {
		return fmt.Errorf("validate commands: %w", err)
	}
	s.update("", func() []events.Event {
		s.registry = reg
		s.source = snapshotCommands(cmds)
		return []events.Event{{Type: events.EventCommandsChanged, Payload: reg.Names()}}
	})
	s.log.WithField("commands", reg.Len()).Info("command table replaced")
	return nil
}

func (s *Session) validate(cmds []*commands.Command) (*commands.Registry, error) {
	return commands.Validate(cmds, s.showHelp, s.clearOutput, commands.Options{
		NoDefaults:        s.opts.NoDefaults,
		IgnoreCommandCase: s.opts.IgnoreCommandCase,
		Language:          s.opts.Language,
	})
}

// Complete 返回可补全 prefix 的命令名。
func (s *Session) Complete(prefix string) []string {
	s.mu.Lock()
	reg := s.registry
	s.mu.Unlock()
	return reg.Complete(prefix)
}

// Snapshot 返回当前状态的副本。
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		SessionID:     s.id,
		Commands:      s.registry.Commands(),
		Lines:         append([]render.Line(nil), s.lines...),
		History:       s.history.Entries(),
		Cursor:        s.cursor,
		Input:         s.input,
		Processing:    s.processing,
		PromptVisible: promptVisible(s.opts, s.processing),
		InputDisabled: inputDisabled(s.opts, s.processing),
	}
}

// Lines 返回用于展示的输出行；未关闭换行解析时展开多行文本。
func (s *Session) Lines() []render.Line {
	s.mu.Lock()
	lines := append([]render.Line(nil), s.lines...)
	s.mu.Unlock()
	if s.opts.NoNewlineParsing {
		return lines
	}
	return render.ExpandEOL(lines)
}

// Processing 报告是否正在处理一条提交。
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// PromptVisible 报告输入提示是否应当显示。
func (s *Session) PromptVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return promptVisible(s.opts, s.processing)
}

// InputDisabled 报告输入框是否应当禁用。
func (s *Session) InputDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return inputDisabled(s.opts, s.processing)
}

// update 在锁内执行一次状态变更，并按顺序发布其产生的事件。
func (s *Session) update(submissionID string, mutate func() []events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range mutate() {
		ev.SessionID = s.id
		ev.SubmissionID = submissionID
		ev.Timestamp = time.Now()
		s.publish(ev)
	}
}

func (s *Session) publish(ev events.Event) {
	if ev.SessionID == "" {
		ev.SessionID = s.id
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if err := s.eq.Publish(context.Background(), ev); err != nil && !errors.Is(err, events.ErrEventQueueClosed) {
		s.log.WithField("type", string(ev.Type)).Debugf("publish event: %v", err)
	}
}

func snapshotCommands(cmds []*commands.Command) []commands.Command {
	out := make([]commands.Command, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		out = append(out, *cmd)
	}
	return out
}

func commandPointers(cmds []commands.Command) []*commands.Command {
	out := make([]*commands.Command, len(cmds))
	for i := range cmds {
		out[i] = &cmds[i]
	}
	return out
}
