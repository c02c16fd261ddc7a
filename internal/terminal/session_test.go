package terminal

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"termwidget/internal/commands"
	"termwidget/internal/events"
	"termwidget/internal/history"
	"termwidget/internal/render"
)

func echoCommand() *commands.Command {
	return &commands.Command{
		Name:        "echo",
		Description: "Echo a passed string.",
		Usage:       "echo <string>",
		Fn: func(_ context.Context, args []string) (any, error) {
			return strings.Join(args, " "), nil
		},
	}
}

func startSession(t *testing.T, opts Options) (*Session, <-chan events.Event) {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ch := s.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	t.Cleanup(func() {
		cancel()
		s.Close()
	})
	return s, ch
}

func submitAndWait(t *testing.T, s *Session, ch <-chan events.Event, raw string) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	id, err := s.Submit(ctx, raw)
	if err != nil {
		t.Fatalf("submit %q: %v", raw, err)
	}
	return waitCompleted(t, ch, id)
}

func waitCompleted(t *testing.T, ch <-chan events.Event, id string) Result {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event stream closed while waiting for %s", id)
			}
			if ev.Type == events.EventCommandComplete && ev.SubmissionID == id {
				return ev.Payload.(Result)
			}
		case <-timeout:
			t.Fatalf("timeout waiting for submission %s", id)
		}
	}
}

func texts(lines []render.Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.Text())
	}
	return out
}

func TestSubmitEmptyInputOnlyEchoes(t *testing.T) {
	var calls atomic.Int32
	cmd := echoCommand()
	inner := cmd.Fn
	cmd.Fn = func(ctx context.Context, args []string) (any, error) {
		calls.Add(1)
		return inner(ctx, args)
	}
	s, ch := startSession(t, Options{Commands: []*commands.Command{cmd}})

	res := submitAndWait(t, s, ch, "")
	lines := s.Lines()
	if len(lines) != 1 || !lines[0].IsEcho {
		t.Fatalf("expected exactly one echo line, got %+v", lines)
	}
	if lines[0].Text() != "$ " {
		t.Fatalf("echo text = %q", lines[0].Text())
	}
	if res.Command != "" || calls.Load() != 0 {
		t.Fatalf("empty input must not resolve a command: %+v calls=%d", res, calls.Load())
	}
}

func TestSubmitDispatchesCommand(t *testing.T) {
	var got []Result
	s, ch := startSession(t, Options{
		Commands:        []*commands.Command{echoCommand()},
		CommandCallback: func(r Result) { got = append(got, r) },
	})

	res := submitAndWait(t, s, ch, "echo test")
	if want := []string{"$ echo test", "test"}; !slices.Equal(texts(s.Lines()), want) {
		t.Fatalf("lines = %q, want %q", texts(s.Lines()), want)
	}
	lines := s.Lines()
	if !lines[0].IsEcho || lines[1].IsEcho {
		t.Fatalf("echo flags wrong: %+v", lines)
	}
	if res.Command != "echo" || !slices.Equal(res.Args, []string{"test"}) || res.Result != "test" {
		t.Fatalf("result = %+v", res)
	}
	if s.Processing() {
		t.Fatalf("session should be idle after completion")
	}
	// 回调在 command.completed 之后触发，等一次空提交保证其已执行
	submitAndWait(t, s, ch, "")
	if len(got) < 1 || got[0].RawInput != "echo test" {
		t.Fatalf("callback results = %+v", got)
	}
}

func TestSubmitNotFound(t *testing.T) {
	cases := []struct {
		name      string
		errorText string
		want      string
	}{
		{name: "default", want: "Command 'foo' not found!"},
		{name: "template", errorText: "Unknown [COMMAND], try [command]!", want: "Unknown foo, try foo!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, ch := startSession(t, Options{ErrorText: tc.errorText, NoEchoBack: true})
			res := submitAndWait(t, s, ch, "foo bar")
			if got := texts(s.Lines()); !slices.Equal(got, []string{tc.want}) {
				t.Fatalf("lines = %q, want %q", got, tc.want)
			}
			if res.Result != nil || res.Err != nil {
				t.Fatalf("not found should carry no result: %+v", res)
			}
		})
	}
}

func TestSubmitIgnoreCommandCase(t *testing.T) {
	s, ch := startSession(t, Options{
		Commands:          []*commands.Command{echoCommand()},
		IgnoreCommandCase: true,
		NoEchoBack:        true,
	})
	submitAndWait(t, s, ch, "ECHO Hi")
	if got := texts(s.Lines()); !slices.Equal(got, []string{"Hi"}) {
		t.Fatalf("lines = %q", got)
	}
}

func TestHelpListsCommandsInOrder(t *testing.T) {
	echo := echoCommand()
	bare := &commands.Command{Name: "bare", Fn: func(context.Context, []string) (any, error) { return nil, nil }}
	s, ch := startSession(t, Options{Commands: []*commands.Command{echo, bare}, NoEchoBack: true})

	submitAndWait(t, s, ch, "help")
	want := []string{
		"help - Show a list of available commands.",
		"clear - Empty the terminal window.",
		"echo - Echo a passed string. - echo <string>",
		"bare - None",
		"",
	}
	if got := texts(s.Lines()); !slices.Equal(got, want) {
		t.Fatalf("help output = %q, want %q", got, want)
	}
}

func TestClearEmptiesOutput(t *testing.T) {
	s, ch := startSession(t, Options{Welcome: WelcomeDefault()})
	s.Push("something")
	submitAndWait(t, s, ch, "clear")
	if lines := s.Lines(); len(lines) != 0 {
		t.Fatalf("expected empty output after clear, got %q", texts(lines))
	}
}

func TestHandlerErrorsAreRendered(t *testing.T) {
	failing := &commands.Command{Name: "fail", Fn: func(context.Context, []string) (any, error) {
		return nil, errors.New("boom")
	}}
	panicking := &commands.Command{Name: "explode", Fn: func(context.Context, []string) (any, error) {
		panic("kaboom")
	}}
	s, ch := startSession(t, Options{Commands: []*commands.Command{failing, panicking}, NoEchoBack: true})

	res := submitAndWait(t, s, ch, "fail")
	if res.Err == nil || res.Err.Error() != "boom" {
		t.Fatalf("expected handler error in result, got %+v", res)
	}
	res = submitAndWait(t, s, ch, "explode")
	if res.Err == nil || !strings.Contains(res.Err.Error(), "kaboom") {
		t.Fatalf("expected panic captured in result, got %+v", res)
	}
	want := []string{
		"Command 'fail' failed: boom",
		"Command 'explode' failed: panic: kaboom",
	}
	if got := texts(s.Lines()); !slices.Equal(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if s.Processing() {
		t.Fatalf("session should return to idle after a failing handler")
	}
}

func TestSubmissionsNeverInterleave(t *testing.T) {
	var active, maxActive atomic.Int32
	release := make(chan struct{})
	var order []string
	slow := &commands.Command{Name: "slow", Fn: func(ctx context.Context, args []string) (any, error) {
		n := active.Add(1)
		defer active.Add(-1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		order = append(order, args[0])
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return args[0], nil
	}}
	s, ch := startSession(t, Options{Commands: []*commands.Command{slow}, NoEchoBack: true})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	first, err := s.Submit(ctx, "slow 1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := s.Submit(ctx, "slow 2")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	close(release)
	waitCompleted(t, ch, first)
	waitCompleted(t, ch, second)

	if maxActive.Load() != 1 {
		t.Fatalf("handlers ran concurrently: max active = %d", maxActive.Load())
	}
	if !slices.Equal(order, []string{"1", "2"}) {
		t.Fatalf("order = %v", order)
	}
	if got := texts(s.Lines()); !slices.Equal(got, []string{"1", "2"}) {
		t.Fatalf("lines = %q", got)
	}
}

func TestProcessingStateAndVisibility(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	wait := &commands.Command{Name: "wait", Fn: func(ctx context.Context, _ []string) (any, error) {
		close(started)
		select {
		case <-release:
			return "done", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
	s, ch := startSession(t, Options{
		Commands:               []*commands.Command{wait},
		DisableOnProcess:       true,
		HidePromptWhenDisabled: true,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	id, err := s.Submit(ctx, "wait")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started
	if !s.Processing() || !s.InputDisabled() || s.PromptVisible() {
		t.Fatalf("while processing: processing=%v disabled=%v visible=%v", s.Processing(), s.InputDisabled(), s.PromptVisible())
	}
	if _, err := s.Submit(ctx, "wait"); !errors.Is(err, ErrInputDisabled) {
		t.Fatalf("expected ErrInputDisabled while processing, got %v", err)
	}
	close(release)
	waitCompleted(t, ch, id)
	if s.Processing() || s.InputDisabled() || !s.PromptVisible() {
		t.Fatalf("after processing: processing=%v disabled=%v visible=%v", s.Processing(), s.InputDisabled(), s.PromptVisible())
	}
}

func TestSubmitRejectedWhenDisabledOrReadOnly(t *testing.T) {
	for _, opts := range []Options{{Disabled: true}, {ReadOnly: true}} {
		s, err := New(opts)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if _, err := s.Submit(context.Background(), "help"); !errors.Is(err, ErrInputDisabled) {
			t.Fatalf("opts %+v: expected ErrInputDisabled, got %v", opts, err)
		}
		s.Close()
	}
}

func TestSubmitAfterCloseFails(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Start(context.Background())
	s.Close()
	if _, err := s.Submit(context.Background(), "help"); !errors.Is(err, events.ErrSubmissionQueueClosed) {
		t.Fatalf("expected ErrSubmissionQueueClosed, got %v", err)
	}
}

func TestHistoryRecordingAndScroll(t *testing.T) {
	s, ch := startSession(t, Options{NoEchoBack: true})
	for _, raw := range []string{"a", "", "b", "c"} {
		submitAndWait(t, s, ch, raw)
	}
	if got := s.Snapshot().History; !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("history = %q", got)
	}

	steps := []struct {
		dir  history.Direction
		want string
	}{
		{history.Up, "c"},
		{history.Up, "b"},
		{history.Up, "a"},
		{history.Down, "b"},
	}
	for i, step := range steps {
		value, ok := s.ScrollHistory(step.dir)
		if !ok || value != step.want {
			t.Fatalf("step %d: got %q (ok=%v), want %q", i, value, ok, step.want)
		}
	}
	if s.Snapshot().Input != "b" {
		t.Fatalf("input should follow history, got %q", s.Snapshot().Input)
	}
	if s.Processing() {
		t.Fatalf("scrolling must not enter processing")
	}

	submitAndWait(t, s, ch, "d")
	snap := s.Snapshot()
	if snap.Input != "" || snap.Cursor.Browsing() {
		t.Fatalf("submit should clear input and cursor, got %+v", snap)
	}
}

func TestNoHistory(t *testing.T) {
	s, ch := startSession(t, Options{NoHistory: true, NoEchoBack: true})
	submitAndWait(t, s, ch, "a")
	if _, ok := s.ScrollHistory(history.Up); ok {
		t.Fatalf("history should stay empty")
	}
}

func TestPushLockedReplacesLastLine(t *testing.T) {
	s, err := New(Options{Locked: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()
	for i := range 5 {
		s.Push(i)
		if n := len(s.Lines()); n != 1 {
			t.Fatalf("push %d: expected 1 line, got %d", i, n)
		}
	}
	if got := s.Lines()[0].Text(); got != "4" {
		t.Fatalf("last line = %q", got)
	}
}

func TestPushMaxOutputDropsOldest(t *testing.T) {
	s, err := New(Options{MaxOutput: 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()
	for _, msg := range []string{"1", "2", "3", "4"} {
		s.Push(msg)
	}
	if got := texts(s.Lines()); !slices.Equal(got, []string{"2", "3", "4"}) {
		t.Fatalf("lines = %q", got)
	}
}

func TestPushWithRawInputRecordsHistory(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()
	s.Push(render.BuildEcho("$", "ls", render.EchoStyleNone, render.DefaultTheme()), WithEcho(), WithRawInput("ls"))
	snap := s.Snapshot()
	if len(snap.Lines) != 1 || !snap.Lines[0].IsEcho {
		t.Fatalf("lines = %+v", snap.Lines)
	}
	if !slices.Equal(snap.History, []string{"ls"}) {
		t.Fatalf("history = %q", snap.History)
	}
}

func TestLinesExpandsNewlines(t *testing.T) {
	for _, noParse := range []bool{false, true} {
		s, err := New(Options{NoNewlineParsing: noParse})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		s.Push(`line1\nline2`)
		want := []string{"line1", "line2"}
		if noParse {
			want = []string{`line1\nline2`}
		}
		if got := texts(s.Lines()); !slices.Equal(got, want) {
			t.Fatalf("noNewlineParsing=%v: lines = %q, want %q", noParse, got, want)
		}
		s.Close()
	}
}

func TestHandlerPushesThroughContext(t *testing.T) {
	progress := &commands.Command{Name: "progress", Fn: func(ctx context.Context, _ []string) (any, error) {
		s, ok := FromContext(ctx)
		if !ok {
			return nil, errors.New("no session in context")
		}
		for _, p := range []string{"10%", "50%"} {
			s.Push(p)
		}
		return "100%", nil
	}}
	s, ch := startSession(t, Options{Commands: []*commands.Command{progress}, NoEchoBack: true, Locked: true})
	res := submitAndWait(t, s, ch, "progress")
	if res.Err != nil {
		t.Fatalf("handler error: %v", res.Err)
	}
	if got := texts(s.Lines()); !slices.Equal(got, []string{"100%"}) {
		t.Fatalf("locked progress lines = %q", got)
	}
}

func TestLifecycleEventsSurviveOutputBurst(t *testing.T) {
	const pushes = 300
	burst := &commands.Command{Name: "burst", Fn: func(ctx context.Context, _ []string) (any, error) {
		s, ok := FromContext(ctx)
		if !ok {
			return nil, errors.New("no session in context")
		}
		for i := 0; i < pushes; i++ {
			s.Push(i)
		}
		return "done", nil
	}}
	s, ch := startSession(t, Options{Commands: []*commands.Command{burst}, NoEchoBack: true})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	id, err := s.Submit(ctx, "burst")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 处理结束之前不消费事件
	deadline := time.After(2 * time.Second)
	for started := false; !started || s.Processing(); {
		started = started || s.Processing() || len(s.Lines()) > 0
		select {
		case <-deadline:
			t.Fatalf("burst never finished")
		case <-time.After(time.Millisecond):
		}
	}

	var finished, cleared bool
	res := waitCompletedTracking(t, ch, id, func(ev events.Event) {
		switch ev.Type {
		case events.EventProcessingFinished:
			finished = true
		case events.EventInputChanged:
			if change, ok := ev.Payload.(events.InputChange); ok && change.Value == "" {
				cleared = true
			}
		}
	})
	if !finished || !cleared {
		t.Fatalf("lifecycle events missing: finished=%v cleared=%v", finished, cleared)
	}
	if res.Result != "done" {
		t.Fatalf("result = %v", res.Result)
	}
	if got := len(s.Lines()); got != pushes+1 {
		t.Fatalf("lines = %d, want %d", got, pushes+1)
	}
}

func waitCompletedTracking(t *testing.T, ch <-chan events.Event, id string, track func(events.Event)) Result {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event stream closed while waiting for %s", id)
			}
			track(ev)
			if ev.Type == events.EventCommandComplete && ev.SubmissionID == id {
				return ev.Payload.(Result)
			}
		case <-timeout:
			t.Fatalf("timeout waiting for submission %s", id)
		}
	}
}

func TestSetCommandsRevalidates(t *testing.T) {
	echo := echoCommand()
	s, ch := startSession(t, Options{Commands: []*commands.Command{echo}, NoEchoBack: true})

	if err := s.SetCommands([]*commands.Command{echo}); err != nil {
		t.Fatalf("unchanged commands should not fail: %v", err)
	}
	bad := &commands.Command{Name: "help", Fn: echo.Fn}
	if err := s.SetCommands([]*commands.Command{bad}); err == nil {
		t.Fatalf("expected validation error for reserved name")
	} else {
		var verr *commands.ValidationError
		if !errors.As(err, &verr) || verr.Kind != commands.KindReserved {
			t.Fatalf("expected reserved validation error, got %v", err)
		}
	}
	submitAndWait(t, s, ch, "echo still")
	if got := texts(s.Lines()); !slices.Equal(got, []string{"still"}) {
		t.Fatalf("old registry should survive a failed update, lines = %q", got)
	}

	ping := &commands.Command{Name: "ping", Fn: func(context.Context, []string) (any, error) { return "pong", nil }}
	if err := s.SetCommands([]*commands.Command{ping}); err != nil {
		t.Fatalf("set commands: %v", err)
	}
	submitAndWait(t, s, ch, "ping")
	submitAndWait(t, s, ch, "echo gone")
	want := []string{"still", "pong", "Command 'echo' not found!"}
	if got := texts(s.Lines()); !slices.Equal(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestNewRejectsInvalidCommands(t *testing.T) {
	_, err := New(Options{Commands: []*commands.Command{{Name: "nofn"}}})
	var verr *commands.ValidationError
	if !errors.As(err, &verr) || verr.Kind != commands.KindInvalidHandler {
		t.Fatalf("expected invalid handler error, got %v", err)
	}
}

func TestEventsPublishedForSubmission(t *testing.T) {
	s, ch := startSession(t, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	id, err := s.Submit(ctx, "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	var seen []events.EventType
	timeout := time.After(2 * time.Second)
	for !slices.Contains(seen, events.EventCommandComplete) {
		select {
		case ev := <-ch:
			if ev.SubmissionID == id && ev.SessionID == s.ID() {
				seen = append(seen, ev.Type)
			}
		case <-timeout:
			t.Fatalf("timeout, seen %v", seen)
		}
	}
	// accepted 由提交方发布，与 worker 事件之间没有先后保证
	if !slices.Contains(seen, events.EventSubmissionAccepted) {
		t.Fatalf("missing accepted event in %v", seen)
	}
	seen = slices.DeleteFunc(seen, func(typ events.EventType) bool {
		return typ == events.EventSubmissionAccepted
	})
	want := []events.EventType{
		events.EventProcessingStarted,
		events.EventOutputChanged,
		events.EventProcessingFinished,
		events.EventInputChanged,
		events.EventCommandComplete,
	}
	if !slices.Equal(seen, want) {
		t.Fatalf("events = %v, want %v", seen, want)
	}
}
