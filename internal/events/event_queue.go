package events

import (
	"context"
	"errors"
	"sync"

	"termwidget/internal/logger"
)

var (
	// ErrEventQueueClosed 表示事件队列已关闭。
	ErrEventQueueClosed = errors.New("event queue closed")
	// ErrEventDropped 表示事件被慢消费者丢弃。只有可合并的事件会被丢弃。
	ErrEventDropped = errors.New("event dropped by slow subscriber")
)

// EventQueue 是 EQ，负责事件广播。
type EventQueue struct {
	mu     sync.Mutex
	subs   []*subscriber
	buffer int
	closed bool
	log    *logger.LogEntry
}

// NewEventQueue 创建事件队列，buffer 是每个订阅者的缓存大小。
func NewEventQueue(buffer int) *EventQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventQueue{buffer: buffer, log: logger.Named("eq")}
}

// SetLogger 覆盖队列使用的 logger。
func (q *EventQueue) SetLogger(entry *logger.LogEntry) {
	if entry == nil {
		return
	}
	q.mu.Lock()
	q.log = entry
	q.mu.Unlock()
}

// Subscribe 订阅事件流。通道会在 Close 时关闭。
func (q *EventQueue) Subscribe() <-chan Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	sub := newSubscriber(q.buffer)
	q.subs = append(q.subs, sub)
	go sub.run()
	return sub.out
}

// Publish 发布事件到所有订阅者，投递本身不阻塞。
// 消费者跟不上时，可合并事件与待投递队列末尾的同类事件合并；
// 待投递队列超过 buffer 时可合并事件被丢弃并返回 ErrEventDropped。
// 生命周期事件（processing.*、command.completed 等）总会送达。
func (q *EventQueue) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrEventQueueClosed
	}
	if q.log != nil {
		q.log.WithFields(eventFields(event)).Debug("published event into EQ")
	}

	dropped := false
	for _, sub := range q.subs {
		if !sub.push(event, q.buffer) {
			dropped = true
		}
	}
	if dropped {
		if q.log != nil {
			q.log.WithField("type", string(event.Type)).Warn("event dropped by slow subscriber")
		}
		return ErrEventDropped
	}
	return nil
}

// Close 关闭事件队列和所有订阅通道。已进入缓存的事件仍可读出。
func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for _, sub := range q.subs {
		close(sub.done)
	}
	q.subs = nil
}

// SubscriberCount 返回当前订阅者数量。
func (q *EventQueue) SubscriberCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.subs)
}

// Coalescible 报告该类型事件是否只表示“状态变了”，可以与相邻同类事件合并。
func (t EventType) Coalescible() bool {
	switch t {
	case EventOutputChanged, EventInputChanged, EventCommandsChanged:
		return true
	default:
		return false
	}
}

// subscriber 用一个转发 goroutine 把待投递队列搬到订阅通道。
type subscriber struct {
	out  chan Event
	wake chan struct{}
	done chan struct{}

	mu      sync.Mutex
	pending []Event
}

func newSubscriber(buffer int) *subscriber {
	return &subscriber{
		out:  make(chan Event, buffer),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// push 把事件放入待投递队列，返回 false 表示事件被丢弃。
func (s *subscriber) push(ev Event, limit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Type.Coalescible() {
		if n := len(s.pending); n > 0 && s.pending[n-1].Type == ev.Type {
			s.pending[n-1] = ev
			return true
		}
		if len(s.pending) >= limit {
			return false
		}
	}
	s.pending = append(s.pending, ev)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *subscriber) pop() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return Event{}, false
	}
	ev := s.pending[0]
	s.pending[0] = Event{}
	s.pending = s.pending[1:]
	return ev, true
}

func (s *subscriber) run() {
	defer close(s.out)
	for {
		ev, ok := s.pop()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				if ev, ok := s.pop(); ok {
					s.flush(ev)
				}
				return
			}
		}
		select {
		case s.out <- ev:
		case <-s.done:
			s.flush(ev)
			return
		}
	}
}

// flush 在关闭时把剩余事件尽量放入通道缓存，放不下的丢弃。
func (s *subscriber) flush(ev Event) {
	for {
		select {
		case s.out <- ev:
		default:
			return
		}
		next, ok := s.pop()
		if !ok {
			return
		}
		ev = next
	}
}
