package events

import (
	"context"
	"errors"
	"sync"

	"termwidget/internal/logger"
)

var (
	// ErrSubmissionQueueClosed 表示队列已关闭，无法再提交或接收。
	ErrSubmissionQueueClosed = errors.New("submission queue closed")
)

// SubmissionQueue 是一个有界的提交队列（SQ）。
type SubmissionQueue struct {
	ch        chan Submission
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.LogEntry
}

// NewSubmissionQueue 创建一个新的 SubmissionQueue。
func NewSubmissionQueue(capacity int) *SubmissionQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &SubmissionQueue{
		ch:   make(chan Submission, capacity),
		done: make(chan struct{}),
		log:  logger.Named("sq"),
	}
}

// SetLogger 覆盖队列使用的 logger。
func (q *SubmissionQueue) SetLogger(entry *logger.LogEntry) {
	if entry == nil {
		return
	}
	q.log = entry
}

// Submit 将提交放入队列；队列满时阻塞，支持 ctx 取消。
func (q *SubmissionQueue) Submit(ctx context.Context, submission Submission) error {
	select {
	case <-q.done:
		return ErrSubmissionQueueClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrSubmissionQueueClosed
	case q.ch <- submission:
		q.logSubmission(submission)
		return nil
	}
}

// Receive 读取一条提交；队列关闭后返回 ErrSubmissionQueueClosed，
// 关闭前已入队但未执行的提交被丢弃。
func (q *SubmissionQueue) Receive(ctx context.Context) (Submission, error) {
	select {
	case <-ctx.Done():
		return Submission{}, ctx.Err()
	case <-q.done:
		return Submission{}, ErrSubmissionQueueClosed
	case sub := <-q.ch:
		return sub, nil
	}
}

// Len 返回当前排队的提交数。
func (q *SubmissionQueue) Len() int {
	return len(q.ch)
}

// Close 关闭队列，停止进一步提交。
func (q *SubmissionQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *SubmissionQueue) logSubmission(submission Submission) {
	if q.log == nil {
		return
	}
	fields := logger.Fields{
		"submission_id": submission.ID,
		"input":         submission.Input,
	}
	if submission.SessionID != "" {
		fields["session_id"] = submission.SessionID
	}
	q.log.WithFields(fields).Debug("enqueued submission into SQ")
}
