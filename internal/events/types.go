package events

import "time"

// Submission 代表一次回车提交，进入 SQ 后由会话的唯一 worker 串行执行。
type Submission struct {
	ID        string
	SessionID string
	Input     string
	Timestamp time.Time
}

// EventType 描述 EQ 中分发的事件类型。
type EventType string

const (
	EventSubmissionAccepted EventType = "submission.accepted"
	EventProcessingStarted  EventType = "processing.started"
	EventProcessingFinished EventType = "processing.finished"
	// EventOutputChanged 在输出区发生任何变化（追加、替换、清空）后发出。
	EventOutputChanged EventType = "output.changed"
	// EventInputChanged 在输入框内容被会话改写（历史浏览、提交后清空）后发出。
	EventInputChanged    EventType = "input.changed"
	EventCommandComplete EventType = "command.completed"
	EventCommandsChanged EventType = "commands.changed"
)

// InputChange 是 EventInputChanged 的载荷。
type InputChange struct {
	Value string
}

// Event 是 EQ 中传递的唯一消息格式，Payload 的结构由 Type 决定。
type Event struct {
	Type         EventType
	SessionID    string
	SubmissionID string
	Timestamp    time.Time
	Payload      any
}
