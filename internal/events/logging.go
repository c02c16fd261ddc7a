package events

import (
	"encoding/json"
	"fmt"

	"termwidget/internal/logger"
)

// encodePayload 把事件载荷压成单行文本写入日志。
// 字符串原样输出，其余结构优先 JSON，失败时退回 %v。
func encodePayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}

func eventFields(event Event) logger.Fields {
	fields := logger.Fields{"type": string(event.Type)}
	if event.SessionID != "" {
		fields["session_id"] = event.SessionID
	}
	if event.SubmissionID != "" {
		fields["submission_id"] = event.SubmissionID
	}
	if payload := encodePayload(event.Payload); payload != "" {
		fields["payload"] = payload
	}
	return fields
}
