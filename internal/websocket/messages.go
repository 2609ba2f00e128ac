package websocket

import "time"

type MessageType string

const (
	MessageTypeArchiveChange   MessageType = "archive_change"
	MessageTypeOperationStatus MessageType = "operation_status"
)

type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// ArchiveChangeEvent announces that a WIM archive appeared, changed or
// disappeared under the image location.
type ArchiveChangeEvent struct {
	BaseMessage
	Archive   string `json:"archive"`
	Change    string `json:"change"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// OperationStatusEvent announces a lifecycle transition of a long-running
// wimlib-imagex invocation.
type OperationStatusEvent struct {
	BaseMessage
	OperationID string `json:"operation_id"`
	Archive     string `json:"archive"`
	Command     string `json:"command"`
	Status      string `json:"status"`
	ExitCode    *int   `json:"exit_code,omitempty"`
}
