package operations

import "time"

// OperationRequest starts one long-running wimlib-imagex invocation against
// an archive. Source is the directory to capture from (capture only), Target
// an optional path inside the archive (extract only). Options are raw flags
// checked against the per-command allowlist before they reach the binary.
type OperationRequest struct {
	Command    string   `json:"command"`
	Source     string   `json:"source,omitempty"`
	Target     string   `json:"target,omitempty"`
	ImageIndex int      `json:"imageIndex,omitempty"`
	Options    []string `json:"options,omitempty"`
}

type OperationResponse struct {
	OperationID string `json:"operationId"`
}

type StreamMessageType string

const (
	StreamTypeStdout   StreamMessageType = "stdout"
	StreamTypeStderr   StreamMessageType = "stderr"
	StreamTypeComplete StreamMessageType = "complete"
	StreamTypeError    StreamMessageType = "error"
)

type StreamMessage struct {
	Type      StreamMessageType `json:"type"`
	Data      string            `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
}

type CompleteMessage struct {
	Type      StreamMessageType `json:"type"`
	Success   bool              `json:"success"`
	ExitCode  int               `json:"exitCode"`
	Timestamp time.Time         `json:"timestamp"`
}

type Operation struct {
	ID          string           `json:"id"`
	Archive     string           `json:"archive"`
	Request     OperationRequest `json:"request"`
	StartTime   time.Time        `json:"startTime"`
	Status      string           `json:"status"`
	ExitCode    *int             `json:"exitCode,omitempty"`
	Broadcaster *Broadcaster     `json:"-"`
}
