package operations

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

type Message struct {
	Type      StreamMessageType
	Data      string
	Timestamp time.Time
	Success   *bool
	ExitCode  *int
}

// Broadcaster fans an operation's output out to any number of subscribers.
// Messages are kept so late subscribers replay the full history, which lets a
// client reconnect to a running or finished operation.
type Broadcaster struct {
	operationID  string
	subscribers  map[string]io.Writer
	messageLog   []Message
	mu           sync.RWMutex
	started      bool
	completed    bool
	completeOnce sync.Once
}

func NewBroadcaster(operationID string) *Broadcaster {
	return &Broadcaster{
		operationID: operationID,
		subscribers: make(map[string]io.Writer),
		messageLog:  make([]Message, 0, 64),
	}
}

func (b *Broadcaster) Subscribe(subscriberID string, writer io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[subscriberID] = writer

	for _, msg := range b.messageLog {
		writeMessage(writer, msg)
	}
}

func (b *Broadcaster) Unsubscribe(subscriberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, subscriberID)
}

func (b *Broadcaster) Broadcast(msgType StreamMessageType, data string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.completed {
		return
	}
	b.deliver(Message{Type: msgType, Data: data, Timestamp: time.Now()})
}

func (b *Broadcaster) BroadcastComplete(success bool, exitCode int) {
	b.completeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.completed = true
		b.deliver(Message{
			Type:      StreamTypeComplete,
			Timestamp: time.Now(),
			Success:   &success,
			ExitCode:  &exitCode,
		})
	})
}

func (b *Broadcaster) BroadcastError(errorMsg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.completed {
		return
	}
	b.completed = true
	b.deliver(Message{Type: StreamTypeError, Data: errorMsg, Timestamp: time.Now()})
}

// deliver appends to the log and writes to every subscriber. Callers hold the
// lock.
func (b *Broadcaster) deliver(msg Message) {
	b.messageLog = append(b.messageLog, msg)
	for _, writer := range b.subscribers {
		writeMessage(writer, msg)
	}
}

func (b *Broadcaster) MarkStarted() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = true
}

func (b *Broadcaster) IsStarted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.started
}

func (b *Broadcaster) IsCompleted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.completed
}

func writeMessage(writer io.Writer, msg Message) {
	var payload any
	if msg.Type == StreamTypeComplete {
		if msg.Success == nil || msg.ExitCode == nil {
			return
		}
		payload = CompleteMessage{
			Type:      msg.Type,
			Success:   *msg.Success,
			ExitCode:  *msg.ExitCode,
			Timestamp: msg.Timestamp,
		}
	} else {
		payload = StreamMessage{
			Type:      msg.Type,
			Data:      msg.Data,
			Timestamp: msg.Timestamp,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if _, err := fmt.Fprintf(writer, "data: %s\n\n", data); err != nil {
		return
	}

	if flusher, ok := writer.(interface{ Flush() }); ok {
		defer func() { _ = recover() }()
		flusher.Flush()
	}
}
