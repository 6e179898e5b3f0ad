// Package notify carries user-visible success and error messages out of the state machines.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Notifier user-visible feedback sink.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier writes notifications to the structured log. Used by headless clients.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("notification", zap.String("kind", "success"), zap.String("message", message))
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn("notification", zap.String("kind", "error"), zap.String("message", message))
}

// Kind of a recorded notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message one recorded notification.
type Message struct {
	Kind Kind
	Text string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(message string) { r.add(KindSuccess, message) }

func (r *Recorder) Error(message string) { r.add(KindError, message) }

func (r *Recorder) add(kind Kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Text: text})
}

// Messages copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last most recent notification, ok=false when none.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Count notifications of one kind.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
)
