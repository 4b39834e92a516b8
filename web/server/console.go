package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
	RenderID  string    `json:"renderId,omitempty"`
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Also write to stdout for server logs
	fmt.Print(message)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
			RenderID:  wl.renderID,
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// ConsoleHistory keeps the most recent console messages for /api/console
type ConsoleHistory struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	limit    int
}

// NewConsoleHistory creates a history holding at most limit messages
func NewConsoleHistory(limit int) *ConsoleHistory {
	return &ConsoleHistory{limit: max(limit, 1)}
}

// Add appends a message, dropping the oldest when full
func (ch *ConsoleHistory) Add(msg ConsoleMessage) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.messages = append(ch.messages, msg)
	if over := len(ch.messages) - ch.limit; over > 0 {
		ch.messages = append(ch.messages[:0], ch.messages[over:]...)
	}
}

// Messages returns a copy of the retained messages, oldest first
func (ch *ConsoleHistory) Messages() []ConsoleMessage {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]ConsoleMessage{}, ch.messages...)
}
