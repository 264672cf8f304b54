// Package apilog records raw API traffic to an append-only text log for
// post-hoc debugging. Write failures are swallowed: diagnostics must never
// fail the call they describe.
package apilog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const separator = "================================================================================"

// Logger appends request/response/error records to a log file. The zero
// value (or a nil *Logger) discards everything.
type Logger struct {
	mu   sync.Mutex
	path string
}

// New creates a logger writing to path and truncates any previous log.
func New(path string) *Logger {
	l := &Logger{path: path}
	l.Clear()
	return l
}

// NewCallID returns a correlation id to pair a request record with its
// response record.
func NewCallID() string {
	return uuid.NewString()
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Clear truncates the log and writes a start banner.
func (l *Logger) Clear() {
	if l == nil || l.path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = os.MkdirAll(filepath.Dir(l.path), 0750)
	header := fmt.Sprintf("API Debug Log - Started at %s\n", time.Now().Format("2006-01-02 15:04:05"))
	_ = os.WriteFile(l.path, []byte(header), 0600)
}

// LogRequest records an outgoing request.
func (l *Logger) LogRequest(callID, method, url string, headers []string, body string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n========== REQUEST %s at %s ==========\n", callID, timestamp())
	fmt.Fprintf(&sb, "%s %s\n", method, url)
	sb.WriteString("\nHeaders:\n")
	for _, h := range headers {
		fmt.Fprintf(&sb, "  %s\n", h)
	}
	if body != "" {
		sb.WriteString("\nBody:\n")
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	l.append(sb.String())
}

// LogResponse records the response paired with a prior request.
func (l *Logger) LogResponse(callID string, statusCode int, statusText string, headers []string, body string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "========== RESPONSE %s at %s ==========\n", callID, timestamp())
	fmt.Fprintf(&sb, "Status: %d %s\n", statusCode, statusText)
	sb.WriteString("\nHeaders:\n")
	for _, h := range headers {
		fmt.Fprintf(&sb, "  %s\n", h)
	}
	sb.WriteString("\nBody:\n")
	sb.WriteString(body)
	sb.WriteString("\n\n" + separator + "\n\n")
	l.append(sb.String())
}

// LogError records an operational failure.
func (l *Logger) LogError(message string, err error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n========== ERROR at %s ==========\n", timestamp())
	sb.WriteString(message)
	sb.WriteString("\n")
	if err != nil {
		fmt.Fprintf(&sb, "Error: %v\n", err)
	}
	sb.WriteString("\n" + separator + "\n\n")
	l.append(sb.String())
}

func (l *Logger) append(text string) {
	if l == nil || l.path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(text)
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000")
}
