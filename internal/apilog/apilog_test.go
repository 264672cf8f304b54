package apilog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api-debug.log")
	return New(path), path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	return string(data)
}

func TestNew_WritesStartBanner(t *testing.T) {
	l, path := newTestLogger(t)
	if l.Path() != path {
		t.Errorf("Path() = %q, want %q", l.Path(), path)
	}
	if !strings.Contains(readLog(t, path), "API Debug Log") {
		t.Error("log should start with a banner")
	}
}

func TestLogRequestResponse_Paired(t *testing.T) {
	l, path := newTestLogger(t)

	id := NewCallID()
	l.LogRequest(id, "POST", "https://api.example.com/llu/auth/login",
		[]string{"product: llu.android"}, `{"email":"a@b.c"}`)
	l.LogResponse(id, 200, "OK", []string{"Content-Type: application/json"}, `{"status":0}`)

	content := readLog(t, path)
	if strings.Count(content, id) != 2 {
		t.Errorf("call id should appear in both request and response records, got %d", strings.Count(content, id))
	}
	if !strings.Contains(content, "POST https://api.example.com/llu/auth/login") {
		t.Error("request line missing")
	}
	if !strings.Contains(content, "Status: 200 OK") {
		t.Error("response status missing")
	}
	if !strings.Contains(content, `{"email":"a@b.c"}`) {
		t.Error("request body missing")
	}
}

func TestLogError(t *testing.T) {
	l, path := newTestLogger(t)

	l.LogError("login failed", errors.New("connection refused"))

	content := readLog(t, path)
	if !strings.Contains(content, "login failed") || !strings.Contains(content, "connection refused") {
		t.Errorf("error record incomplete: %s", content)
	}
}

func TestClear_Truncates(t *testing.T) {
	l, path := newTestLogger(t)
	l.LogError("something", nil)

	l.Clear()

	if strings.Contains(readLog(t, path), "something") {
		t.Error("Clear() should drop previous records")
	}
}

func TestNilLogger_IsSafe(t *testing.T) {
	var l *Logger
	l.LogRequest("id", "GET", "http://x", nil, "")
	l.LogResponse("id", 200, "OK", nil, "")
	l.LogError("msg", nil)
	l.Clear()
	if l.Path() != "" {
		t.Error("nil logger Path() should be empty")
	}
}

func TestUnwritablePath_IsSwallowed(t *testing.T) {
	l := &Logger{path: filepath.Join(t.TempDir(), "missing-dir", "deep", "log.txt")}
	// No Clear, so the directory is never created; appends must not panic
	// or surface errors.
	l.LogRequest("id", "GET", "http://x", nil, "")
	l.LogError("msg", errors.New("x"))
}
