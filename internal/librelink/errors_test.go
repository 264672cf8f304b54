package librelink

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNetworkError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("refresh: %w", &NetworkError{Err: inner})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatal("errors.As should find NetworkError through wrapping")
	}
	if !errors.Is(err, inner) {
		t.Error("NetworkError should unwrap to the transport error")
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 401, Body: "nope"}
	if got := err.Error(); got != "API returned 401 (Unauthorized)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestProtocolError_Message(t *testing.T) {
	err := &ProtocolError{Reason: "login response did not contain an authentication token"}
	if !strings.Contains(err.Error(), "authentication token") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestLoginError_Message(t *testing.T) {
	err := &LoginError{Status: 4}
	if got := err.Error(); got != "login failed: server returned status 4" {
		t.Errorf("Error() = %q", got)
	}

	err = &LoginError{Status: 2, Region: "eu2"}
	if !strings.Contains(err.Error(), "eu2") {
		t.Errorf("Error() = %q, should carry the region", err.Error())
	}
}
