package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		message     string
		wantCode    ErrorCode
		wantMessage string
	}{
		{"bad request", 400, "Invalid data", ErrCodeInvalidInput, "Invalid data"},
		{"unauthorized", 401, "", ErrCodeUnauthorized, "Request failed with status 401"},
		{"forbidden", 403, "nope", ErrCodeForbidden, "nope"},
		{"not found", 404, "Project not found", ErrCodeNotFound, "Project not found"},
		{"conflict", 409, "duplicate", ErrCodeConflict, "duplicate"},
		{"server error", 502, "", ErrCodeInternal, "Request failed with status 502"},
		{"ok with failure envelope", 200, "Invalid data", ErrCodeRequestFailed, "Invalid data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, tt.message)
			if err.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, err.Code)
			}
			if err.Error() != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, err.Error())
			}
			if err.Status != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, err.Status)
			}
		})
	}
}

func TestCodeOfWrappedChain(t *testing.T) {
	cause := stderrors.New("refresh rejected")
	err := fmt.Errorf("list projects: %w", SessionExpired(cause))

	if !IsSessionExpired(err) {
		t.Fatalf("Expected session expired through wrapping, got code %q", CodeOf(err))
	}
	if StatusOf(err) != 401 {
		t.Errorf("Expected status 401, got %d", StatusOf(err))
	}
	if !stderrors.Is(err, cause) {
		t.Error("Expected the refresh cause to stay reachable")
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("Expected empty code for a plain error")
	}
}

func TestInvalidInputMessage(t *testing.T) {
	err := InvalidInput("reason", "a reason is required to reject")
	if got := err.Error(); got != "reason: a reason is required to reject" {
		t.Errorf("Unexpected message %q", got)
	}
}
