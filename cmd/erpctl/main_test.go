package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pesio-ai/erp-client/internal/errors"
)

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": status < 300,
		"data":    data,
		"message": message,
	})
}

// setupCLI points erpctl at handler with a SQLite session in a temp dir
func setupCLI(t *testing.T, handler http.Handler) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("ERP_API_URL", server.URL)
	t.Setenv("ERP_SESSION_STORE", "sqlite://"+filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("NATS_URL", "")
	t.Setenv("ERP_PASSWORD", "")
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestCLI_LoginPersistsSessionAcrossInvocations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken": "tok-1",
			"user":        map[string]any{"id": "u1", "name": "Ravi", "role": "site_engineer"},
		}, "")
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "unauthorized")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"id": "u1", "name": "Ravi"}, "")
	})
	setupCLI(t, mux)

	if _, _, err := runCLI(t, "login", "--email", "ravi@example.com", "--password", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	out, _, err := runCLI(t, "whoami")
	if err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &user); err != nil || user.ID != "u1" {
		t.Errorf("Expected user u1 as JSON, got %q (%v)", out, err)
	}
}

func TestCLI_WhoamiWithoutSession(t *testing.T) {
	setupCLI(t, http.NotFoundHandler())

	_, _, err := runCLI(t, "whoami")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("Expected UNAUTHORIZED, got %v", err)
	}
}

func TestCLI_SessionExpiryPrintsNotice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"accessToken": "old"}, "")
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "refresh token expired")
	})
	mux.HandleFunc("/api/engineering/projects", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "jwt expired")
	})
	setupCLI(t, mux)

	if _, _, err := runCLI(t, "login", "--email", "a@b.c", "--password", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	_, stderr, err := runCLI(t, "projects", "list")
	if !errors.IsSessionExpired(err) {
		t.Fatalf("Expected SESSION_EXPIRED, got %v", err)
	}
	if strings.Count(stderr, "Session expired") != 1 {
		t.Errorf("Expected one session-expired notice on stderr, got %q", stderr)
	}

	if code := exitCode(err, &bytes.Buffer{}); code != 3 {
		t.Errorf("Expected exit status 3, got %d", code)
	}

	// The cleared session is persisted
	if _, _, err := runCLI(t, "whoami"); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("Expected logged-out state after expiry, got %v", err)
	}
}

func TestCLI_ProjectsListPassesFilters(t *testing.T) {
	var query string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/engineering/projects", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeEnvelope(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{"id": "p1", "code": "TWR-A", "name": "Tower A", "contractValue": "125000000"}},
			"total": 1,
		}, "")
	})
	setupCLI(t, mux)

	out, _, err := runCLI(t, "projects", "list", "--status", "active", "--limit", "5")
	if err != nil {
		t.Fatalf("projects list failed: %v", err)
	}
	if !strings.Contains(query, "status=active") || !strings.Contains(query, "limit=5") {
		t.Errorf("Unexpected query %q", query)
	}
	if !strings.Contains(out, `"code": "TWR-A"`) {
		t.Errorf("Expected indented JSON output, got %q", out)
	}
}

func TestCLI_RFQCreateBlockedByPrerequisites(t *testing.T) {
	var rfqPosted bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/purchase/requisitions/mr1", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"id": "mr1", "number": "MR-007", "projectId": "p1", "status": "approved"}, "")
	})
	mux.HandleFunc("/api/engineering/projects/p1/budget", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"id": "b1", "projectId": "p1", "status": "submitted"}, "")
	})
	mux.HandleFunc("/api/engineering/projects/p1/estimates", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []map[string]any{{"id": "e1", "status": "final"}}, "")
	})
	mux.HandleFunc("/api/purchase/rfqs", func(w http.ResponseWriter, r *http.Request) {
		rfqPosted = true
		writeEnvelope(w, http.StatusOK, map[string]any{"id": "rfq1"}, "")
	})
	setupCLI(t, mux)

	_, _, err := runCLI(t, "rfq", "create", "--mr", "mr1", "--supplier", "s1")
	if !errors.Is(err, errors.ErrCodePrecondition) {
		t.Fatalf("Expected PRECONDITION_FAILED, got %v", err)
	}
	if !strings.Contains(err.Error(), "project budget approved") {
		t.Errorf("Expected missing budget named, got %q", err.Error())
	}
	if rfqPosted {
		t.Error("RFQ must not be posted when prerequisites are missing")
	}
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer
	if code := exitCode(errors.SessionExpired(nil), &stderr); code != 3 || stderr.Len() != 0 {
		t.Errorf("Expected silent exit 3 on session expiry, got %d and %q", code, stderr.String())
	}

	stderr.Reset()
	if code := exitCode(errors.New(errors.ErrCodeNotFound, "Project not found"), &stderr); code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if stderr.String() != "Error: Project not found\n" {
		t.Errorf("Unexpected stderr %q", stderr.String())
	}

	if code := exitCode(nil, &stderr); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
}
