package httpclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/events"
	"github.com/pesio-ai/erp-client/internal/logger"
	"github.com/pesio-ai/erp-client/internal/session"
)

type testEnv struct {
	client *Client
	holder *session.Holder
	store  *session.MemoryStore
	bus    *events.Bus
	server *httptest.Server
}

func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	holder, err := session.NewHolder(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("NewHolder failed: %v", err)
	}
	bus := events.NewBus()

	return &testEnv{
		client: NewClient(server.URL+"/api", holder, WithDispatcher(bus)),
		holder: holder,
		store:  store,
		bus:    bus,
		server: server,
	}
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"data":    data,
		"message": message,
	})
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, true, map[string]string{"id": "p1"}, "")
	}))
	_ = env.holder.Set(context.Background(), "abc")

	var out struct {
		ID string `json:"id"`
	}
	if err := env.client.Get(context.Background(), "/engineering/projects/p1", nil, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotAuth != "Bearer abc" {
		t.Errorf("Expected bearer header, got %q", gotAuth)
	}
	if out.ID != "p1" {
		t.Errorf("Expected decoded data id p1, got %q", out.ID)
	}
}

func TestClient_RefreshesOnceAndRetriesWithNewToken(t *testing.T) {
	var resourceHits, refreshHits int32
	var retriedAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		if r.Header.Get("Authorization") != "" {
			t.Errorf("Refresh call must not carry the expired bearer token")
		}
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "fresh"}, "")
	})
	mux.HandleFunc("/api/purchase/requisitions", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&resourceHits, 1)
		if n == 1 {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "jwt expired")
			return
		}
		retriedAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, true, []string{"MR-1"}, "")
	})

	env := newTestEnv(t, mux)
	_ = env.holder.Set(context.Background(), "stale")

	var out []string
	if err := env.client.Get(context.Background(), "/purchase/requisitions", nil, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if resourceHits != 2 {
		t.Errorf("Expected exactly 2 resource hits (original + one retry), got %d", resourceHits)
	}
	if refreshHits != 1 {
		t.Errorf("Expected exactly 1 refresh, got %d", refreshHits)
	}
	if retriedAuth != "Bearer fresh" {
		t.Errorf("Expected retry with the refreshed token, got %q", retriedAuth)
	}
	if env.holder.Token() != "fresh" {
		t.Errorf("Expected holder to keep the refreshed token, got %q", env.holder.Token())
	}
	if stored, _, _ := env.store.Get(context.Background(), session.TokenKey); stored != "fresh" {
		t.Errorf("Expected refreshed token persisted, got %q", stored)
	}
	if len(out) != 1 || out[0] != "MR-1" {
		t.Errorf("Unexpected payload %v", out)
	}
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	const callers = 8
	var resourceHits, refreshHits int32

	// Every stale request is held until all callers have sent one, so all of
	// them see a 401 for the same token.
	var stale sync.WaitGroup
	stale.Add(callers)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		time.Sleep(50 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "fresh"}, "")
	})
	mux.HandleFunc("/api/workflow/approvals/pending", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&resourceHits, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			stale.Done()
			stale.Wait()
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "jwt expired")
			return
		}
		writeEnvelope(w, http.StatusOK, true, []string{}, "")
	})

	env := newTestEnv(t, mux)
	ctx := context.Background()
	_ = env.holder.Set(ctx, "stale")

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			var out []string
			return env.client.Get(ctx, "/workflow/approvals/pending", nil, &out)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent Get failed: %v", err)
	}

	if got := atomic.LoadInt32(&refreshHits); got != 1 {
		t.Errorf("Expected one shared refresh, got %d", got)
	}
	if got := atomic.LoadInt32(&resourceHits); got != 2*callers {
		t.Errorf("Expected %d resource hits (one retry each), got %d", 2*callers, got)
	}
	if env.holder.Token() != "fresh" {
		t.Errorf("Expected refreshed token, got %q", env.holder.Token())
	}
}

func TestClient_CancelledCallerDoesNotExpireSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var refreshHits, dispatched int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		cancel()
		time.Sleep(20 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "fresh"}, "")
	})
	mux.HandleFunc("/api/engineering/projects", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "jwt expired")
	})

	env := newTestEnv(t, mux)
	bg := context.Background()
	_ = env.holder.Set(bg, "stale")
	_ = env.holder.SetRefreshToken(bg, "valid-refresh")
	env.bus.Subscribe(events.APIError, func(context.Context, events.Event) {
		atomic.AddInt32(&dispatched, 1)
	})

	err := env.client.Get(ctx, "/engineering/projects", nil, nil)
	if errors.CodeOf(err) != errors.ErrCodeNetwork {
		t.Fatalf("Expected NETWORK for a cancelled caller, got %v", err)
	}

	// The shared refresh outlives the caller; join it or see its result.
	token, err := env.client.refresh(bg, "stale")
	if err != nil || token != "fresh" {
		t.Fatalf("Expected the detached refresh to succeed, got %q (%v)", token, err)
	}
	if got := atomic.LoadInt32(&refreshHits); got != 1 {
		t.Errorf("Expected one refresh, got %d", got)
	}
	if env.holder.RefreshToken() != "valid-refresh" {
		t.Errorf("Expected refresh token kept, got %q", env.holder.RefreshToken())
	}
	if got := atomic.LoadInt32(&dispatched); got != 0 {
		t.Errorf("Expected no api-error events, got %d", got)
	}
}

func TestClient_UnreachableRefreshDoesNotExpireSession(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler())
	ctx := context.Background()
	_ = env.holder.Set(ctx, "stale")
	_ = env.holder.SetRefreshToken(ctx, "valid-refresh")
	env.server.Close()

	_, err := env.client.refresh(ctx, "stale")
	if errors.CodeOf(err) != errors.ErrCodeNetwork {
		t.Fatalf("Expected NETWORK, got %v", err)
	}
	if env.holder.Token() != "stale" || env.holder.RefreshToken() != "valid-refresh" {
		t.Errorf("Expected session kept, got token=%q refresh=%q", env.holder.Token(), env.holder.RefreshToken())
	}
}

func TestClient_LogsRetriedOnlyForTheRepeatedRequest(t *testing.T) {
	var resourceHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "fresh"}, "")
	})
	mux.HandleFunc("/api/accounts/accounts", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&resourceHits, 1) == 1 {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "jwt expired")
			return
		}
		writeEnvelope(w, http.StatusOK, true, []string{}, "")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Environment: "test", Output: &buf})
	holder, _ := session.NewHolder(context.Background(), session.NewMemoryStore(), nil)
	_ = holder.Set(context.Background(), "stale")
	client := NewClient(server.URL+"/api", holder, WithLogger(log))

	if err := client.Get(context.Background(), "/accounts/accounts", nil, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var got []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line struct {
			Message string `json:"message"`
			Path    string `json:"path"`
			Retried bool   `json:"retried"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil || line.Message != "Request completed" {
			continue
		}
		got = append(got, fmt.Sprintf("%s retried=%v", line.Path, line.Retried))
	}

	want := []string{
		"/accounts/accounts retried=false",
		"/auth/refresh retried=false",
		"/accounts/accounts retried=true",
	}
	if strings.Join(got, "; ") != strings.Join(want, "; ") {
		t.Errorf("Expected log lines %v, got %v", want, got)
	}
}

func TestClient_RetryThatStillFailsDoesNotLoop(t *testing.T) {
	var resourceHits, refreshHits int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "fresh"}, "")
	})
	mux.HandleFunc("/api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&resourceHits, 1)
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "Unauthorized")
	})

	env := newTestEnv(t, mux)
	_ = env.holder.Set(context.Background(), "stale")

	err := env.client.Get(context.Background(), "/admin/users", nil, nil)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if errors.CodeOf(err) != errors.ErrCodeUnauthorized {
		t.Errorf("Expected UNAUTHORIZED from the retried request, got %q", errors.CodeOf(err))
	}
	if resourceHits != 2 {
		t.Errorf("Expected 2 resource hits, got %d", resourceHits)
	}
	if refreshHits != 1 {
		t.Errorf("Expected 1 refresh, got %d", refreshHits)
	}
}

func TestClient_FailedRefreshExpiresSession(t *testing.T) {
	var resourceHits, refreshHits int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "refresh token revoked")
	})
	mux.HandleFunc("/api/accounts/journals", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&resourceHits, 1)
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "jwt expired")
	})

	env := newTestEnv(t, mux)
	ctx := context.Background()
	_ = env.holder.Set(ctx, "stale")
	_ = env.holder.SetRefreshToken(ctx, "revoked")

	var dispatched []events.Event
	env.bus.Subscribe(events.APIError, func(_ context.Context, ev events.Event) {
		dispatched = append(dispatched, ev)
	})

	err := env.client.Get(ctx, "/accounts/journals", nil, nil)
	if !errors.IsSessionExpired(err) {
		t.Fatalf("Expected SESSION_EXPIRED, got %v", err)
	}

	if resourceHits != 1 {
		t.Errorf("Expected the original request only, got %d hits", resourceHits)
	}
	if refreshHits != 1 {
		t.Errorf("Expected a single refresh attempt, got %d", refreshHits)
	}
	if env.holder.Token() != "" {
		t.Errorf("Expected token cleared, got %q", env.holder.Token())
	}
	if _, ok, _ := env.store.Get(ctx, session.TokenKey); ok {
		t.Error("Expected persisted token removed")
	}
	if len(dispatched) != 1 {
		t.Fatalf("Expected exactly one api-error event, got %d", len(dispatched))
	}
	if dispatched[0].Code != string(errors.ErrCodeSessionExpired) || dispatched[0].Status != 401 {
		t.Errorf("Unexpected event %+v", dispatched[0])
	}
}

func TestClient_RefreshWithoutTokenExpiresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]string{}, "")
	})
	mux.HandleFunc("/api/site/grn", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "")
	})

	env := newTestEnv(t, mux)
	_ = env.holder.Set(context.Background(), "stale")

	err := env.client.Get(context.Background(), "/site/grn", nil, nil)
	if !errors.IsSessionExpired(err) {
		t.Fatalf("Expected SESSION_EXPIRED when refresh yields no token, got %v", err)
	}
	if env.holder.Token() != "" {
		t.Error("Expected token cleared")
	}
}

func TestClient_FailureEnvelopeOnOKStatus(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, false, nil, "Invalid data")
	}))

	err := env.client.Post(context.Background(), "/engineering/projects", map[string]string{"name": ""}, nil)
	if err == nil {
		t.Fatal("Expected an error for success=false")
	}
	if err.Error() != "Invalid data" {
		t.Errorf("Expected message 'Invalid data', got %q", err.Error())
	}
	if errors.StatusOf(err) != http.StatusOK {
		t.Errorf("Expected status 200 on the error, got %d", errors.StatusOf(err))
	}
}

func TestClient_MissingSuccessFlagIsFailure(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"x"}}`))
	}))

	if err := env.client.Get(context.Background(), "/masters/units", nil, nil); err == nil {
		t.Fatal("Expected an envelope without success to fail")
	}
}

func TestClient_FormDataDoesNotSendJSONContentType(t *testing.T) {
	var contentType, field, fileBody string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm failed: %v", err)
		}
		field = r.FormValue("projectId")
		if f, _, err := r.FormFile("file"); err == nil {
			b, _ := io.ReadAll(f)
			fileBody = string(b)
		}
		writeEnvelope(w, http.StatusCreated, true, map[string]int{"imported": 2}, "")
	}))

	form := &FormData{
		Fields: map[string]string{"projectId": "p1"},
		Files:  []FormFile{{Field: "file", FileName: "boq.csv", ContentType: "text/csv", Data: []byte("code,qty\nA,1\n")}},
	}

	var out struct {
		Imported int `json:"imported"`
	}
	if err := env.client.PostForm(context.Background(), "/engineering/boq/import", form, &out); err != nil {
		t.Fatalf("PostForm failed: %v", err)
	}

	if strings.Contains(contentType, "application/json") {
		t.Errorf("Form request must not carry a JSON content type, got %q", contentType)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Errorf("Expected multipart content type, got %q", contentType)
	}
	if field != "p1" {
		t.Errorf("Expected projectId field p1, got %q", field)
	}
	if fileBody != "code,qty\nA,1\n" {
		t.Errorf("Unexpected file body %q", fileBody)
	}
	if out.Imported != 2 {
		t.Errorf("Expected imported=2, got %d", out.Imported)
	}
}

func TestClient_FormDataIsResentAfterRefresh(t *testing.T) {
	var uploads int32
	var lastFile string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]string{"token": "fresh"}, "")
	})
	mux.HandleFunc("/api/purchase/quotations/q1/attachments", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&uploads, 1) == 1 {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "")
			return
		}
		if f, _, err := r.FormFile("file"); err == nil {
			b, _ := io.ReadAll(f)
			lastFile = string(b)
		}
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})

	env := newTestEnv(t, mux)
	form := &FormData{Files: []FormFile{{Field: "file", FileName: "q.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}}}

	if err := env.client.PostForm(context.Background(), "/purchase/quotations/q1/attachments", form, nil); err != nil {
		t.Fatalf("PostForm failed: %v", err)
	}
	if lastFile != "%PDF" {
		t.Errorf("Expected the retried upload to carry the file again, got %q", lastFile)
	}
}

func TestClient_JSONBodyAndQuery(t *testing.T) {
	var contentType, status, page string
	var body map[string]string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		status = r.URL.Query().Get("status")
		page = r.URL.Query().Get("page")
		json.NewDecoder(r.Body).Decode(&body)
		writeEnvelope(w, http.StatusOK, true, nil, "")
	}))

	req := &Request{
		Method: http.MethodPatch,
		Path:   "/workflow/sla-rules/r1",
		Query:  url.Values{"status": {"active"}, "page": {"2"}},
		Body:   map[string]string{"hours": "48"},
	}
	if err := env.client.Do(context.Background(), req, nil); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if !strings.HasPrefix(contentType, "application/json") {
		t.Errorf("Expected JSON content type, got %q", contentType)
	}
	if status != "active" || page != "2" {
		t.Errorf("Unexpected query status=%q page=%q", status, page)
	}
	if body["hours"] != "48" {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestClient_TextResponses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})
	env := newTestEnv(t, mux)

	var text string
	if err := env.client.Get(context.Background(), "/health", nil, &text); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if text != "ok" {
		t.Errorf("Expected text 'ok', got %q", text)
	}

	err := env.client.Get(context.Background(), "/broken", nil, nil)
	if errors.CodeOf(err) != errors.ErrCodeInternal {
		t.Errorf("Expected INTERNAL for 502, got %q", errors.CodeOf(err))
	}
	if errors.StatusOf(err) != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", errors.StatusOf(err))
	}
}

func TestClient_TextBodyOnOKStatusIsFailure(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>login page from proxy</html>"))
	}))
	ctx := context.Background()

	var project struct {
		ID string `json:"id"`
	}
	err := env.client.Get(ctx, "/engineering/projects/p1", nil, &project)
	if errors.CodeOf(err) != errors.ErrCodeRequestFailed {
		t.Fatalf("Expected REQUEST_FAILED for an HTML body, got %v", err)
	}
	if errors.StatusOf(err) != http.StatusOK {
		t.Errorf("Expected status 200 on the error, got %d", errors.StatusOf(err))
	}
	if !strings.Contains(err.Error(), "login page from proxy") {
		t.Errorf("Expected the body text in the message, got %q", err.Error())
	}

	if err := env.client.Delete(ctx, "/masters/units/u1", nil); errors.CodeOf(err) != errors.ErrCodeRequestFailed {
		t.Errorf("Expected REQUEST_FAILED without an output, got %v", err)
	}
}

func TestClient_NoRefreshRequestsSkipRefresh(t *testing.T) {
	var refreshHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshHits, 1)
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "x"}, "")
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "Invalid email or password")
	})
	env := newTestEnv(t, mux)

	err := env.client.Do(context.Background(), &Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      map[string]string{"email": "a@b.c", "password": "x"},
		NoRefresh: true,
	}, nil)

	if err == nil || err.Error() != "Invalid email or password" {
		t.Fatalf("Expected login error message, got %v", err)
	}
	if refreshHits != 0 {
		t.Errorf("Expected no refresh for login, got %d", refreshHits)
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler())
	env.server.Close()

	err := env.client.Get(context.Background(), "/engineering/projects", nil, nil)
	if errors.CodeOf(err) != errors.ErrCodeNetwork {
		t.Errorf("Expected NETWORK error, got %v", err)
	}
}

func TestClient_StoreLogin(t *testing.T) {
	env := newTestEnv(t, http.NotFoundHandler())
	ctx := context.Background()

	token, err := env.client.StoreLogin(ctx, json.RawMessage(`{"accessToken":"a1","refreshToken":"r1"}`))
	if err != nil {
		t.Fatalf("StoreLogin failed: %v", err)
	}
	if token != "a1" || env.holder.Token() != "a1" || env.holder.RefreshToken() != "r1" {
		t.Errorf("Unexpected session after login: token=%q holder=%q refresh=%q", token, env.holder.Token(), env.holder.RefreshToken())
	}

	if _, err := env.client.StoreLogin(ctx, json.RawMessage(`{}`)); err == nil {
		t.Error("Expected login without a token to fail")
	}
}
