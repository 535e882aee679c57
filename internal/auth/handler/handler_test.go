package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/middleware"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/oracle"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/ratelimit"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/session"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/token"
)

func newTestRouter(t *testing.T) (*gin.Engine, *token.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec := token.NewCodec("test-secret")
	resolver := session.NewResolver(codec)
	gate := middleware.NewGate(resolver)

	store := ratelimit.NewMemoryStore()
	t.Cleanup(store.Close)
	limiter := ratelimit.NewLimiter(store)
	t.Cleanup(limiter.Close)

	h := NewHandler(
		codec,
		resolver,
		gate,
		nil, // credential service unused in these tests
		limiter,
		oracle.Static{Text: "The code endures."},
		false,
	)

	router := gin.New()
	h.RegisterRoutes(router)
	return router, codec
}

func doJSON(router *gin.Engine, method, path, body string, cookie *http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func cookieFor(t *testing.T, codec *token.Codec, role auth.Role) *http.Cookie {
	t.Helper()
	raw, err := codec.Issue(auth.Identity{ID: "u-1", Email: "a@b.c", Role: role})
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: raw}
}

func TestMeAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/me", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var body struct {
		User *json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User != nil && string(*body.User) != "null" {
		t.Fatalf("expected null user, got %s", *body.User)
	}
}

func TestMeAuthenticated(t *testing.T) {
	router, codec := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/me", "", cookieFor(t, codec, auth.RoleUser), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var body struct {
		User struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.ID != "u-1" || body.User.Role != "USER" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestOracleRateLimited(t *testing.T) {
	router, _ := newTestRouter(t)

	headers := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	for i := 0; i < 30; i++ {
		rec := doJSON(router, http.MethodPost, "/api/oracle", `{"message":"speak"}`, nil, headers)
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status got %d, want 200 (%s)", i+1, rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(router, http.MethodPost, "/api/oracle", `{"message":"speak"}`, nil, headers)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("call 31: status got %d, want 429", rec.Code)
	}

	// A different client key still has quota.
	other := map[string]string{"X-Forwarded-For": "198.51.100.9"}
	rec = doJSON(router, http.MethodPost, "/api/oracle", `{"message":"speak"}`, nil, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client: status got %d, want 200", rec.Code)
	}
}

func TestOracleLimitDiagnosticDoesNotConsume(t *testing.T) {
	router, _ := newTestRouter(t)

	headers := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	for i := 0; i < 5; i++ {
		doJSON(router, http.MethodGet, "/api/oracle/limit", "", nil, headers)
	}

	rec := doJSON(router, http.MethodGet, "/api/oracle/limit", "", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var body struct {
		Allowed   bool `json:"allowed"`
		Remaining int  `json:"remaining"`
		Limit     int  `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Allowed || body.Remaining != 30 || body.Limit != 30 {
		t.Fatalf("diagnostic consumed quota: %+v", body)
	}
}

func TestClearLimitRequiresAdmin(t *testing.T) {
	router, codec := newTestRouter(t)

	// Anonymous: 401.
	rec := doJSON(router, http.MethodPost, "/admin/api/ratelimit/clear", `{"ip":"203.0.113.7"}`, nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status got %d, want 401", rec.Code)
	}

	// Authenticated non-admin: 403.
	rec = doJSON(router, http.MethodPost, "/admin/api/ratelimit/clear", `{"ip":"203.0.113.7"}`, cookieFor(t, codec, auth.RoleUser), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: status got %d, want 403", rec.Code)
	}

	// Admin: 200.
	rec = doJSON(router, http.MethodPost, "/admin/api/ratelimit/clear", `{"ip":"203.0.113.7"}`, cookieFor(t, codec, auth.RoleAdmin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
}

func TestClearLimitUnblocksClient(t *testing.T) {
	router, codec := newTestRouter(t)

	headers := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	for i := 0; i < 31; i++ {
		doJSON(router, http.MethodPost, "/api/oracle", `{"message":"speak"}`, nil, headers)
	}
	rec := doJSON(router, http.MethodPost, "/api/oracle", `{"message":"speak"}`, nil, headers)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before clear, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/admin/api/ratelimit/clear", `{"ip":"203.0.113.7"}`, cookieFor(t, codec, auth.RoleAdmin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: status got %d, want 200", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/api/oracle", `{"message":"speak"}`, nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after clear, got %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router, codec := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/logout", "", cookieFor(t, codec, auth.RoleUser), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName || cookies[0].MaxAge != -1 {
		t.Fatalf("expected clearing cookie, got %+v", cookies)
	}
}
