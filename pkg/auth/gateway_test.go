package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testCfg() SecConfig {
	return SecConfig{
		RPS:         100,
		Burst:       100,
		BackendKeys: map[string]struct{}{"backend-key": {}},
		AdminKeys:   map[string]struct{}{"admin-key": {}},
	}
}

func wrapped(cfg SecConfig) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthenticateRequestMiddleware(cfg)(ok)
}

func TestMissingKeyRejected(t *testing.T) {
	h := wrapped(testCfg())
	req := httptest.NewRequest(http.MethodPost, "/v1/hunt/users/u/guesses", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestBackendKeyAccepted(t *testing.T) {
	h := wrapped(testCfg())

	req := httptest.NewRequest(http.MethodPost, "/v1/hunt/users/u/guesses", nil)
	req.Header.Set("Authorization", "Bearer backend-key")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("bearer backend key: expected 200, got %d", rr.Code)
	}
	if got := req.Header.Get(RoleHeader); got != "backend" {
		t.Fatalf("role header: expected backend, got %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/hunt/users/u/guesses", nil)
	req.Header.Set("X-API-Key", "backend-key")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("x-api-key backend key: expected 200, got %d", rr.Code)
	}
}

func TestAdminPathNeedsAdminKey(t *testing.T) {
	h := wrapped(testCfg())

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/hunt/stats", nil)
	req.Header.Set("X-API-Key", "backend-key")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("backend key on admin path: expected 403, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/hunt/stats", nil)
	req.Header.Set("X-API-Key", "admin-key")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin key on admin path: expected 200, got %d", rr.Code)
	}
}

func TestHealthEndpointsPassthrough(t *testing.T) {
	h := wrapped(testCfg())
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s without key: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestIPWhitelist(t *testing.T) {
	cfg := testCfg()
	cfg.IPWhitelist = []string{"10.0.0.1"}
	h := wrapped(cfg)

	req := httptest.NewRequest(http.MethodPost, "/v1/hunt/users/u/guesses", nil)
	req.RemoteAddr = "10.0.0.2:4444"
	req.Header.Set("X-API-Key", "backend-key")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-whitelisted ip: expected 403, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/hunt/users/u/guesses", nil)
	req.RemoteAddr = "10.0.0.1:4444"
	req.Header.Set("X-API-Key", "backend-key")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("whitelisted ip: expected 200, got %d", rr.Code)
	}
}

func TestRateLimitByKey(t *testing.T) {
	cfg := testCfg()
	cfg.RPS = 1
	cfg.Burst = 2
	h := wrapped(cfg)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/hunt/users/u/guesses", nil)
		req.Header.Set("X-API-Key", "backend-key")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	limited := 0
	for _, c := range codes {
		if c == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Fatalf("expected rate limiting after burst, codes: %v", codes)
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := testCfg()
	cfg.AllowedOrigins = []string{"https://hunt.example.com"}
	h := wrapped(cfg)

	req := httptest.NewRequest(http.MethodOptions, "/v1/hunt/users/u/guesses", nil)
	req.Header.Set("Origin", "https://hunt.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://hunt.example.com" {
		t.Fatalf("allow-origin: got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/v1/hunt/users/u/guesses", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin must get no allow-origin header, got %q", got)
	}
}
