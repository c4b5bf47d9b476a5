package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/ledger/ledgertest"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DatabasePath = ":memory:"
	cfg.PublicURL = "https://veritas.example"
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	srv, err := New(cfg, Options{Dialer: ledgertest.NewMemory()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func send(t *testing.T, srv *Server, req *http.Request) (int, string) {
	t.Helper()
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/.well-known/jwks.json", "", http.StatusOK},
		{"GET", "/.well-known/receipt-key.pem", "", http.StatusOK},
		{"GET", "/", "", http.StatusOK},
		{"GET", "/m/legal", "", http.StatusOK},
		{"GET", "/verify", "", http.StatusOK},
		{"POST", "/api/anchor", `{"hash":"0x1234","fileName":"a.pdf"}`, http.StatusBadRequest},
		{"POST", "/api/verify", `{"hash":"0x1234"}`, http.StatusBadRequest},
		{"GET", "/api/certificates", "", http.StatusOK},
		{"GET", "/api/health/pdf", "", http.StatusOK},
		{"GET", "/admin/anchors", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		var body io.Reader
		if tt.body != "" {
			body = strings.NewReader(tt.body)
		}
		status, raw := send(t, srv, httptest.NewRequest(tt.method, tt.path, body))
		if status != tt.status {
			t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, status, tt.status, raw)
		}
	}
}

func TestFeatureFlagsUnmountRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.Features.Anchoring = false
	cfg.Features.PDF = false
	srv := newTestServer(t, cfg)

	for _, path := range []string{"/api/anchor", "/api/certificates"} {
		status, _ := send(t, srv, httptest.NewRequest("POST", path, strings.NewReader(`{}`)))
		if status != http.StatusNotFound {
			t.Errorf("POST %s = %d, want 404", path, status)
		}
	}
}

func TestAdminRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = "s3cret"
	srv := newTestServer(t, cfg)

	status, _ := send(t, srv, httptest.NewRequest("GET", "/admin/anchors", nil))
	if status != http.StatusUnauthorized {
		t.Errorf("without credentials = %d, want 401", status)
	}

	req := httptest.NewRequest("GET", "/admin/anchors", nil)
	req.SetBasicAuth("admin", "wrong")
	if status, _ := send(t, srv, req); status != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", status)
	}

	send(t, srv, httptest.NewRequest("POST", "/api/anchor",
		strings.NewReader(`{"hash":"0x`+strings.Repeat("cd", 32)+`","fileName":"a.pdf"}`)))

	req = httptest.NewRequest("GET", "/admin/anchors", nil)
	req.SetBasicAuth("admin", "s3cret")
	status, body := send(t, srv, req)
	if status != http.StatusOK || !strings.Contains(body, strings.Repeat("cd", 32)) {
		t.Errorf("admin anchors = %d %s", status, body)
	}

	req = httptest.NewRequest("GET", "/admin/anchors/0x"+strings.Repeat("cd", 32), nil)
	req.SetBasicAuth("admin", "s3cret")
	if status, body := send(t, srv, req); status != http.StatusOK || !strings.Contains(body, `"fileName":"a.pdf"`) {
		t.Errorf("admin anchor = %d %s", status, body)
	}

	if status, _ := send(t, srv, httptest.NewRequest("GET", "/admin/anchors/0x"+strings.Repeat("cd", 32), nil)); status != http.StatusUnauthorized {
		t.Errorf("single anchor without credentials = %d, want 401", status)
	}
}

func TestCertificateLinksFollowRequestOrigin(t *testing.T) {
	cfg, err := config.Load("", func(string) string { return "" })
	if err != nil {
		t.Fatal(err)
	}
	cfg.DatabasePath = ":memory:"
	srv := newTestServer(t, cfg)

	hash := "0x" + strings.Repeat("ef", 32)
	req := httptest.NewRequest("POST", "http://anchors.example.net/api/certificates", strings.NewReader(
		`{"hash":"`+hash+`","txHash":"0x`+strings.Repeat("12", 32)+`","network":"sepolia","contractAddress":"0x7b7c41cf5bc986f406c7067de6e69f200c27d63f"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if u := resp.Header.Get("X-Verify-URL"); u != "http://anchors.example.net/verify?hash="+hash {
		t.Errorf("X-Verify-URL = %s", u)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Max = 2
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		status, _ := send(t, srv, httptest.NewRequest("POST", "/api/verify", strings.NewReader(`{"hash":"0x12"}`)))
		if status != http.StatusBadRequest {
			t.Fatalf("request %d = %d, want 400", i, status)
		}
	}

	status, body := send(t, srv, httptest.NewRequest("POST", "/api/verify", strings.NewReader(`{"hash":"0x12"}`)))
	if status != http.StatusTooManyRequests || !strings.Contains(body, "rate_limited") {
		t.Errorf("third request = %d %s, want 429 rate_limited", status, body)
	}

	if status, _ := send(t, srv, httptest.NewRequest("GET", "/health", nil)); status != http.StatusOK {
		t.Errorf("health is rate limited: %d", status)
	}
}

func TestNewRejectsBadContract(t *testing.T) {
	cfg := testConfig()
	cfg.Chain.RPCURL = "http://node.invalid"
	cfg.Chain.ContractAddress = "0x1234"

	if _, err := New(cfg, Options{Dialer: ledgertest.NewMemory()}); err == nil {
		t.Fatal("New() accepted an invalid contract address")
	}
}
