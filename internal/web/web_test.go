package web

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/verify"
)

type stubVerifier struct {
	res   verify.Result
	err   error
	calls int
}

func (s *stubVerifier) Verify(ctx context.Context, fp fingerprint.Fingerprint) (verify.Result, error) {
	s.calls++
	return s.res, s.err
}

func newTestApp(t *testing.T, cfg config.Config, v Verifier) *fiber.App {
	t.Helper()
	pages, err := New(cfg, v, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	app := fiber.New()
	pages.Register(app)
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 500 && resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Errorf("GET %s: missing security headers", path)
	}
	return resp.StatusCode, string(body)
}

func TestHomeListsEnabledModules(t *testing.T) {
	cfg := config.Default()
	cfg.Features.Legal = false

	status, body := get(t, newTestApp(t, cfg, &stubVerifier{}), "/")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, slug := range []string{"payroll", "accounting", "construction"} {
		if !strings.Contains(body, `href="/m/`+slug+`"`) {
			t.Errorf("home page does not link module %s", slug)
		}
	}
	if strings.Contains(body, `href="/m/legal"`) {
		t.Errorf("home page links a disabled module")
	}
	if !strings.Contains(body, "simulated") {
		t.Errorf("home page does not warn about simulated mode")
	}
}

func TestModulePage(t *testing.T) {
	cfg := config.Default()
	cfg.Features.Construction = false
	app := newTestApp(t, cfg, &stubVerifier{})

	status, body := get(t, app, "/m/payroll")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, config.ZeroAddress) {
		t.Errorf("module page does not show the placeholder contract")
	}

	tests := []struct {
		path string
		want string
	}{
		{"/m/unknown", "Module not found"},
		{"/m/construction", "Module disabled"},
	}
	for _, tt := range tests {
		status, body := get(t, app, tt.path)
		if status != fiber.StatusNotFound || !strings.Contains(body, tt.want) {
			t.Errorf("GET %s = %d, want 404 %q", tt.path, status, tt.want)
		}
	}
}

func TestVerifyPage(t *testing.T) {
	hash := fingerprint.FromBytes([]byte("deed")).String()
	author := "0x3333333333333333333333333333333333333333"

	tests := []struct {
		name     string
		query    string
		verifier *stubVerifier
		status   int
		want     string
		calls    int
	}{
		{
			name:     "form only",
			verifier: &stubVerifier{},
			status:   fiber.StatusOK,
			want:     "Verify a document",
		},
		{
			name:     "malformed hash",
			query:    "?hash=0x1234",
			verifier: &stubVerifier{},
			status:   fiber.StatusBadRequest,
			want:     "invalid hash format",
		},
		{
			name:     "anchored",
			query:    "?hash=" + hash,
			verifier: &stubVerifier{res: verify.Result{Exists: true, Author: author, Timestamp: 1700000000}},
			status:   fiber.StatusOK,
			want:     "2023-11-14 22:13:20 UTC",
			calls:    1,
		},
		{
			name:     "not anchored",
			query:    "?hash=" + hash,
			verifier: &stubVerifier{},
			status:   fiber.StatusOK,
			want:     "Not found",
			calls:    1,
		},
		{
			name:     "no ledger",
			query:    "?hash=" + hash,
			verifier: &stubVerifier{err: apperr.New(apperr.KindConfig, "server misconfigured")},
			status:   fiber.StatusInternalServerError,
			want:     "no ledger is configured",
			calls:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, newTestApp(t, config.Default(), tt.verifier), "/verify"+tt.query)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
			if tt.verifier.calls != tt.calls {
				t.Errorf("verifier calls = %d, want %d", tt.verifier.calls, tt.calls)
			}
		})
	}
}

func TestLookupModule(t *testing.T) {
	f := config.Default().Features
	f.Accounting = false

	if _, found, enabled := LookupModule("payroll", f); !found || !enabled {
		t.Errorf("payroll: found=%v enabled=%v", found, enabled)
	}
	if _, found, enabled := LookupModule("accounting", f); !found || enabled {
		t.Errorf("accounting: found=%v enabled=%v", found, enabled)
	}
	if _, found, _ := LookupModule("mining", f); found {
		t.Errorf("mining found")
	}
	if got := len(EnabledModules(f)); got != 3 {
		t.Errorf("EnabledModules() = %d, want 3", got)
	}
}
