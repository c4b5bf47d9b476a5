// Package server wires the protocol clients, the record store and the pages
// into one Fiber application.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/evidenceledger/veritas/internal/anchor"
	"github.com/evidenceledger/veritas/internal/cache"
	"github.com/evidenceledger/veritas/internal/certificate"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/database"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/handlers"
	"github.com/evidenceledger/veritas/internal/ledger"
	"github.com/evidenceledger/veritas/internal/middleware"
	"github.com/evidenceledger/veritas/internal/receipt"
	"github.com/evidenceledger/veritas/internal/verify"
	"github.com/evidenceledger/veritas/internal/web"
)

// verifyMemoTTL is how long a positive verification is served from memory.
const verifyMemoTTL = 10 * time.Minute

// Options replaces the ledger access built from the configuration.
type Options struct {
	// Dialer defaults to a JSON-RPC dialer when a chain is configured.
	Dialer ledger.Dialer

	// Wallets defaults to a key wallet when a signing key is configured.
	Wallets ledger.WalletOpener
}

// Server is the Veritas HTTP service
type Server struct {
	cfg      config.Config
	app      *fiber.App
	db       *database.Database
	handlers *handlers.Handlers
	pages    *web.Pages
	admin    *middleware.AdminAuth
}

// New creates the server. The record store, when configured, is opened here.
func New(cfg config.Config, opts Options) (*Server, error) {
	dialer := opts.Dialer
	if dialer == nil && cfg.Chain.ChainEnabled() {
		dialer = ledger.NewEthereumDialer(cfg.Chain)
	}
	wallets := opts.Wallets
	if wallets == nil && cfg.Chain.PrivateKey != "" {
		wallets = ledger.NewKeyWalletOpener(cfg.Chain)
	}

	anchorClient, err := anchor.New(dialer, cfg.Chain)
	if err != nil {
		return nil, errl.Errorf("failed to create anchor client: %w", err)
	}
	if !anchorClient.Simulated() && wallets == nil {
		slog.Warn("No signing key configured, anchor requests will fail")
	}

	verifyClient := verify.New(dialer, cfg.Chain, cache.New[verify.Result](verifyMemoTTL))

	generator := certificate.New(certificate.Options{
		AppName:       cfg.AppName,
		VerifyBaseURL: cfg.PublicURL,
		QR:            cfg.Features.QR,
	})

	issuer := cfg.PublicURL
	if issuer == "" {
		issuer = cfg.AppName
	}
	receipts, err := receipt.NewService(issuer)
	if err != nil {
		return nil, errl.Errorf("failed to create receipt service: %w", err)
	}

	var db *database.Database
	if cfg.DatabasePath != "" {
		db = database.New(cfg.DatabasePath)
		if err := db.Initialize(); err != nil {
			return nil, errl.Errorf("failed to initialize database: %w", err)
		}
	}

	pages, err := web.New(cfg, verifyClient, cfg.TemplateDir)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		db:  db,
		handlers: handlers.New(handlers.Deps{
			Config:       cfg,
			Anchor:       anchorClient,
			Wallets:      wallets,
			Verify:       verifyClient,
			Certificates: generator,
			Receipts:     receipts,
			DB:           db,
		}),
		pages: pages,
	}

	if cfg.AdminPassword != "" {
		s.admin, err = middleware.NewAdminAuth(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
	}

	s.app = fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Chain.ConfirmTimeout + 30*time.Second,
		BodyLimit:    int(cfg.MaxUploadBytes) + 1<<20,
	})

	s.app.Use(recover.New())
	s.app.Use(logger.New())
	s.app.Use(cors.New())

	s.setupRoutes()
	return s, nil
}

// setupRoutes sets up all the server routes
func (s *Server) setupRoutes() {
	h := s.handlers

	s.app.Get("/health", h.Health)
	s.app.Get("/.well-known/jwks.json", h.JWKS)
	s.app.Get("/.well-known/receipt-key.pem", h.ReceiptKey)

	s.pages.Register(s.app)

	api := s.app.Group("/api")
	if s.cfg.RateLimit.Max > 0 {
		api.Use(s.rateLimiter())
	}

	if s.cfg.Features.Anchoring {
		api.Post("/anchor", h.Anchor)
	}
	api.Post("/verify", h.Verify)
	api.Post("/digest", h.Digest)
	api.Post("/receipts/verify", h.VerifyReceipt)

	if s.cfg.Features.PDF {
		api.Get("/certificates", h.CertificateInfo)
		api.Post("/certificates", h.CreateCertificate)
		api.Get("/health/pdf", h.HealthPDF)
	}

	// Admin routes (protected), only with a password and a record store
	if s.admin != nil && s.db != nil {
		admin := s.app.Group("/admin")
		admin.Use(s.admin.AuthMiddleware())

		admin.Get("/anchors", h.ListAnchors)
		admin.Get("/anchors/:hash", h.GetAnchor)
		admin.Get("/certificates", h.ListCertificates)
	}
}

func (s *Server) rateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        s.cfg.RateLimit.Max,
		Expiration: s.cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			slog.Warn("Rate limit reached", "ip", c.IP(), "path", c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
				"code":  "rate_limited",
			})
		},
	})
}

// App returns the Fiber application, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()
	slog.Info("Starting Veritas server",
		"addr", addr,
		"public_url", s.cfg.PublicURL,
		"mode", s.cfg.Chain.Mode(),
		"network", s.cfg.Chain.NetworkName(),
		"admin", s.admin != nil && s.db != nil,
	)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(addr); err != nil {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case err := <-errChan:
		s.Close()
		return err
	case <-ctx.Done():
		slog.Info("Shutting down server")
		err := s.app.Shutdown()
		s.Close()
		return err
	}
}

// Close releases the record store.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
