// Package handlers exposes the anchoring protocols over HTTP.
//
// Every handler follows the same steps: decode and validate the body, make at
// most one call to a protocol client, and map the outcome to a response.
// Invalid requests never reach a protocol client.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/anchor"
	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/certificate"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/database"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/ledger"
	"github.com/evidenceledger/veritas/internal/receipt"
	"github.com/evidenceledger/veritas/internal/validation"
	"github.com/evidenceledger/veritas/internal/verify"
)

// Deps are the collaborators of the handlers. Wallets, Receipts and DB may be
// nil: anchoring then requires simulated mode, no receipts are issued and
// nothing is recorded.
type Deps struct {
	Config       config.Config
	Anchor       *anchor.Client
	Wallets      ledger.WalletOpener
	Verify       *verify.Client
	Certificates *certificate.Generator
	Receipts     *receipt.Service
	DB           *database.Database
}

// Handlers serves the API.
type Handlers struct {
	cfg          config.Config
	anchor       *anchor.Client
	wallets      ledger.WalletOpener
	verify       *verify.Client
	certificates *certificate.Generator
	receipts     *receipt.Service
	db           *database.Database
}

// New creates the handlers.
func New(d Deps) *Handlers {
	return &Handlers{
		cfg:          d.Config,
		anchor:       d.Anchor,
		wallets:      d.Wallets,
		verify:       d.Verify,
		certificates: d.Certificates,
		receipts:     d.Receipts,
		db:           d.DB,
	}
}

// decodeBody decodes a JSON object into dst, rejecting unknown fields and
// trailing data, then validates it.
func decodeBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return apperr.Validation("invalid request", "request body must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid request", "malformed JSON body: "+err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.Validation("invalid request", "request body must contain a single JSON object")
	}

	return validation.Struct(dst)
}

// fail writes the error response for err.
//
// The body is {"error", "code", "details"}; the raw cause is only added as
// "debug" in development mode. Configuration errors are logged in full and
// returned as a generic message.
func (h *Handlers) fail(c *fiber.Ctx, op string, err error) error {
	e, ok := apperr.As(err)
	if !ok {
		e = &apperr.Error{Kind: apperr.KindInternal, Message: "internal error", Cause: err}
	}
	status := apperr.HTTPStatus(e.Kind)

	switch e.Kind {
	case apperr.KindValidation:
		slog.Debug("Rejected request", "op", op, "details", e.Details)
	case apperr.KindCancelled, apperr.KindAlreadyAnchored:
		slog.Info("Operation refused", "op", op, "code", e.Kind)
	case apperr.KindConfig, apperr.KindInternal:
		slog.Error("Operation failed", "op", op, "code", e.Kind, "error", errl.Stack(err))
	default:
		slog.Warn("Operation failed", "op", op, "code", e.Kind, "error", err)
	}

	body := fiber.Map{
		"error": e.Message,
		"code":  string(e.Kind),
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	if h.cfg.Development && e.Cause != nil {
		body["debug"] = e.Cause.Error()
	}
	return c.Status(status).JSON(body)
}
