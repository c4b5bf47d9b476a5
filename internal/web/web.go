// Package web serves the HTML pages: the module list, the per-vertical
// anchoring forms and the public verification page targeted by certificates.
//
// Fingerprints are computed in the browser; the document never leaves it.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/html"
	"github.com/evidenceledger/veritas/internal/verify"
)

//go:embed views
var viewsfs embed.FS

const layout = "layouts/main"

// Verifier answers verification queries.
type Verifier interface {
	Verify(ctx context.Context, fp fingerprint.Fingerprint) (verify.Result, error)
}

// Pages renders the HTML pages.
type Pages struct {
	cfg      config.Config
	verifier Verifier
	html     *html.Renderer
}

// New creates the pages. When templateDir is set, templates are read from it
// instead of the embedded copy.
func New(cfg config.Config, verifier Verifier, templateDir string) (*Pages, error) {
	views, err := fs.Sub(viewsfs, "views")
	if err != nil {
		return nil, errl.Error(err)
	}
	renderer, err := html.NewRenderer(views, templateDir)
	if err != nil {
		return nil, errl.Errorf("failed to initialize template engine: %w", err)
	}
	return &Pages{cfg: cfg, verifier: verifier, html: renderer}, nil
}

// Register mounts the pages on app.
func (p *Pages) Register(app fiber.Router) {
	app.Get("/", p.Home)
	app.Get("/m/:module", p.Module)
	app.Get("/verify", p.Verify)
}

func (p *Pages) base() fiber.Map {
	return fiber.Map{
		"AppName":   p.cfg.AppName,
		"Mode":      p.cfg.Chain.Mode(),
		"Network":   p.cfg.Chain.NetworkName(),
		"Simulated": p.cfg.Chain.Simulated(),
	}
}

// Home lists the enabled modules.
func (p *Pages) Home(c *fiber.Ctx) error {
	data := p.base()
	data["Modules"] = EnabledModules(p.cfg.Features)
	return p.html.Render(c, fiber.StatusOK, "index", data, layout)
}

// Module renders the anchoring form of one vertical.
func (p *Pages) Module(c *fiber.Ctx) error {
	m, found, enabled := LookupModule(c.Params("module"), p.cfg.Features)
	if !found {
		return p.renderError(c, fiber.StatusNotFound, "Module not found", "There is no module with this name.")
	}
	if !enabled {
		return p.renderError(c, fiber.StatusNotFound, "Module disabled",
			"This module is currently disabled. Please contact the administrator.")
	}

	contract := p.cfg.Chain.ContractAddress
	if contract == "" {
		contract = config.ZeroAddress
	}

	data := p.base()
	data["Module"] = m
	data["Contract"] = strings.ToLower(contract)
	data["Accept"] = strings.Join(fingerprint.AllowedExtensions, ",")
	data["MaxUploadBytes"] = p.cfg.MaxUploadBytes
	data["MaxUploadMiB"] = p.cfg.MaxUploadBytes / (1 << 20)
	data["Anchoring"] = p.cfg.Features.Anchoring
	data["Certificates"] = p.cfg.Features.PDF
	return p.html.Render(c, fiber.StatusOK, "module", data, layout)
}

// Verify renders the public verification page. With a hash query parameter
// it shows the ledger's answer for that fingerprint.
func (p *Pages) Verify(c *fiber.Ctx) error {
	data := p.base()
	data["Accept"] = strings.Join(fingerprint.AllowedExtensions, ",")

	raw := c.Query("hash")
	if raw == "" {
		return p.html.Render(c, fiber.StatusOK, "verify", data, layout)
	}
	data["Hash"] = raw

	fp, err := fingerprint.Parse(raw)
	if err != nil {
		data["Error"] = fingerprint.HashFormatMessage
		return p.html.Render(c, fiber.StatusBadRequest, "verify", data, layout)
	}
	data["Hash"] = fp.String()

	res, err := p.verifier.Verify(c.UserContext(), fp)
	if err != nil {
		kind := apperr.KindOf(err)
		slog.Error("Verification page failed", "hash", fp.Short(10), "kind", kind, "error", errl.Stack(err))
		if kind == apperr.KindConfig {
			data["Error"] = "Verification is unavailable: no ledger is configured on this server."
		} else {
			data["Error"] = "The ledger could not be queried. Please try again later."
		}
		return p.html.Render(c, apperr.HTTPStatus(kind), "verify", data, layout)
	}

	data["Checked"] = true
	data["Exists"] = res.Exists
	if res.Exists {
		data["Author"] = res.Author
		data["AnchoredAt"] = time.Unix(res.Timestamp, 0).UTC().Format("2006-01-02 15:04:05 UTC")
		data["ExplorerURL"] = res.ExplorerURL
	}
	return p.html.Render(c, fiber.StatusOK, "verify", data, layout)
}

func (p *Pages) renderError(c *fiber.Ctx, status int, title, message string) error {
	data := p.base()
	data["Title"] = title
	data["Message"] = message
	return p.html.Render(c, status, "error", data, layout)
}
