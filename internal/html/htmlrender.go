package html

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"github.com/evidenceledger/veritas/internal/errl"
)

// Extension is the file extension of the templates.
const Extension = ".html"

// Renderer renders the page templates.
type Renderer struct {
	engine *html.Engine
}

// NewRenderer creates a new HTML renderer.
// Templates are loaded from views, usually an embedded filesystem. When extDir
// is not empty they are loaded from that directory instead and reloaded on
// every render, so pages can be edited while the server runs.
func NewRenderer(views fs.FS, extDir string) (*Renderer, error) {
	var engine *html.Engine
	if extDir != "" {
		engine = html.NewFileSystem(http.Dir(extDir), Extension)
		engine.Reload(true)
	} else {
		engine = html.NewFileSystem(http.FS(views), Extension)
	}

	if err := engine.Load(); err != nil {
		return nil, errl.Error(err)
	}

	return &Renderer{engine: engine}, nil
}

// ResponseSecurityHeaders sets the security headers of every HTML response.
func ResponseSecurityHeaders(c *fiber.Ctx) {
	c.Set("Content-Security-Policy", "frame-ancestors 'none';")
	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	c.Set("Cross-Origin-Opener-Policy", "same-origin")
	c.Set("Cross-Origin-Resource-Policy", "same-site")
	c.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=(), interest-cohort=()")
	c.Set("X-Powered-By", "webserver")
}

// Render writes the template with the given status.
func (h *Renderer) Render(c *fiber.Ctx, status int, templateName string, data fiber.Map, layout ...string) error {
	out := &bytes.Buffer{}

	if err := h.engine.Render(out, templateName, data, layout...); err != nil {
		slog.Error("Error rendering template",
			slog.String("template", templateName),
			slog.String("error", err.Error()),
		)
		return fiber.NewError(fiber.StatusInternalServerError, "rendering response")
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	ResponseSecurityHeaders(c)
	return c.Status(status).Send(out.Bytes())
}
