package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
)

// Digest fingerprints an uploaded document, for clients that cannot hash
// locally. The document is hashed as it streams and is not kept.
func (h *Handlers) Digest(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, "digest", apperr.Validation("invalid request", "file is required"))
	}
	if fh.Size > h.cfg.MaxUploadBytes {
		return h.fail(c, "digest", apperr.Validation("file too large",
			fmt.Sprintf("maximum size is %d bytes", h.cfg.MaxUploadBytes)))
	}
	if err := fingerprint.CheckDocument(fh.Filename, fh.Header.Get(fiber.HeaderContentType)); err != nil {
		return h.fail(c, "digest", err)
	}

	f, err := fh.Open()
	if err != nil {
		return h.fail(c, "digest", errl.Errorf("opening upload: %w", err))
	}
	defer f.Close()

	fp, err := fingerprint.FromReader(f)
	if err != nil {
		return h.fail(c, "digest", err)
	}
	cid, err := fingerprint.CID(fp)
	if err != nil {
		return h.fail(c, "digest", err)
	}

	slog.Debug("Document fingerprinted", "hash", fp.Short(10), "size", fh.Size)

	return c.JSON(fiber.Map{
		"hash":     fp.String(),
		"cid":      cid,
		"fileName": fh.Filename,
		"size":     fh.Size,
	})
}
