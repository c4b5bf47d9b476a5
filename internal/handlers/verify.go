package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/fingerprint"
)

type verifyRequest struct {
	Hash string `json:"hash" validate:"required,hash32"`
}

// Verify reports whether a fingerprint is attested. No wallet is needed.
func (h *Handlers) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := decodeBody(c, &req); err != nil {
		return h.fail(c, "verify", err)
	}
	fp, err := fingerprint.Parse(req.Hash)
	if err != nil {
		return h.fail(c, "verify", err)
	}

	res, err := h.verify.Verify(c.UserContext(), fp)
	if err != nil {
		return h.fail(c, "verify", err)
	}

	slog.Info("Verification", "hash", fp.Short(10), "exists", res.Exists)

	if !res.Exists {
		return c.JSON(fiber.Map{"exists": false})
	}
	return c.JSON(fiber.Map{
		"exists":      true,
		"author":      res.Author,
		"timestamp":   res.Timestamp,
		"explorerUrl": res.ExplorerURL,
	})
}
