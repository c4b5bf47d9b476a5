package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/fingerprint"
)

const maxListLimit = 1000

func listLimit(c *fiber.Ctx) int {
	n := c.QueryInt("limit", 100)
	if n <= 0 || n > maxListLimit {
		return maxListLimit
	}
	return n
}

// ListAnchors lists the recorded anchors, newest first
func (h *Handlers) ListAnchors(c *fiber.Ctx) error {
	records, err := h.db.ListAnchors(listLimit(c))
	if err != nil {
		return h.fail(c, "admin", apperr.Wrap(apperr.KindInternal, "internal error", err))
	}
	return c.JSON(records)
}

// GetAnchor returns the recorded anchor of one fingerprint
func (h *Handlers) GetAnchor(c *fiber.Ctx) error {
	fp, err := fingerprint.Parse(c.Params("hash"))
	if err != nil {
		return h.fail(c, "admin", err)
	}

	record, err := h.db.GetAnchor(fp.String())
	if err != nil {
		return h.fail(c, "admin", apperr.Wrap(apperr.KindInternal, "internal error", err))
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no anchor recorded for this fingerprint",
			"code":  "not_found",
		})
	}
	return c.JSON(record)
}

// ListCertificates lists the generated certificates, optionally for one hash
func (h *Handlers) ListCertificates(c *fiber.Ctx) error {
	hash := c.Query("hash")
	if hash != "" {
		fp, err := fingerprint.Parse(hash)
		if err != nil {
			return h.fail(c, "admin", err)
		}
		hash = fp.String()
	}

	records, err := h.db.ListCertificates(hash, listLimit(c))
	if err != nil {
		return h.fail(c, "admin", apperr.Wrap(apperr.KindInternal, "internal error", err))
	}
	return c.JSON(records)
}
