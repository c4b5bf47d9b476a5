package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/certificate"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/fingerprint"
)

// Health reports the service status and anchoring mode.
func (h *Handlers) Health(c *fiber.Ctx) error {
	database := "disabled"
	if h.db != nil {
		database = "ok"
		if err := h.db.Ping(); err != nil {
			slog.Error("Database ping failed", "error", err)
			database = "error"
		}
	}

	return c.JSON(fiber.Map{
		"status":   "healthy",
		"mode":     h.cfg.Chain.Mode(),
		"network":  h.cfg.Chain.NetworkName(),
		"database": database,
		"features": h.cfg.Features,
	})
}

// HealthPDF renders a throwaway certificate to prove the PDF and QR stack work.
func (h *Handlers) HealthPDF(c *fiber.Ctx) error {
	cert, err := h.certificates.Generate(certificate.Input{
		Hash:            fingerprint.FromBytes([]byte("health check")).String(),
		TxHash:          string(fingerprint.Zero),
		Network:         h.cfg.Chain.NetworkName(),
		ContractAddress: config.ZeroAddress,
		VerifyBaseURL:   c.BaseURL(),
	})
	if err != nil {
		return h.fail(c, "health", err)
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"bytes":  len(cert.PDF),
		"qr":     h.cfg.Features.QR,
	})
}
