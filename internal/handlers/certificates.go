package handlers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/certificate"
	"github.com/evidenceledger/veritas/internal/models"
)

// CreateCertificate renders the PDF certificate of an anchored fingerprint.
func (h *Handlers) CreateCertificate(c *fiber.Ctx) error {
	var in certificate.Input
	if err := decodeBody(c, &in); err != nil {
		return h.fail(c, "certificate", err)
	}
	// Without a configured public URL, links point back at the origin of the request
	if in.VerifyBaseURL == "" && h.cfg.PublicURL == "" {
		in.VerifyBaseURL = c.BaseURL()
	}

	cert, err := h.certificates.Generate(in)
	if err != nil {
		return h.fail(c, "certificate", err)
	}

	slog.Info("Certificate generated", "id", cert.ID, "serial", cert.Serial, "bytes", len(cert.PDF))

	if h.db != nil {
		err := h.db.RecordCertificate(&models.CertificateRecord{
			ID:       cert.ID,
			Serial:   cert.Serial,
			Hash:     strings.ToLower(strings.TrimSpace(in.Hash)),
			TxHash:   strings.ToLower(strings.TrimSpace(in.TxHash)),
			Network:  in.Network,
			Filename: cert.Filename,
		})
		if err != nil {
			slog.Error("Failed to record certificate", "id", cert.ID, "error", err)
		}
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, cert.Filename))
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set("X-Certificate-ID", cert.ID)
	c.Set("X-Certificate-Serial", cert.Serial)
	c.Set("X-Generated-At", cert.GeneratedAt.Format(time.RFC3339))
	c.Set("X-Verify-URL", cert.VerifyURL)
	return c.Send(cert.PDF)
}

// CertificateInfo describes the certificate endpoint.
func (h *Handlers) CertificateInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"endpoint":    "/api/certificates",
		"method":      "POST",
		"description": "Generates a PDF certificate for a document fingerprint anchored on the ledger",
		"required":    []string{"hash", "txHash", "network", "contractAddress"},
		"optional":    []string{"issuerAddress", "issuedTo", "issuedAt", "appName", "verifyBaseUrl"},
		"response":    "application/pdf",
		"headers":     []string{"X-Certificate-ID", "X-Certificate-Serial", "X-Generated-At", "X-Verify-URL"},
		"qrCode":      h.cfg.Features.QR,
	})
}
