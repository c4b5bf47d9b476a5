package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type receiptRequest struct {
	Receipt string `json:"receipt" validate:"required"`
}

// JWKS publishes the key that signs anchor receipts.
func (h *Handlers) JWKS(c *fiber.Ctx) error {
	jwks, err := h.receipts.JWKS()
	if err != nil {
		return h.fail(c, "jwks", err)
	}
	return c.JSON(jwks)
}

// ReceiptKey publishes the same key in PEM format, for tools without JWK support.
func (h *Handlers) ReceiptKey(c *fiber.Ctx) error {
	key, err := h.receipts.PublicKeyPEM()
	if err != nil {
		return h.fail(c, "receipt", err)
	}
	c.Set(fiber.HeaderContentType, "application/x-pem-file")
	return c.SendString(key)
}

// VerifyReceipt checks a receipt issued by this service and returns its claims.
func (h *Handlers) VerifyReceipt(c *fiber.Ctx) error {
	var req receiptRequest
	if err := decodeBody(c, &req); err != nil {
		return h.fail(c, "receipt", err)
	}

	claims, err := h.receipts.Verify(req.Receipt)
	if err != nil {
		return h.fail(c, "receipt", err)
	}

	return c.JSON(fiber.Map{
		"valid":     true,
		"hash":      claims.Hash,
		"txHash":    claims.TxHash,
		"author":    claims.Author,
		"timestamp": claims.Timestamp,
		"network":   claims.Network,
		"simulated": claims.Simulated,
		"fileName":  claims.FileName,
		"issuedAt":  claims.IssuedAt.Unix(),
		"expiresAt": claims.ExpiresAt.Unix(),
	})
}
