package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/veritas/internal/anchor"
	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/ledger"
	"github.com/evidenceledger/veritas/internal/models"
	"github.com/evidenceledger/veritas/internal/receipt"
)

// ReceiptHeader carries the signed receipt of a successful anchor.
const ReceiptHeader = "X-Anchor-Receipt"

type anchorRequest struct {
	Hash     string `json:"hash" validate:"required,hash32"`
	FileName string `json:"fileName" validate:"required,min=1,max=255"`
}

// Anchor registers a fingerprint on the ledger with the server's account.
// In simulated mode the response carries "X-Mode: mock".
func (h *Handlers) Anchor(c *fiber.Ctx) error {
	var req anchorRequest
	if err := decodeBody(c, &req); err != nil {
		return h.fail(c, "anchor", err)
	}
	fp, err := fingerprint.Parse(req.Hash)
	if err != nil {
		return h.fail(c, "anchor", err)
	}

	slog.Info("Anchor requested", "hash", fp.Short(10), "file", req.FileName)

	var wallet ledger.Wallet
	if !h.anchor.Simulated() {
		if h.wallets == nil {
			return h.fail(c, "anchor", apperr.Wrap(apperr.KindConfig, "server misconfigured",
				errl.Errorf("no signing wallet configured")))
		}
		w, release, err := h.wallets.OpenWallet(c.UserContext())
		if err != nil {
			return h.fail(c, "anchor", err)
		}
		defer release()
		wallet = w
	}

	res, err := h.anchor.Anchor(c.UserContext(), fp, wallet)
	if err != nil {
		return h.fail(c, "anchor", err)
	}

	h.recordAnchor(fp, req.FileName, res)
	h.attachReceipt(c, fp, req.FileName, res)

	if res.Simulated {
		c.Set("X-Mode", "mock")
	}
	return c.JSON(fiber.Map{
		"txHash":    res.TxHash,
		"author":    res.Author,
		"timestamp": res.Timestamp,
	})
}

func (h *Handlers) recordAnchor(fp fingerprint.Fingerprint, fileName string, res anchor.Result) {
	if h.db == nil {
		return
	}
	err := h.db.RecordAnchor(&models.AnchorRecord{
		Hash:       fp.String(),
		FileName:   fileName,
		TxHash:     res.TxHash,
		Author:     res.Author,
		AnchoredAt: res.Timestamp,
		Network:    res.Network,
		Simulated:  res.Simulated,
	})
	if err != nil {
		slog.Error("Failed to record anchor", "hash", fp.Short(10), "error", err)
	}
}

func (h *Handlers) attachReceipt(c *fiber.Ctx, fp fingerprint.Fingerprint, fileName string, res anchor.Result) {
	if h.receipts == nil {
		return
	}
	token, err := h.receipts.Issue(receipt.Claims{
		Hash:      fp.String(),
		TxHash:    res.TxHash,
		Author:    res.Author,
		Timestamp: res.Timestamp,
		Network:   res.Network,
		Simulated: res.Simulated,
		FileName:  fileName,
	})
	if err != nil {
		slog.Error("Failed to issue receipt", "hash", fp.Short(10), "error", err)
		return
	}
	c.Set(ReceiptHeader, token)
}
