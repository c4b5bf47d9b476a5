// Package anchor registers document fingerprints on the ledger.
package anchor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/ledger"
)

// ZeroTxHash is the transaction reference returned in simulated mode.
const ZeroTxHash = string(fingerprint.Zero)

// Result is the outcome of a successful anchor.
type Result struct {
	TxHash      string
	Author      string
	Timestamp   int64
	BlockNumber uint64
	Network     string
	Simulated   bool
}

// Client submits anchor transactions and waits for their confirmation.
type Client struct {
	dialer   ledger.Dialer
	chain    config.ChainConfig
	contract *ledger.Contract

	now func() time.Time
}

// New builds a client for chain. The dialer may be nil when the chain is
// simulated; the client then never touches the network.
func New(dialer ledger.Dialer, chain config.ChainConfig) (*Client, error) {
	c := &Client{dialer: dialer, chain: chain, now: time.Now}
	if c.Simulated() {
		return c, nil
	}
	if dialer == nil {
		return nil, apperr.Wrap(apperr.KindConfig, "server misconfigured", errl.Errorf("no ledger dialer"))
	}
	contract, err := ledger.NewContract(chain.ContractAddress)
	if err != nil {
		return nil, err
	}
	c.contract = contract
	return c, nil
}

// Simulated reports whether anchors are fabricated locally.
func (c *Client) Simulated() bool {
	return c.chain.Simulated()
}

// Anchor registers fp with the account behind wallet.
//
// The sequence is: submit the anchor call, wait up to the confirmation
// timeout for it to be mined, then read the attestation back. Nothing is
// retried. A timeout only means the wait gave up; the transaction may
// still be mined later.
func (c *Client) Anchor(ctx context.Context, fp fingerprint.Fingerprint, wallet ledger.Wallet) (Result, error) {
	if c.Simulated() {
		slog.Warn("Simulated anchor, nothing sent to the ledger", "hash", fp.Short(10))
		return Result{
			TxHash:    ZeroTxHash,
			Author:    config.ZeroAddress,
			Timestamp: c.now().Unix(),
			Network:   c.chain.NetworkName(),
			Simulated: true,
		}, nil
	}
	if wallet == nil {
		return Result{}, apperr.Wrap(apperr.KindConfig, "server misconfigured", errl.Errorf("no wallet available"))
	}

	account, ok := wallet.Account()
	if !ok {
		var err error
		account, err = wallet.Connect(ctx)
		if err != nil {
			return Result{}, ledger.Classify(err)
		}
	}

	call, err := c.contract.AnchorCall(fp)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "internal error", err)
	}

	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		return Result{}, ledger.Classify(err)
	}
	defer conn.Close()

	tx, err := wallet.SignAndSend(ctx, call)
	if err != nil {
		return Result{}, ledger.Classify(err)
	}
	slog.Info("Anchor transaction sent", "hash", fp.Short(10), "tx", tx.Hex(), "account", ledger.HexAddress(account))

	receipt, err := c.waitConfirmed(ctx, conn, tx)
	if err != nil {
		return Result{}, err
	}

	att, err := conn.Attestation(ctx, fp)
	if err != nil {
		return Result{}, ledger.Classify(err)
	}
	if !att.Exists() {
		return Result{}, apperr.Wrap(apperr.KindLedger, "ledger operation failed",
			errl.Errorf("no attestation for %s after transaction %s", fp, tx.Hex()))
	}

	return Result{
		TxHash:      tx.Hex(),
		Author:      ledger.HexAddress(att.Author),
		Timestamp:   int64(att.Timestamp),
		BlockNumber: receipt.BlockNumber,
		Network:     c.chain.NetworkName(),
	}, nil
}

func (c *Client) waitConfirmed(ctx context.Context, conn ledger.Conn, tx common.Hash) (ledger.Receipt, error) {
	timeout := c.chain.ConfirmTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := conn.WaitConfirmed(waitCtx, tx)
	if err == nil {
		return receipt, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || apperr.IsKind(err, apperr.KindTimeout) {
		return ledger.Receipt{}, apperr.Wrap(apperr.KindTimeout,
			"timed out waiting for confirmation, the transaction may still confirm", errl.Errorf("transaction %s: %w", tx.Hex(), err))
	}
	return ledger.Receipt{}, ledger.Classify(err)
}
