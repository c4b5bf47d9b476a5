// Package verify checks whether a fingerprint has been attested on the ledger.
package verify

import (
	"context"
	"log/slog"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/cache"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/ledger"
)

// Result is the outcome of a verification. Author, Timestamp and
// ExplorerURL are only set when Exists is true.
type Result struct {
	Exists      bool
	Author      string
	Timestamp   int64
	ExplorerURL string
}

// Client performs single read-only ledger queries.
type Client struct {
	dialer ledger.Dialer
	chain  config.ChainConfig
	memo   *cache.Cache[Result]
}

// New returns a verify client. memo may be nil.
func New(dialer ledger.Dialer, chain config.ChainConfig, memo *cache.Cache[Result]) *Client {
	return &Client{dialer: dialer, chain: chain, memo: memo}
}

// Verify reads the attestation for fp.
//
// A positive answer requires both a non-zero author and a strictly positive
// timestamp. Positive answers never change, so they are memoized; negative
// ones are always read again.
func (c *Client) Verify(ctx context.Context, fp fingerprint.Fingerprint) (Result, error) {
	if !c.chain.ChainEnabled() || c.dialer == nil {
		return Result{}, apperr.Wrap(apperr.KindConfig, "server misconfigured",
			errl.Errorf("RPC URL or contract address not configured"))
	}

	if c.memo != nil {
		if res, ok := c.memo.Get(string(fp)); ok {
			return res, nil
		}
	}

	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		return Result{}, ledger.Classify(err)
	}
	defer conn.Close()

	att, err := conn.Attestation(ctx, fp)
	if err != nil {
		return Result{}, ledger.Classify(err)
	}

	if !att.Exists() {
		if att != (ledger.Attestation{}) {
			slog.Warn("Partial attestation treated as absent", "hash", fp.Short(10),
				"author", ledger.HexAddress(att.Author), "timestamp", att.Timestamp)
		}
		return Result{Exists: false}, nil
	}

	res := Result{
		Exists:      true,
		Author:      ledger.HexAddress(att.Author),
		Timestamp:   int64(att.Timestamp),
		ExplorerURL: config.ExplorerAddressURL(c.chain.Network, c.chain.ContractAddress),
	}
	if c.memo != nil {
		c.memo.Put(string(fp), res)
	}
	return res, nil
}
