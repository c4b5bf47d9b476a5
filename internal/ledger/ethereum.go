package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
)

// EthereumDialer opens JSON-RPC connections to an Ethereum node.
type EthereumDialer struct {
	cfg config.ChainConfig

	// PollInterval is the delay between receipt lookups while waiting.
	PollInterval time.Duration
}

// NewEthereumDialer returns a dialer for the configured chain.
func NewEthereumDialer(cfg config.ChainConfig) *EthereumDialer {
	return &EthereumDialer{cfg: cfg, PollInterval: time.Second}
}

// Dial connects to the node. The connection must be closed by the caller.
func (d *EthereumDialer) Dial(ctx context.Context) (Conn, error) {
	if !d.cfg.ChainEnabled() {
		return nil, apperr.Wrap(apperr.KindConfig, "server misconfigured",
			errl.Errorf("RPC URL or contract address not configured"))
	}
	contract, err := NewContract(d.cfg.ContractAddress)
	if err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, d.cfg.RPCURL)
	if err != nil {
		return nil, Classify(errl.Errorf("dialing %s: %w", d.cfg.RPCURL, err))
	}
	return &Ethereum{client: client, contract: contract, pollInterval: d.PollInterval}, nil
}

// Ethereum is a Conn backed by an ethclient.
type Ethereum struct {
	client       *ethclient.Client
	contract     *Contract
	pollInterval time.Duration
}

// Attestation calls the registry's verify function.
func (e *Ethereum) Attestation(ctx context.Context, fp fingerprint.Fingerprint) (Attestation, error) {
	data, err := e.contract.VerifyCall(fp)
	if err != nil {
		return Attestation{}, err
	}
	to := e.contract.Address
	out, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return Attestation{}, Classify(err)
	}
	att, err := e.contract.UnpackVerify(out)
	if err != nil {
		return Attestation{}, apperr.Wrap(apperr.KindLedger, "unexpected ledger answer", err)
	}
	return att, nil
}

// WaitConfirmed polls for the receipt of tx until it is mined or ctx is done.
func (e *Ethereum) WaitConfirmed(ctx context.Context, tx common.Hash) (Receipt, error) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := e.client.TransactionReceipt(ctx, tx)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return Receipt{}, apperr.Wrap(apperr.KindLedger, "transaction reverted",
					errl.Errorf("transaction %s failed in block %s", tx.Hex(), receipt.BlockNumber))
			}
			return Receipt{TxHash: tx, BlockNumber: receipt.BlockNumber.Uint64()}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return Receipt{}, Classify(err)
		}

		slog.Debug("Transaction not yet mined", "tx", tx.Hex())

		select {
		case <-ctx.Done():
			return Receipt{}, Classify(ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the RPC connection.
func (e *Ethereum) Close() error {
	e.client.Close()
	return nil
}
