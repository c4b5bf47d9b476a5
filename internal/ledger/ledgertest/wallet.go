package ledgertest

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/ledger"
)

// RejectedError mimics the EIP-1193 error a browser wallet returns when the
// user declines to sign.
type RejectedError struct{}

func (RejectedError) Error() string  { return "User rejected the request." }
func (RejectedError) ErrorCode() int { return 4001 }

// FakeWallet is a ledger.Wallet that registers anchor calls in a Memory.
type FakeWallet struct {
	mu       sync.Mutex
	ledger   *Memory
	contract *ledger.Contract
	account  common.Address

	connected bool

	// Reject makes every signature request fail as if the user declined.
	Reject bool

	// SendErr is returned raw by SignAndSend when set.
	SendErr error

	Sends   int
	Opens   int
	Release int
}

// NewFakeWallet returns a wallet for account, writing to m through the
// registry at contract.
func NewFakeWallet(m *Memory, contract *ledger.Contract, account common.Address) *FakeWallet {
	return &FakeWallet{ledger: m, contract: contract, account: account}
}

// Connect implements ledger.Wallet.
func (w *FakeWallet) Connect(ctx context.Context) (common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Reject {
		return common.Address{}, ledger.Classify(RejectedError{})
	}
	w.connected = true
	return w.account, nil
}

// Account implements ledger.Wallet.
func (w *FakeWallet) Account() (common.Address, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account, w.connected
}

// SignAndSend implements ledger.Wallet.
func (w *FakeWallet) SignAndSend(ctx context.Context, call ledger.Call) (common.Hash, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Sends++

	if !w.connected {
		return common.Hash{}, apperr.New(apperr.KindInternal, "wallet not connected")
	}
	if w.Reject {
		return common.Hash{}, ledger.Classify(RejectedError{})
	}
	if w.SendErr != nil {
		return common.Hash{}, ledger.Classify(w.SendErr)
	}
	if call.To != w.contract.Address {
		return common.Hash{}, ledger.Classify(errors.New("execution reverted"))
	}
	fp, err := w.contract.ParseAnchorCall(call.Data)
	if err != nil {
		return common.Hash{}, ledger.Classify(err)
	}
	tx, err := w.ledger.Register(fp, w.account)
	if err != nil {
		return common.Hash{}, ledger.Classify(err)
	}
	return tx, nil
}

// OpenWallet implements ledger.WalletOpener by handing out the same wallet.
func (w *FakeWallet) OpenWallet(ctx context.Context) (ledger.Wallet, func(), error) {
	w.mu.Lock()
	w.Opens++
	w.mu.Unlock()
	return w, func() {
		w.mu.Lock()
		w.Release++
		w.mu.Unlock()
	}, nil
}
