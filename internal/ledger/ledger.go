// Package ledger talks to the anchoring contract.
//
// Reads go through a Conn opened per operation by a Dialer and closed when the
// operation ends. Writes go through a Wallet, the signing capability of the
// account that registers the fingerprint. Both are interfaces so the protocol
// clients can run against the in-memory ledger of package ledgertest.
package ledger

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evidenceledger/veritas/internal/fingerprint"
)

// Attestation is the ledger's record for a fingerprint.
type Attestation struct {
	Author    common.Address
	Timestamp uint64
}

// Exists reports whether the attestation is real. Both a non-zero author and a
// strictly positive timestamp are required; an answer with only one of them is
// treated as "not yet attested".
func (a Attestation) Exists() bool {
	return a.Author != (common.Address{}) && a.Timestamp > 0
}

// Receipt is the confirmation of a mined transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
}

// Call is a state-changing contract invocation waiting to be signed.
type Call struct {
	To   common.Address
	Data []byte
}

// Reader performs side-effect-free ledger queries.
type Reader interface {
	// Attestation reads the record stored for fp.
	Attestation(ctx context.Context, fp fingerprint.Fingerprint) (Attestation, error)

	// WaitConfirmed blocks until tx is mined or ctx is done.
	WaitConfirmed(ctx context.Context, tx common.Hash) (Receipt, error)
}

// Conn is a short-lived connection to the ledger.
type Conn interface {
	Reader
	Close() error
}

// Dialer opens ledger connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Wallet is the signing capability of an account.
type Wallet interface {
	// Connect asks for access to the account and returns it.
	Connect(ctx context.Context) (common.Address, error)

	// Account returns the connected account, if any.
	Account() (common.Address, bool)

	// SignAndSend signs call with the account and broadcasts it.
	SignAndSend(ctx context.Context, call Call) (common.Hash, error)
}

// WalletOpener gives access to a Wallet for the duration of one operation.
// The returned release function must be called when done.
type WalletOpener interface {
	OpenWallet(ctx context.Context) (Wallet, func(), error)
}

// HexAddress renders an address as "0x" + 40 lowercase hex digits.
func HexAddress(a common.Address) string {
	return strings.ToLower(a.Hex())
}
