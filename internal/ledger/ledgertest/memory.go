// Package ledgertest provides an in-memory ledger and wallet for tests.
//
// Memory behaves like the registry contract: one attestation per fingerprint,
// duplicates rejected with the same revert prose a node returns. FakeWallet
// signs by writing straight into a Memory.
package ledgertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/ledger"
)

// ErrAlreadyAnchored is the raw revert returned for a duplicate registration.
var ErrAlreadyAnchored = errors.New("execution reverted: Already anchored")

// Memory is an in-memory registry. It implements ledger.Conn and ledger.Dialer.
type Memory struct {
	mu        sync.Mutex
	records   map[fingerprint.Fingerprint]ledger.Attestation
	overrides map[fingerprint.Fingerprint]ledger.Attestation
	pending   map[common.Hash]fingerprint.Fingerprint
	block     uint64

	// Now returns the block time. Defaults to time.Now.
	Now func() time.Time

	// DialErr, AttestationErr and WaitErr are returned by the matching
	// operations when set.
	DialErr        error
	AttestationErr error
	WaitErr        error

	// WaitBlocks makes WaitConfirmed block until ctx is done.
	WaitBlocks bool

	Dials            int
	Closes           int
	AttestationCalls int
	WaitCalls        int
}

// NewMemory returns an empty registry.
func NewMemory() *Memory {
	return &Memory{
		records:   make(map[fingerprint.Fingerprint]ledger.Attestation),
		overrides: make(map[fingerprint.Fingerprint]ledger.Attestation),
		pending:   make(map[common.Hash]fingerprint.Fingerprint),
		block:     100,
		Now:       time.Now,
	}
}

// Dial implements ledger.Dialer. Every dial shares the same state.
func (m *Memory) Dial(ctx context.Context) (ledger.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dials++
	if m.DialErr != nil {
		return nil, m.DialErr
	}
	return m, nil
}

// Close implements ledger.Conn.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closes++
	return nil
}

// Attestation implements ledger.Reader.
func (m *Memory) Attestation(ctx context.Context, fp fingerprint.Fingerprint) (ledger.Attestation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttestationCalls++
	if m.AttestationErr != nil {
		return ledger.Attestation{}, m.AttestationErr
	}
	if a, ok := m.overrides[fp]; ok {
		return a, nil
	}
	return m.records[fp], nil
}

// WaitConfirmed implements ledger.Reader.
func (m *Memory) WaitConfirmed(ctx context.Context, tx common.Hash) (ledger.Receipt, error) {
	m.mu.Lock()
	m.WaitCalls++
	waitErr, blocks := m.WaitErr, m.WaitBlocks
	m.mu.Unlock()

	if blocks {
		<-ctx.Done()
		return ledger.Receipt{}, ledger.Classify(ctx.Err())
	}
	if waitErr != nil {
		return ledger.Receipt{}, waitErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[tx]; !ok {
		return ledger.Receipt{}, errors.New("not found")
	}
	delete(m.pending, tx)
	m.block++
	return ledger.Receipt{TxHash: tx, BlockNumber: m.block}, nil
}

// Register stores an attestation for fp as if author had sent it.
// It fails with ErrAlreadyAnchored when fp is already attested.
func (m *Memory) Register(fp fingerprint.Fingerprint, author common.Address) (common.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[fp].Exists() {
		return common.Hash{}, ErrAlreadyAnchored
	}
	m.records[fp] = ledger.Attestation{Author: author, Timestamp: uint64(m.Now().Unix())}
	tx := crypto.Keccak256Hash(author.Bytes(), []byte(fp))
	m.pending[tx] = fp
	return tx, nil
}

// Override forces the answer returned for fp, including answers a real
// contract would never give.
func (m *Memory) Override(fp fingerprint.Fingerprint, a ledger.Attestation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[fp] = a
}

// Record returns the stored attestation for fp, ignoring overrides.
func (m *Memory) Record(fp fingerprint.Fingerprint) ledger.Attestation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[fp]
}

// Calls returns the total number of ledger operations performed.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Dials + m.AttestationCalls + m.WaitCalls
}
