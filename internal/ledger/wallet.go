package ledger

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/errl"
)

// Backend is what KeyWallet needs from a node.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// KeyWallet signs with a private key held by the server. It is the
// server-side anchoring path; browser users sign with their own extension.
type KeyWallet struct {
	backend   Backend
	key       *ecdsa.PrivateKey
	chainID   *big.Int
	account   common.Address
	connected bool
}

// NewKeyWallet builds a wallet from a hex private key, with or without 0x.
func NewKeyWallet(backend Backend, hexKey string, chainID int64) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "server misconfigured", errl.Errorf("invalid signing key: %w", err))
	}
	return &KeyWallet{
		backend: backend,
		key:     key,
		chainID: big.NewInt(chainID),
		account: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Connect checks that the node serves the expected chain.
func (w *KeyWallet) Connect(ctx context.Context) (common.Address, error) {
	id, err := w.backend.ChainID(ctx)
	if err != nil {
		return common.Address{}, Classify(err)
	}
	if id.Cmp(w.chainID) != 0 {
		return common.Address{}, apperr.Wrap(apperr.KindConfig, "server misconfigured",
			errl.Errorf("node serves chain %s, configured chain is %s", id, w.chainID))
	}
	w.connected = true
	return w.account, nil
}

// Account returns the signing account once connected.
func (w *KeyWallet) Account() (common.Address, bool) {
	return w.account, w.connected
}

// SignAndSend estimates gas, signs and broadcasts call. A call the contract
// would reject fails here, during estimation, before anything is broadcast.
func (w *KeyWallet) SignAndSend(ctx context.Context, call Call) (common.Hash, error) {
	if !w.connected {
		return common.Hash{}, apperr.New(apperr.KindInternal, "wallet not connected")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, w.chainID)
	if err != nil {
		return common.Hash{}, errl.Errorf("creating transactor: %w", err)
	}
	opts.Context = ctx

	bound := bind.NewBoundContract(call.To, abi.ABI{}, w.backend, w.backend, w.backend)
	tx, err := bound.RawTransact(opts, call.Data)
	if err != nil {
		return common.Hash{}, Classify(err)
	}
	return tx.Hash(), nil
}

// KeyWalletOpener dials a node for each operation and wraps it in a KeyWallet.
type KeyWalletOpener struct {
	cfg config.ChainConfig
}

// NewKeyWalletOpener returns an opener for the configured chain and key.
func NewKeyWalletOpener(cfg config.ChainConfig) *KeyWalletOpener {
	return &KeyWalletOpener{cfg: cfg}
}

// OpenWallet dials the node and returns a wallet bound to it.
func (o *KeyWalletOpener) OpenWallet(ctx context.Context) (Wallet, func(), error) {
	if o.cfg.PrivateKey == "" || o.cfg.RPCURL == "" {
		return nil, nil, apperr.Wrap(apperr.KindConfig, "server misconfigured",
			errl.Errorf("signing key or RPC URL not configured"))
	}
	client, err := ethclient.DialContext(ctx, o.cfg.RPCURL)
	if err != nil {
		return nil, nil, Classify(errl.Errorf("dialing %s: %w", o.cfg.RPCURL, err))
	}
	w, err := NewKeyWallet(client, o.cfg.PrivateKey, o.cfg.ChainID)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return w, client.Close, nil
}
