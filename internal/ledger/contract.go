package ledger

import (
	"bytes"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
)

// RegistryABI is the interface of the document registry contract.
const RegistryABI = `[
	{"type":"function","name":"anchor","stateMutability":"nonpayable",
	 "inputs":[{"name":"docHash","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"verify","stateMutability":"view",
	 "inputs":[{"name":"docHash","type":"bytes32"}],
	 "outputs":[{"name":"author","type":"address"},{"name":"timestamp","type":"uint256"}]}
]`

// Contract packs and unpacks calls to the document registry.
type Contract struct {
	Address common.Address
	abi     abi.ABI
}

// NewContract returns the registry deployed at address.
func NewContract(address string) (*Contract, error) {
	if !fingerprint.IsAddress(address) {
		return nil, apperr.Wrap(apperr.KindConfig, "server misconfigured",
			errl.Errorf("invalid contract address %q", address))
	}
	parsed, err := abi.JSON(strings.NewReader(RegistryABI))
	if err != nil {
		return nil, errl.Errorf("parsing registry ABI: %w", err)
	}
	return &Contract{Address: common.HexToAddress(address), abi: parsed}, nil
}

// AnchorCall builds the call registering fp.
func (c *Contract) AnchorCall(fp fingerprint.Fingerprint) (Call, error) {
	data, err := c.abi.Pack("anchor", fp.Bytes())
	if err != nil {
		return Call{}, errl.Errorf("packing anchor call: %w", err)
	}
	return Call{To: c.Address, Data: data}, nil
}

// ParseAnchorCall extracts the fingerprint from call data built by AnchorCall.
func (c *Contract) ParseAnchorCall(data []byte) (fingerprint.Fingerprint, error) {
	method := c.abi.Methods["anchor"]
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return "", errl.Errorf("call data is not an anchor call")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return "", errl.Errorf("unpacking anchor call: %w", err)
	}
	digest, ok := args[0].([32]byte)
	if !ok {
		return "", errl.Errorf("unexpected anchor argument %T", args[0])
	}
	return fingerprint.Fingerprint(common.Hash(digest).Hex()), nil
}

// VerifyCall builds the read-only query for fp.
func (c *Contract) VerifyCall(fp fingerprint.Fingerprint) ([]byte, error) {
	data, err := c.abi.Pack("verify", fp.Bytes())
	if err != nil {
		return nil, errl.Errorf("packing verify call: %w", err)
	}
	return data, nil
}

// UnpackVerify decodes the result of the verify query.
func (c *Contract) UnpackVerify(out []byte) (Attestation, error) {
	values, err := c.abi.Unpack("verify", out)
	if err != nil {
		return Attestation{}, errl.Errorf("unpacking verify result: %w", err)
	}
	if len(values) != 2 {
		return Attestation{}, errl.Errorf("verify returned %d values", len(values))
	}
	author, ok := values[0].(common.Address)
	if !ok {
		return Attestation{}, errl.Errorf("unexpected author type %T", values[0])
	}
	ts, ok := values[1].(*big.Int)
	if !ok {
		return Attestation{}, errl.Errorf("unexpected timestamp type %T", values[1])
	}
	if !ts.IsUint64() {
		return Attestation{}, errl.Errorf("timestamp out of range: %s", ts)
	}
	return Attestation{Author: author, Timestamp: ts.Uint64()}, nil
}
