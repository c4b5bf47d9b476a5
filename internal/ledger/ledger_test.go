package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/fingerprint"
)

const testContract = "0x7b7c41cf5bc986f406c7067de6e69f200c27d63f"

type codeError struct {
	code int
	msg  string
}

func (e codeError) Error() string  { return e.msg }
func (e codeError) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"revert already anchored", errors.New("execution reverted: Already anchored"), apperr.KindAlreadyAnchored},
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), apperr.KindInsufficientFunds},
		{"eip-1193 rejection", codeError{4001, "whatever"}, apperr.KindCancelled},
		{"rejection prose", errors.New("MetaMask Tx Signature: User denied transaction signature."), apperr.KindCancelled},
		{"deadline", fmt.Errorf("receipt: %w", context.DeadlineExceeded), apperr.KindTimeout},
		{"other rpc error", codeError{-32000, "nonce too low"}, apperr.KindLedger},
		{"network", errors.New("dial tcp 127.0.0.1:8545: connection refused"), apperr.KindLedger},
		{"already classified", apperr.New(apperr.KindConfig, "x"), apperr.KindConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if k := apperr.KindOf(got); k != tt.want {
				t.Errorf("Classify() kind = %v, want %v", k, tt.want)
			}
			if !errors.Is(got, tt.err) && apperr.KindOf(tt.err) == apperr.KindInternal {
				t.Errorf("Classify() must keep the original error as cause")
			}
		})
	}

	if Classify(nil) != nil {
		t.Errorf("Classify(nil) must be nil")
	}
}

func TestAttestationExists(t *testing.T) {
	author := common.HexToAddress("0x00000000000000000000000000000000000000ab")
	tests := []struct {
		name string
		att  Attestation
		want bool
	}{
		{"absent", Attestation{}, false},
		{"author without time", Attestation{Author: author}, false},
		{"time without author", Attestation{Timestamp: 1710000000}, false},
		{"present", Attestation{Author: author, Timestamp: 1710000000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.att.Exists(); got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContractAnchorCallRoundTrip(t *testing.T) {
	c, err := NewContract(testContract)
	if err != nil {
		t.Fatalf("NewContract() error = %v", err)
	}
	fp := fingerprint.FromBytes([]byte("legal deed"))

	call, err := c.AnchorCall(fp)
	if err != nil {
		t.Fatalf("AnchorCall() error = %v", err)
	}
	if call.To != c.Address {
		t.Errorf("call.To = %s, want %s", call.To, c.Address)
	}
	if len(call.Data) != 4+32 {
		t.Errorf("call data length = %d, want 36", len(call.Data))
	}

	got, err := c.ParseAnchorCall(call.Data)
	if err != nil {
		t.Fatalf("ParseAnchorCall() error = %v", err)
	}
	if got != fp {
		t.Errorf("ParseAnchorCall() = %s, want %s", got, fp)
	}

	verify, err := c.VerifyCall(fp)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ParseAnchorCall(verify); err == nil {
		t.Errorf("ParseAnchorCall() must reject a verify call")
	}
}

func TestContractVerifyResultRoundTrip(t *testing.T) {
	c, err := NewContract(testContract)
	if err != nil {
		t.Fatal(err)
	}
	want := Attestation{Author: common.HexToAddress("0x00000000000000000000000000000000000000ab"), Timestamp: 1710000000}

	out, err := c.abi.Methods["verify"].Outputs.Pack(want.Author, new(big.Int).SetUint64(want.Timestamp))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.UnpackVerify(out)
	if err != nil {
		t.Fatalf("UnpackVerify() error = %v", err)
	}
	if got != want {
		t.Errorf("UnpackVerify() = %+v, want %+v", got, want)
	}
}

func TestNewContractRejectsBadAddress(t *testing.T) {
	_, err := NewContract("0x1234")
	if !apperr.IsKind(err, apperr.KindConfig) {
		t.Errorf("NewContract() error = %v, want config kind", err)
	}
}

func TestHexAddressIsLowercase(t *testing.T) {
	a := common.HexToAddress("0x7B7C41cf5bc986F406c7067De6e69f200c27D63f")
	if got := HexAddress(a); got != strings.ToLower(got) || !fingerprint.IsAddress(got) {
		t.Errorf("HexAddress() = %s", got)
	}
}
