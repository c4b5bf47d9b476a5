package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/evidenceledger/veritas/internal/apperr"
)

// userRejectedCode is the EIP-1193 code a wallet returns when the user
// declines to sign.
const userRejectedCode = 4001

// Classify converts a ledger library error into the error taxonomy.
//
// The node and the wallet report most failures only as prose, so this is the
// one place where messages are matched. Errors already carrying a Kind are
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, "ledger did not answer in time", err)
	case errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.KindCancelled, "operation cancelled", err)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
		return apperr.Wrap(apperr.KindCancelled, "signature request rejected by the user", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already anchored"):
		return apperr.Wrap(apperr.KindAlreadyAnchored, "this document is already anchored on the ledger", err)
	case strings.Contains(msg, "insufficient funds"):
		return apperr.Wrap(apperr.KindInsufficientFunds, "insufficient funds to pay the network fee", err)
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"):
		return apperr.Wrap(apperr.KindCancelled, "signature request rejected by the user", err)
	}

	return apperr.Wrap(apperr.KindLedger, "ledger operation failed", err)
}
