package fingerprint

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/evidenceledger/veritas/internal/errl"
)

// CID returns the CIDv1 (raw codec, sha2-256 multihash) addressing the same
// bytes as f. It matches the CID of the document stored as a single raw block.
func CID(f Fingerprint) (string, error) {
	digest := f.Bytes()
	mh, err := multihash.Encode(digest[:], multihash.SHA2_256)
	if err != nil {
		return "", errl.Errorf("encoding multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}
