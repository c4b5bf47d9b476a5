package certificate

import (
	qrcode "github.com/skip2/go-qrcode"

	"github.com/evidenceledger/veritas/internal/errl"
)

// qrSize is the side of the QR image in pixels.
const qrSize = 256

// QRCode returns a PNG QR code of content with medium error correction.
func QRCode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return nil, errl.Errorf("encoding QR code: %w", err)
	}
	return png, nil
}
