// Package certificate renders the PDF certificate proving that a document
// fingerprint was anchored on the ledger.
package certificate

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/validation"
)

// DefaultAppName is printed in the header when the request names no application.
const DefaultAppName = "VeritasChain"

// DateLayout is the layout of every date printed on a certificate.
const DateLayout = "2006-01-02 15:04:05 UTC"

// Input is what a certificate binds together.
type Input struct {
	Hash            string `json:"hash" validate:"required,hash32"`
	TxHash          string `json:"txHash" validate:"required,hash32"`
	Network         string `json:"network" validate:"required,max=64"`
	ContractAddress string `json:"contractAddress" validate:"required,address"`

	IssuerAddress string `json:"issuerAddress,omitempty" validate:"omitempty,address"`
	IssuedTo      string `json:"issuedTo,omitempty" validate:"max=120"`
	IssuedAt      string `json:"issuedAt,omitempty" validate:"omitempty,rfc3339"`
	AppName       string `json:"appName,omitempty" validate:"max=100"`
	VerifyBaseURL string `json:"verifyBaseUrl,omitempty" validate:"omitempty,url,max=200"`
}

// Certificate is a rendered certificate.
type Certificate struct {
	PDF         []byte
	ID          string
	Serial      string
	Filename    string
	GeneratedAt time.Time
	VerifyURL   string
}

// Options configures a Generator.
type Options struct {
	// AppName replaces DefaultAppName.
	AppName string

	// VerifyBaseURL is used when the input carries none.
	VerifyBaseURL string

	// QR embeds a QR code of the verification link.
	QR bool
}

// Generator renders certificates.
type Generator struct {
	opts Options

	now       func() time.Time
	newSerial func() string
}

// New returns a generator.
func New(opts Options) *Generator {
	if opts.AppName == "" {
		opts.AppName = DefaultAppName
	}
	return &Generator{opts: opts, now: time.Now, newSerial: uuid.NewString}
}

// Generate validates in and renders the certificate.
//
// Every missing or malformed field is reported in one validation error.
// A rendering failure is an internal error.
func (g *Generator) Generate(in Input) (*Certificate, error) {
	in = normalize(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	base := in.VerifyBaseURL
	if base == "" {
		base = g.opts.VerifyBaseURL
	}
	if base == "" {
		return nil, apperr.Validation("invalid request", "verifyBaseUrl is required when no public URL is configured")
	}

	now := g.now().UTC()
	issuedAt := now
	if in.IssuedAt != "" {
		// already checked by the rfc3339 tag
		t, _ := time.Parse(time.RFC3339, in.IssuedAt)
		issuedAt = t.UTC()
	}
	appName := in.AppName
	if appName == "" {
		appName = g.opts.AppName
	}

	hash := fingerprint.Fingerprint(strings.ToLower(in.Hash))
	cid, err := fingerprint.CID(hash)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate certificate", err)
	}

	serial := g.newSerial()
	id := NewID(hash, now, serial)
	c := &Certificate{
		ID:          id,
		Serial:      serial,
		Filename:    Filename(id, now),
		GeneratedAt: now,
		VerifyURL:   VerifyURL(base, hash),
	}

	var qr []byte
	if g.opts.QR {
		qr, err = QRCode(c.VerifyURL)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to generate certificate", err)
		}
	}

	c.PDF, err = render(page{
		AppName:   appName,
		ID:        c.ID,
		Serial:    c.Serial,
		Hash:      string(hash),
		CID:       cid,
		TxHash:    strings.ToLower(in.TxHash),
		Network:   in.Network,
		Contract:  strings.ToLower(in.ContractAddress),
		Issuer:    strings.ToLower(in.IssuerAddress),
		IssuedTo:  in.IssuedTo,
		IssuedAt:  issuedAt,
		Generated: now,
		VerifyURL: c.VerifyURL,
		QR:        qr,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate certificate", errl.Error(err))
	}
	return c, nil
}

func normalize(in Input) Input {
	in.Hash = strings.TrimSpace(in.Hash)
	in.TxHash = strings.TrimSpace(in.TxHash)
	in.Network = strings.TrimSpace(in.Network)
	in.ContractAddress = strings.TrimSpace(in.ContractAddress)
	in.IssuerAddress = strings.TrimSpace(in.IssuerAddress)
	in.IssuedTo = strings.TrimSpace(in.IssuedTo)
	in.IssuedAt = strings.TrimSpace(in.IssuedAt)
	in.AppName = strings.TrimSpace(in.AppName)
	in.VerifyBaseURL = strings.TrimSpace(in.VerifyBaseURL)
	return in
}

// NewID returns the human-readable certificate identifier: the UTC date, the
// first five hex digits of the fingerprint and the first six of the serial,
// so that every generation gets its own identifier.
func NewID(hash fingerprint.Fingerprint, now time.Time, serial string) string {
	tag := strings.ToUpper(strings.ReplaceAll(serial, "-", ""))
	if len(tag) > serialTagLength {
		tag = tag[:serialTagLength]
	}
	return "VERI-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(string(hash[2:7])) + "-" + tag
}

const serialTagLength = 6

// Filename returns the download name of a certificate.
func Filename(id string, now time.Time) string {
	return "VeritasCertificate_" + id + "_" + now.UTC().Format("150405") + ".pdf"
}

// VerifyURL returns the public verification link for hash.
func VerifyURL(base string, hash fingerprint.Fingerprint) string {
	return strings.TrimRight(base, "/") + "/verify?hash=" + url.QueryEscape(string(hash))
}

// WrapHash splits a rendered hash so it fits the certificate column: the
// "0x" prefix and 32 digits, then the remaining 32.
func WrapHash(h string) []string {
	if len(h) == fingerprint.Length {
		return []string{h[:34], h[34:]}
	}
	var lines []string
	for len(h) > 34 {
		lines = append(lines, h[:34])
		h = h[34:]
	}
	return append(lines, h)
}
