package certificate

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/evidenceledger/veritas/internal/errl"
)

const (
	pageWidth = 210.0
	margin    = 15.0
	inner     = pageWidth - 2*margin

	disclaimer = "This certificate attests the immutable registration of the document fingerprint on the blockchain. " +
		"It does not contain the document, only its cryptographic fingerprint (SHA-256). " +
		"Anyone holding the original file can recompute the fingerprint and check it against the ledger."
)

type rgb struct{ r, g, b int }

var (
	primary   = rgb{10, 95, 255}
	secondary = rgb{74, 85, 104}
	text      = rgb{26, 32, 44}
)

// page is everything printed on a certificate.
type page struct {
	AppName   string
	ID        string
	Serial    string
	Hash      string
	CID       string
	TxHash    string
	Network   string
	Contract  string
	Issuer    string
	IssuedTo  string
	IssuedAt  time.Time
	Generated time.Time
	VerifyURL string
	QR        []byte
}

func render(p page) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Blockchain Anchoring Certificate "+p.ID, true)
	pdf.SetCreator(p.AppName, true)
	pdf.SetSubject(p.Hash, false)
	pdf.SetCreationDate(p.Generated)
	pdf.AddPage()

	// Core fonts are cp1252; free text from requests is translated.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	color := func(c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

	// Header
	color(primary)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(inner/2, 10, tr(p.AppName), "", 0, "L", false, 0, "")
	color(text)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(inner/2, 10, "Blockchain Anchoring Certificate", "", 1, "R", false, 0, "")
	pdf.SetDrawColor(secondary.r, secondary.g, secondary.b)
	pdf.SetLineWidth(0.3)
	pdf.Line(margin, pdf.GetY()+1, pageWidth-margin, pdf.GetY()+1)
	pdf.Ln(10)

	// Title
	color(primary)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(inner, 12, "BLOCKCHAIN ANCHORING CERTIFICATE", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Summary box
	top := pdf.GetY()
	pdf.SetDrawColor(primary.r, primary.g, primary.b)
	pdf.SetLineWidth(0.7)
	pdf.Rect(margin, top, inner, 44, "D")
	pdf.SetXY(margin+4, top+4)
	color(text)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(inner-8, 7, "Certificate ID: "+p.ID, "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(inner-8, 6, "Document fingerprint (SHA-256):", "", 2, "L", false, 0, "")
	pdf.SetFont("Courier", "", 9)
	for _, line := range WrapHash(p.Hash) {
		pdf.CellFormat(inner-8, 5, line, "", 2, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(inner-8, 6, "Date (UTC): "+p.IssuedAt.UTC().Format(DateLayout), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	color(secondary)
	pdf.CellFormat(inner-8, 5, "Serial: "+p.Serial, "", 2, "L", false, 0, "")
	pdf.SetXY(margin, top+52)

	// Anchoring details
	color(primary)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(inner, 9, "ANCHORING DETAILS", "", 1, "L", false, 0, "")
	rows := [][2]string{
		{"Network:", tr(p.Network)},
		{"Contract:", p.Contract},
		{"Transaction:", p.TxHash},
		{"Issuer:", orDash(p.Issuer)},
		{"Recipient:", orDash(tr(p.IssuedTo))},
		{"IPFS CID:", p.CID},
	}
	for _, row := range rows {
		color(text)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Courier", "", 8)
		pdf.MultiCell(inner-30, 6, row[1], "", "L", false)
	}
	pdf.Ln(4)

	// Verification
	color(primary)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(inner, 9, "VERIFICATION", "", 1, "L", false, 0, "")
	top = pdf.GetY()
	textX := margin
	if len(p.QR) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(p.QR))
		pdf.ImageOptions("qr", margin, top, 45, 45, false, opts, 0, "")
		textX = margin + 52
	}
	pdf.SetXY(textX, top+4)
	color(text)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(pageWidth-margin-textX, 6, "Verify authenticity:", "", 2, "L", false, 0, "")
	color(primary)
	pdf.SetFont("Courier", "", 8)
	pdf.MultiCell(pageWidth-margin-textX, 4.5, p.VerifyURL, "", "L", false)
	pdf.SetX(textX)
	color(secondary)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(pageWidth-margin-textX, 4.5,
		"Scan the code or open the link, then drop the original file to recompute its fingerprint.", "", "L", false)
	pdf.SetXY(margin, top+55)

	// Signature
	color(text)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(inner, 8, tr("Electronically signed by "+p.AppName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	color(secondary)
	pdf.CellFormat(inner, 5, "Generated: "+p.Generated.UTC().Format(DateLayout), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	// Legal
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(inner, 4, disclaimer, "", "L", false)

	if pdf.Err() {
		return nil, errl.Errorf("rendering certificate: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errl.Errorf("writing certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
