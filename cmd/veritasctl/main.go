// Command veritasctl runs the anchoring protocols from a terminal: it
// fingerprints files, anchors and verifies fingerprints, and writes
// certificates without going through the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/evidenceledger/veritas/internal/anchor"
	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/certificate"
	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/fingerprint"
	"github.com/evidenceledger/veritas/internal/ledger"
	"github.com/evidenceledger/veritas/internal/verify"
)

// getenv and ledgerAccess are replaced in tests.
var (
	getenv config.Getenv = os.Getenv

	ledgerAccess = func(chain config.ChainConfig) (ledger.Dialer, ledger.WalletOpener) {
		var (
			dialer  ledger.Dialer
			wallets ledger.WalletOpener
		)
		if chain.ChainEnabled() {
			dialer = ledger.NewEthereumDialer(chain)
		}
		if chain.PrivateKey != "" {
			wallets = ledger.NewKeyWalletOpener(chain)
		}
		return dialer, wallets
	}
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "anchor":
		return cmdAnchor(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "certificate":
		return cmdCertificate(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "veritasctl: document anchoring from the command line")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  veritasctl hash <file>")
	fmt.Fprintln(w, "  veritasctl anchor [--config <file>] [--mock] <file|hash>")
	fmt.Fprintln(w, "  veritasctl verify [--config <file>] <hash>")
	fmt.Fprintln(w, "  veritasctl certificate --hash <hash> --tx <hash> --network <name> --contract <address> [--issuer <address>] [--to <name>] [--base-url <url>] [--out <file>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - the ledger is configured like the server: RPC_URL, CONTRACT_ADDRESS, PRIVATE_KEY, CHAIN_ID")
	fmt.Fprintln(w, "  - without RPC_URL or CONTRACT_ADDRESS, anchor prints a simulated result")
	fmt.Fprintln(w, "  - exit status is 1 when the operation fails and 2 on usage errors")
}

// fail prints err and returns the exit status for it.
func fail(errOut io.Writer, op string, err error) int {
	e, ok := apperr.As(err)
	if !ok {
		fmt.Fprintf(errOut, "%s: %v\n", op, err)
		return 1
	}
	fmt.Fprintf(errOut, "%s: %s\n", op, e.Message)
	for _, d := range e.Details {
		fmt.Fprintf(errOut, "  - %s\n", d)
	}
	if e.Kind == apperr.KindValidation {
		return 2
	}
	if e.Cause != nil {
		fmt.Fprintf(errOut, "  cause: %v\n", e.Cause)
	}
	return 1
}

// checkFile applies the document allow-list, taking the media type from the
// file name extension.
func checkFile(path string) error {
	return fingerprint.CheckDocument(filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)))
}

func hashFile(path string) (fingerprint.Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return fingerprint.FromReader(f)
}

func formatTime(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: veritasctl hash <file>")
		return 2
	}

	if err := checkFile(fs.Arg(0)); err != nil {
		return fail(errOut, "hash", err)
	}
	fp, err := hashFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read file: %v\n", err)
		return 1
	}
	cid, err := fingerprint.CID(fp)
	if err != nil {
		return fail(errOut, "hash", err)
	}

	fmt.Fprintf(out, "hash: %s\n", fp)
	fmt.Fprintf(out, "cid:  %s\n", cid)
	return 0
}

func loadConfig(path string, errOut io.Writer) (config.Config, bool) {
	cfg, err := config.Load(path, getenv)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return cfg, false
	}
	return cfg, true
}

func cmdAnchor(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("anchor", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var configPath string
	var mock bool
	fs.StringVar(&configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&mock, "mock", false, "Simulate the anchor")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: veritasctl anchor [--config <file>] [--mock] <file|hash>")
		return 2
	}

	// A well-formed fingerprint is anchored as is, anything else is a file to hash
	target := fs.Arg(0)
	fp, err := fingerprint.Parse(target)
	if err != nil {
		if err := checkFile(target); err != nil {
			return fail(errOut, "anchor", err)
		}
		fp, err = hashFile(target)
		if err != nil {
			fmt.Fprintf(errOut, "%s is neither a fingerprint nor a readable file: %v\n", target, err)
			return 2
		}
	}

	cfg, ok := loadConfig(configPath, errOut)
	if !ok {
		return 1
	}
	if mock {
		cfg.Chain.ForceMock = true
	}

	dialer, wallets := ledgerAccess(cfg.Chain)
	client, err := anchor.New(dialer, cfg.Chain)
	if err != nil {
		return fail(errOut, "anchor", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var wallet ledger.Wallet
	if !client.Simulated() {
		if wallets == nil {
			fmt.Fprintln(errOut, "anchor: no signing key configured (set PRIVATE_KEY)")
			return 1
		}
		w, release, err := wallets.OpenWallet(ctx)
		if err != nil {
			return fail(errOut, "anchor", err)
		}
		defer release()
		wallet = w
	}

	res, err := client.Anchor(ctx, fp, wallet)
	if err != nil {
		return fail(errOut, "anchor", err)
	}

	fmt.Fprintf(out, "hash:      %s\n", fp)
	fmt.Fprintf(out, "tx:        %s\n", res.TxHash)
	fmt.Fprintf(out, "author:    %s\n", res.Author)
	fmt.Fprintf(out, "timestamp: %s\n", formatTime(res.Timestamp))
	fmt.Fprintf(out, "network:   %s\n", res.Network)
	if res.Simulated {
		fmt.Fprintln(out, "mode:      mock (nothing was sent to the ledger)")
	} else if u := config.ExplorerTxURL(res.Network, res.TxHash); u != "" {
		fmt.Fprintf(out, "explorer:  %s\n", u)
	}
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var configPath string
	fs.StringVar(&configPath, "config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: veritasctl verify [--config <file>] <hash>")
		return 2
	}
	fp, err := fingerprint.Parse(fs.Arg(0))
	if err != nil {
		return fail(errOut, "verify", err)
	}

	cfg, ok := loadConfig(configPath, errOut)
	if !ok {
		return 1
	}
	dialer, _ := ledgerAccess(cfg.Chain)

	ctx, cancel := signalContext()
	defer cancel()

	res, err := verify.New(dialer, cfg.Chain, nil).Verify(ctx, fp)
	if err != nil {
		return fail(errOut, "verify", err)
	}

	fmt.Fprintf(out, "hash:      %s\n", fp)
	fmt.Fprintf(out, "exists:    %t\n", res.Exists)
	if res.Exists {
		fmt.Fprintf(out, "author:    %s\n", res.Author)
		fmt.Fprintf(out, "timestamp: %s\n", formatTime(res.Timestamp))
		if res.ExplorerURL != "" {
			fmt.Fprintf(out, "explorer:  %s\n", res.ExplorerURL)
		}
	}
	return 0
}

func cmdCertificate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("certificate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var in certificate.Input
	var outPath string
	var noQR bool
	fs.StringVar(&in.Hash, "hash", "", "Document fingerprint")
	fs.StringVar(&in.TxHash, "tx", "", "Anchoring transaction hash")
	fs.StringVar(&in.Network, "network", "", "Network name")
	fs.StringVar(&in.ContractAddress, "contract", "", "Registry contract address")
	fs.StringVar(&in.IssuerAddress, "issuer", "", "Issuer account")
	fs.StringVar(&in.IssuedTo, "to", "", "Recipient name")
	fs.StringVar(&in.IssuedAt, "issued-at", "", "Issuance time, RFC 3339")
	fs.StringVar(&in.VerifyBaseURL, "base-url", "", "Public URL of the verification page")
	fs.StringVar(&outPath, "out", "", "Output file (default: generated name in the current directory)")
	fs.BoolVar(&noQR, "no-qr", false, "Omit the QR code")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: veritasctl certificate --hash <hash> --tx <hash> --network <name> --contract <address> [--out <file>]")
		return 2
	}

	cfg, ok := loadConfig("", errOut)
	if !ok {
		return 1
	}

	gen := certificate.New(certificate.Options{
		AppName:       cfg.AppName,
		VerifyBaseURL: cfg.PublicURL,
		QR:            !noQR,
	})
	cert, err := gen.Generate(in)
	if err != nil {
		return fail(errOut, "certificate", err)
	}

	if outPath == "" {
		outPath = cert.Filename
	}
	if err := os.WriteFile(outPath, cert.PDF, 0o644); err != nil {
		fmt.Fprintf(errOut, "write certificate: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "id:     %s\n", cert.ID)
	fmt.Fprintf(out, "serial: %s\n", cert.Serial)
	fmt.Fprintf(out, "verify: %s\n", cert.VerifyURL)
	fmt.Fprintf(out, "file:   %s\n", filepath.Clean(outPath))
	return 0
}
