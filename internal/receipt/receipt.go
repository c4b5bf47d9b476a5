// Package receipt issues signed anchor receipts.
//
// A receipt is an RS256 JWT over the anchor result, returned to the caller so
// it can later prove what the service answered without trusting the service's
// logs. The public key is published as a JWKS.
package receipt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/errl"
)

// KeyID identifies the signing key in the JWKS.
const KeyID = "veritas-receipt-key"

// Lifetime is the validity of a receipt.
const Lifetime = 365 * 24 * time.Hour

// Claims is the content of a receipt.
type Claims struct {
	Hash      string `json:"hash"`
	TxHash    string `json:"txHash"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
	Network   string `json:"network"`
	Simulated bool   `json:"simulated"`
	FileName  string `json:"fileName,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and checks receipts.
type Service struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string

	now func() time.Time
}

// NewService creates a service with a fresh RSA key. Receipts signed before a
// restart can no longer be checked by this service.
func NewService(issuer string) (*Service, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errl.Errorf("failed to generate RSA key: %w", err)
	}

	slog.Info("Receipt service initialized", "issuer", issuer)
	return &Service{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// Issue signs c. Registered claims are filled in by the service.
func (s *Service) Issue(c Claims) (string, error) {
	now := s.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   c.Hash,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	token.Header["kid"] = KeyID

	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", errl.Errorf("failed to sign receipt: %w", err)
	}

	slog.Debug("Receipt issued", "hash", c.Hash, "jti", c.ID)
	return signed, nil
}

// Verify checks the signature, issuer and expiry of a receipt and returns
// its claims. Any failure is a validation error.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid receipt", err)
	}
	return claims, nil
}

// PublicKeyPEM returns the verification key in PEM format.
func (s *Service) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(s.publicKey)
	if err != nil {
		return "", errl.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// JWKS returns the JSON Web Key Set holding the verification key.
func (s *Service) JWKS() (map[string]any, error) {
	jk, err := jwk.Import(s.publicKey)
	if err != nil {
		return nil, errl.Errorf("failed to import public key: %w", err)
	}

	if err := jk.Set("use", "sig"); err != nil {
		return nil, errl.Error(err)
	}
	if err := jk.Set(jwk.KeyIDKey, KeyID); err != nil {
		return nil, errl.Error(err)
	}
	if err := jk.Set(jwk.AlgorithmKey, "RS256"); err != nil {
		return nil, errl.Error(err)
	}

	return map[string]any{"keys": []any{jk}}, nil
}
