package models

import "time"

// AnchorRecord is the audit entry kept for every successful anchor,
// simulated ones included.
type AnchorRecord struct {
	Hash       string    `json:"hash"`
	FileName   string    `json:"fileName"`
	TxHash     string    `json:"txHash"`
	Author     string    `json:"author"`
	AnchoredAt int64     `json:"anchoredAt"`
	Network    string    `json:"network"`
	Simulated  bool      `json:"simulated"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CertificateRecord logs a generated certificate. The PDF itself is not kept.
type CertificateRecord struct {
	ID        string    `json:"id"`
	Serial    string    `json:"serial"`
	Hash      string    `json:"hash"`
	TxHash    string    `json:"txHash"`
	Network   string    `json:"network"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
}
