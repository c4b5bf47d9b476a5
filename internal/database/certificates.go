package database

import (
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/models"
)

// RecordCertificate logs a generated certificate
func (d *Database) RecordCertificate(r *models.CertificateRecord) error {
	query := `
		INSERT INTO certificates (serial, id, hash, tx_hash, network, filename)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := d.db.Exec(query, r.Serial, r.ID, r.Hash, r.TxHash, r.Network, r.Filename); err != nil {
		return errl.Errorf("failed to record certificate: %w", err)
	}
	return nil
}

// ListCertificates retrieves generated certificates, newest first. When hash
// is not empty only the certificates of that document are returned.
func (d *Database) ListCertificates(hash string, limit int) ([]models.CertificateRecord, error) {
	query := `
		SELECT serial, id, hash, tx_hash, network, filename, created_at
		FROM certificates
		WHERE ? = '' OR hash = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := d.db.Query(query, hash, hash, limit)
	if err != nil {
		return nil, errl.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	records := []models.CertificateRecord{}
	for rows.Next() {
		var r models.CertificateRecord
		if err := rows.Scan(&r.Serial, &r.ID, &r.Hash, &r.TxHash, &r.Network, &r.Filename, &r.CreatedAt); err != nil {
			return nil, errl.Errorf("failed to scan certificate: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errl.Errorf("failed to iterate certificates: %w", err)
	}

	return records, nil
}
