package database

import (
	"database/sql"

	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/models"
)

// RecordAnchor stores an anchor. A real anchor replaces an earlier simulated
// one for the same hash; a second real anchor is ignored.
func (d *Database) RecordAnchor(r *models.AnchorRecord) error {
	query := `
		INSERT INTO anchors (hash, file_name, tx_hash, author, anchored_at, network, simulated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			file_name = excluded.file_name,
			tx_hash = excluded.tx_hash,
			author = excluded.author,
			anchored_at = excluded.anchored_at,
			network = excluded.network,
			simulated = excluded.simulated
		WHERE anchors.simulated = 1
	`

	_, err := d.db.Exec(query, r.Hash, r.FileName, r.TxHash, r.Author, r.AnchoredAt, r.Network, r.Simulated)
	if err != nil {
		return errl.Errorf("failed to record anchor: %w", err)
	}
	return nil
}

// GetAnchor retrieves the anchor of a hash, or nil when there is none
func (d *Database) GetAnchor(hash string) (*models.AnchorRecord, error) {
	query := `
		SELECT hash, file_name, tx_hash, author, anchored_at, network, simulated, created_at
		FROM anchors
		WHERE hash = ?
	`

	var r models.AnchorRecord
	err := d.db.QueryRow(query, hash).Scan(
		&r.Hash, &r.FileName, &r.TxHash, &r.Author, &r.AnchoredAt, &r.Network, &r.Simulated, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errl.Errorf("failed to get anchor: %w", err)
	}
	return &r, nil
}

// ListAnchors retrieves the most recent anchors, newest first
func (d *Database) ListAnchors(limit int) ([]models.AnchorRecord, error) {
	query := `
		SELECT hash, file_name, tx_hash, author, anchored_at, network, simulated, created_at
		FROM anchors
		ORDER BY anchored_at DESC, hash
		LIMIT ?
	`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, errl.Errorf("failed to list anchors: %w", err)
	}
	defer rows.Close()

	records := []models.AnchorRecord{}
	for rows.Next() {
		var r models.AnchorRecord
		if err := rows.Scan(
			&r.Hash, &r.FileName, &r.TxHash, &r.Author, &r.AnchoredAt, &r.Network, &r.Simulated, &r.CreatedAt,
		); err != nil {
			return nil, errl.Errorf("failed to scan anchor: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errl.Errorf("failed to iterate anchors: %w", err)
	}

	return records, nil
}
