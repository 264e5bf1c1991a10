package postgres

import (
	"context"
	"database/sql"
	"time"

	"suidoc/internal/model"
	"suidoc/internal/repository"
)

// SignaturePostgres stores indexed signature events and indexer cursors.
type SignaturePostgres struct {
	db *sql.DB
}

func NewSignaturePostgres(db *sql.DB) *SignaturePostgres {
	return &SignaturePostgres{db: db}
}

var (
	_ repository.SignatureRecordRepository = (*SignaturePostgres)(nil)
	_ repository.CursorRepository          = (*SignaturePostgres)(nil)
)

const recordColumns = `tx_digest, event_seq, document_id, signer, signature, content_hash, signed_at`

func (r *SignaturePostgres) Upsert(ctx context.Context, rec *model.SignatureRecord) error {
	const q = `
		INSERT INTO signature_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tx_digest, event_seq) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.TxDigest, rec.EventSeq, rec.DocumentID, rec.Signer, rec.Signature, rec.ContentHash, rec.SignedAt)
	return err
}

func (r *SignaturePostgres) ListByDocument(ctx context.Context, documentID string) ([]model.SignatureRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM signature_records WHERE document_id = $1 ORDER BY signed_at, tx_digest`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SignatureRecord, 0)
	for rows.Next() {
		var rec model.SignatureRecord
		if err := rows.Scan(&rec.TxDigest, &rec.EventSeq, &rec.DocumentID, &rec.Signer,
			&rec.Signature, &rec.ContentHash, &rec.SignedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SignaturePostgres) FindByHashAndSigner(ctx context.Context, contentHash, signer string) (*model.SignatureRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM signature_records
		WHERE content_hash = $1 AND signer = $2
		ORDER BY signed_at DESC
		LIMIT 1`
	var rec model.SignatureRecord
	if err := r.db.QueryRowContext(ctx, q, contentHash, signer).Scan(
		&rec.TxDigest, &rec.EventSeq, &rec.DocumentID, &rec.Signer,
		&rec.Signature, &rec.ContentHash, &rec.SignedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LoadCursor returns nil without error when no cursor was saved yet.
func (r *SignaturePostgres) LoadCursor(ctx context.Context, name string) (*model.EventCursor, error) {
	const q = `SELECT tx_digest, event_seq FROM indexer_cursors WHERE name = $1`
	var cur model.EventCursor
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&cur.TxDigest, &cur.EventSeq); err != nil {
		if IsNoRowsError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &cur, nil
}

func (r *SignaturePostgres) SaveCursor(ctx context.Context, name string, cur model.EventCursor) error {
	const q = `
		INSERT INTO indexer_cursors (name, tx_digest, event_seq, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET tx_digest = EXCLUDED.tx_digest, event_seq = EXCLUDED.event_seq, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q, name, cur.TxDigest, cur.EventSeq, time.Now().UTC())
	return err
}
