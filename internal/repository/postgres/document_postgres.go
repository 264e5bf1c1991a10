package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"suidoc/internal/model"
	"suidoc/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// IsNoRowsError reports whether err means the row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

const documentColumns = `d.id, d.title, d.filename, d.content_type, d.size, d.content_hash,
	d.uploaded_by, d.uploaded_at, d.updated_at, d.status,
	d.blob_id, d.blob_object_id, d.encryption_id, d.allowlist_id, d.cap_id,
	d.walrus_service, d.register_digest, d.storage_path`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*model.Document, error) {
	var d model.Document
	var status string
	if err := s.Scan(
		&d.ID, &d.Title, &d.Filename, &d.ContentType, &d.Size, &d.ContentHash,
		&d.UploadedBy, &d.UploadedAt, &d.UpdatedAt, &status,
		&d.BlobID, &d.BlobObjectID, &d.EncryptionID, &d.AllowlistID, &d.CapID,
		&d.WalrusService, &d.RegisterDigest, &d.StoragePath,
	); err != nil {
		return nil, err
	}
	d.Status = model.DocumentStatus(status)
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents AS d (id, title, filename, content_type, size, content_hash,
			uploaded_by, uploaded_at, updated_at, status,
			blob_id, blob_object_id, encryption_id, allowlist_id, cap_id,
			walrus_service, register_digest, storage_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID, doc.Title, doc.Filename, doc.ContentType, doc.Size, doc.ContentHash,
		doc.UploadedBy, doc.UploadedAt, doc.UpdatedAt, string(doc.Status),
		doc.BlobID, doc.BlobObjectID, doc.EncryptionID, doc.AllowlistID, doc.CapID,
		doc.WalrusService, doc.RegisterDigest, doc.StoragePath,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	out.SignatureFields = []model.SignatureField{}
	out.SharedWith = []string{}
	return out, nil
}

// FindByID fetches a document with its signature fields and sharing list.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents d WHERE d.id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}

	if d.SignatureFields, err = r.fields(ctx, id); err != nil {
		return nil, err
	}
	if d.SharedWith, err = r.shares(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DocumentPostgres) fields(ctx context.Context, documentID string) ([]model.SignatureField, error) {
	const q = `
		SELECT id, document_id, x, y, width, height, signed_by, signed_at, transaction_id
		FROM signature_fields
		WHERE document_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SignatureField, 0)
	for rows.Next() {
		var f model.SignatureField
		var signedBy, txID sql.NullString
		var signedAt sql.NullTime
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.X, &f.Y, &f.Width, &f.Height, &signedBy, &signedAt, &txID); err != nil {
			return nil, err
		}
		f.SignedBy = signedBy.String
		f.TransactionID = txID.String
		if signedAt.Valid {
			t := signedAt.Time
			f.SignedAt = &t
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *DocumentPostgres) shares(ctx context.Context, documentID string) ([]string, error) {
	const q = `SELECT address FROM document_shares WHERE document_id = $1 ORDER BY added_at, address`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// buildWhere renders the filter as a WHERE clause with positional args.
func buildWhere(viewer, search string, status model.DocumentStatus) (string, []any) {
	var conds []string
	var args []any

	if viewer != "" {
		args = append(args, viewer)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(d.uploaded_by = $%d OR EXISTS (SELECT 1 FROM document_shares s WHERE s.document_id = d.id AND s.address = $%d))", n, n))
	}
	if search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		conds = append(conds, fmt.Sprintf("d.title ILIKE $%d", len(args)))
	}
	if status != "" {
		args = append(args, string(status))
		conds = append(conds, fmt.Sprintf("d.status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
// Signature fields and shares are not loaded.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter) (*repository.PageResult[model.Document], error) {
	where, args := buildWhere(f.Viewer, f.Search, f.Status)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents d`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := fmt.Sprintf(`SELECT %s FROM documents d%s ORDER BY d.uploaded_at DESC, d.id DESC LIMIT $%d OFFSET $%d`,
		documentColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID. Fields and shares go with it (ON DELETE CASCADE).
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *DocumentPostgres) CountByStatus(ctx context.Context, viewer string) (map[model.DocumentStatus]int, error) {
	where, args := buildWhere(viewer, "", "")
	rows, err := r.db.QueryContext(ctx, `SELECT d.status, COUNT(*) FROM documents d`+where+` GROUP BY d.status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.DocumentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.DocumentStatus(status)] = n
	}
	return out, rows.Err()
}

// lockDocument takes the row lock that serializes field changes of one document.
func lockDocument(ctx context.Context, tx *sql.Tx, id string) (model.DocumentStatus, error) {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	return model.DocumentStatus(status), err
}

// refreshStatus derives the status from the committed fields. It must run
// after lockDocument in the same transaction.
func refreshStatus(ctx context.Context, tx *sql.Tx, id string, at time.Time) (model.DocumentStatus, error) {
	const q = `
		UPDATE documents SET status = (
			SELECT CASE
				WHEN count(*) = 0 THEN 'draft'
				WHEN count(signed_by) = 0 THEN 'pending'
				WHEN count(signed_by) = count(*) THEN 'completed'
				ELSE 'signed'
			END
			FROM signature_fields WHERE document_id = $1
		), updated_at = $2
		WHERE id = $1
		RETURNING status
	`
	var status string
	if err := tx.QueryRowContext(ctx, q, id, at).Scan(&status); err != nil {
		return "", err
	}
	return model.DocumentStatus(status), nil
}

func (r *DocumentPostgres) AddSignatureField(ctx context.Context, f *model.SignatureField) (model.DocumentStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := lockDocument(ctx, tx, f.DocumentID)
	if err != nil {
		return "", err
	}
	if current == model.StatusCompleted {
		return "", repository.ErrDocumentCompleted
	}

	const q = `
		INSERT INTO signature_fields (id, document_id, x, y, width, height)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, q, f.ID, f.DocumentID, f.X, f.Y, f.Width, f.Height); err != nil {
		return "", err
	}
	status, err := refreshStatus(ctx, tx, f.DocumentID, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return status, tx.Commit()
}

func (r *DocumentPostgres) SignField(ctx context.Context, documentID, fieldID, signer, txDigest string, at time.Time) (model.DocumentStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := lockDocument(ctx, tx, documentID); err != nil {
		return "", err
	}

	const q = `
		UPDATE signature_fields
		SET signed_by = $3, signed_at = $4, transaction_id = $5
		WHERE document_id = $1 AND id = $2 AND signed_by IS NULL
	`
	res, err := tx.ExecContext(ctx, q, documentID, fieldID, signer, at, txDigest)
	if err != nil {
		return "", err
	}
	if err := requireAffected(res); err != nil {
		return "", err
	}
	status, err := refreshStatus(ctx, tx, documentID, at)
	if err != nil {
		return "", err
	}
	return status, tx.Commit()
}

func (r *DocumentPostgres) AddShares(ctx context.Context, id string, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO document_shares (document_id, address, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id, address) DO NOTHING
	`
	now := time.Now().UTC()
	for _, a := range addresses {
		if _, err := tx.ExecContext(ctx, q, id, a, now); err != nil {
			return fmt.Errorf("share with %s: %w", a, err)
		}
	}
	return tx.Commit()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
