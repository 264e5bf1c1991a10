// Package migration applies the schema in order and records each applied step in
// schema_migrations, so new steps run on existing databases.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id              TEXT        PRIMARY KEY,
  title           TEXT        NOT NULL,
  filename        TEXT        NOT NULL DEFAULT '',
  content_type    TEXT        NOT NULL DEFAULT '',
  size            BIGINT      NOT NULL CHECK (size >= 0),
  content_hash    TEXT        NOT NULL,
  uploaded_by     TEXT        NOT NULL,
  uploaded_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  status          TEXT        NOT NULL CHECK (status IN ('draft', 'pending', 'signed', 'completed')),
  blob_id         TEXT        NOT NULL,
  blob_object_id  TEXT        NOT NULL DEFAULT '',
  encryption_id   TEXT        NOT NULL,
  allowlist_id    TEXT        NOT NULL,
  cap_id          TEXT        NOT NULL,
  walrus_service  TEXT        NOT NULL,
  register_digest TEXT        NOT NULL DEFAULT '',
  storage_path    TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_documents_uploaded_by",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_uploaded_by ON documents (uploaded_by);`,
	},
	{
		Name: "create_index_documents_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents (uploaded_at);`,
	},
	{
		Name: "create_table_signature_fields",
		SQL: `CREATE TABLE IF NOT EXISTS signature_fields (
  id             TEXT             PRIMARY KEY,
  document_id    TEXT             NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  x              DOUBLE PRECISION NOT NULL CHECK (x >= 0),
  y              DOUBLE PRECISION NOT NULL CHECK (y >= 0),
  width          DOUBLE PRECISION NOT NULL CHECK (width > 0),
  height         DOUBLE PRECISION NOT NULL CHECK (height > 0),
  signed_by      TEXT,
  signed_at      TIMESTAMPTZ,
  transaction_id TEXT,
  created_at     TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_signature_fields_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_signature_fields_document_id ON signature_fields (document_id);`,
	},
	{
		Name: "create_table_document_shares",
		SQL: `CREATE TABLE IF NOT EXISTS document_shares (
  document_id TEXT        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  address     TEXT        NOT NULL,
  added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (document_id, address)
);`,
	},
	{
		Name: "create_index_document_shares_address",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_shares_address ON document_shares (address);`,
	},
	{
		Name: "create_table_signature_records",
		SQL: `CREATE TABLE IF NOT EXISTS signature_records (
  tx_digest    TEXT        NOT NULL,
  event_seq    TEXT        NOT NULL,
  document_id  TEXT        NOT NULL,
  signer       TEXT        NOT NULL,
  signature    TEXT        NOT NULL,
  content_hash TEXT        NOT NULL,
  signed_at    TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (tx_digest, event_seq)
);`,
	},
	{
		Name: "create_index_signature_records_hash_signer",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_signature_records_hash_signer ON signature_records (content_hash, signer);`,
	},
	{
		Name: "create_table_indexer_cursors",
		SQL: `CREATE TABLE IF NOT EXISTS indexer_cursors (
  name       TEXT        PRIMARY KEY,
  tx_digest  TEXT        NOT NULL,
  event_seq  TEXT        NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureMigrated applies every step not yet recorded in schema_migrations.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))
	log.Info("db_migration_check", zap.String("status", "starting"))

	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, step := range steps {
		stepStart := time.Now()

		var done bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, step.Name,
		).Scan(&done); err != nil {
			return fmt.Errorf("check migration step %s: %w", step.Name, err)
		}
		if done {
			continue
		}

		if err := applyStep(ctx, db, step); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		applied++

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if applied == 0 {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("msg", "schema up to date"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("applied", applied),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func applyStep(ctx context.Context, db *sql.DB, step migrationStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
		return err
	}
	return tx.Commit()
}
