package repository

import (
	"context"

	"suidoc/internal/model"
)

// SignatureRecordRepository stores signature events indexed from the chain.
type SignatureRecordRepository interface {
	// Upsert stores a record; repeated events (same tx digest and event seq) are ignored.
	Upsert(ctx context.Context, rec *model.SignatureRecord) error
	ListByDocument(ctx context.Context, documentID string) ([]model.SignatureRecord, error)
	// FindByHashAndSigner returns the latest record for the content hash and signer.
	FindByHashAndSigner(ctx context.Context, contentHash, signer string) (*model.SignatureRecord, error)
}

// CursorRepository persists indexer positions by name.
type CursorRepository interface {
	LoadCursor(ctx context.Context, name string) (*model.EventCursor, error)
	SaveCursor(ctx context.Context, name string, cur model.EventCursor) error
}
