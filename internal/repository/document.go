package repository

import (
	"context"
	"errors"
	"time"

	"suidoc/internal/model"
)

// DocumentRepository defines data access for documents, their signature fields and
// sharing list. No business logic here, strictly persistence operations.
// Lookups of missing rows return sql.ErrNoRows.
type DocumentRepository interface {
	// Create inserts a new document record.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID with signature fields and shares loaded.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns documents visible to the filter's viewer and the total count.
	List(ctx context.Context, f DocumentFilter) (*PageResult[model.Document], error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// CountByStatus counts documents visible to viewer grouped by status.
	CountByStatus(ctx context.Context, viewer string) (map[model.DocumentStatus]int, error)

	// AddSignatureField inserts a field and returns the document status derived
	// from all of its fields. It fails with ErrDocumentCompleted once every field
	// of the document is signed.
	AddSignatureField(ctx context.Context, field *model.SignatureField) (model.DocumentStatus, error)

	// SignField marks an unsigned field as signed and returns the document status
	// derived from all of its fields. It returns sql.ErrNoRows when the document or
	// field does not exist or the field was already signed.
	SignField(ctx context.Context, documentID, fieldID, signer, txDigest string, at time.Time) (model.DocumentStatus, error)

	// AddShares adds addresses to the sharing list, ignoring ones already present.
	AddShares(ctx context.Context, id string, addresses []string) error
}

// ErrDocumentCompleted is returned when a completed document is modified.
var ErrDocumentCompleted = errors.New("document is completed")

// DocumentFilter narrows List. An empty Viewer means no visibility restriction.
type DocumentFilter struct {
	Viewer string
	Search string
	Status model.DocumentStatus
	PageQuery
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
