package model

import "time"

// DocumentStatus is the signing lifecycle state of a document.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPending   DocumentStatus = "pending"
	StatusSigned    DocumentStatus = "signed"
	StatusCompleted DocumentStatus = "completed"
)

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusSigned, StatusCompleted:
		return true
	}
	return false
}

// Document is an uploaded file whose encrypted payload lives on Walrus and whose
// access policy lives in an on-chain allowlist.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Size        int64          `json:"size"`
	ContentHash string         `json:"content_hash"`
	UploadedBy  string         `json:"uploaded_by"`
	UploadedAt  time.Time      `json:"uploaded_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Status      DocumentStatus `json:"status"`

	BlobID         string `json:"blob_id"`
	BlobObjectID   string `json:"blob_object_id,omitempty"`
	EncryptionID   string `json:"encryption_id"`
	AllowlistID    string `json:"allowlist_id"`
	CapID          string `json:"cap_id"`
	WalrusService  string `json:"walrus_service"`
	RegisterDigest string `json:"register_digest"`
	StoragePath    string `json:"storage_path,omitempty"`

	SignatureFields []SignatureField `json:"signature_fields"`
	SharedWith      []string         `json:"shared_with"`
}

// CanView reports whether address is the uploader or in the sharing list.
func (d *Document) CanView(address string) bool {
	if d.UploadedBy == address {
		return true
	}
	for _, a := range d.SharedWith {
		if a == address {
			return true
		}
	}
	return false
}

// Field returns the signature field with the given id.
func (d *Document) Field(id string) (*SignatureField, bool) {
	for i := range d.SignatureFields {
		if d.SignatureFields[i].ID == id {
			return &d.SignatureFields[i], true
		}
	}
	return nil, false
}

// DeriveStatus computes a document status from its signature fields.
func DeriveStatus(fields []SignatureField) DocumentStatus {
	if len(fields) == 0 {
		return StatusDraft
	}
	signed := 0
	for _, f := range fields {
		if f.IsSigned() {
			signed++
		}
	}
	switch signed {
	case 0:
		return StatusPending
	case len(fields):
		return StatusCompleted
	default:
		return StatusSigned
	}
}
