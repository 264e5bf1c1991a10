package model

import "time"

// SignatureField is a placed signature box on a document page.
type SignatureField struct {
	ID            string     `json:"id"`
	DocumentID    string     `json:"document_id"`
	X             float64    `json:"x"`
	Y             float64    `json:"y"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	SignedBy      string     `json:"signed_by,omitempty"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
}

// IsSigned reports whether someone signed the field.
func (f SignatureField) IsSigned() bool {
	return f.SignedBy != ""
}

// SignatureRecord is a SignatureRecorded event read back from the chain.
type SignatureRecord struct {
	TxDigest    string    `json:"transaction_id"`
	EventSeq    string    `json:"event_seq"`
	DocumentID  string    `json:"document_id"`
	Signer      string    `json:"signer"`
	Signature   string    `json:"signature"`
	ContentHash string    `json:"content_hash"`
	SignedAt    time.Time `json:"signed_at"`
}

// Allowlist is an on-chain access policy together with the Cap that administers it.
type Allowlist struct {
	ID     string `json:"id"`
	CapID  string `json:"cap_id"`
	Name   string `json:"name"`
	Digest string `json:"digest"`
}

// EventCursor is the position of the last indexed chain event.
type EventCursor struct {
	TxDigest string `json:"tx_digest"`
	EventSeq string `json:"event_seq"`
}
