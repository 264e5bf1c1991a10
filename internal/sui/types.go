package sui

import (
	"encoding/json"
	"strings"
)

// ResponseOptions selects which parts of a transaction response the node returns.
type ResponseOptions struct {
	ShowInput          bool `json:"showInput,omitempty"`
	ShowEffects        bool `json:"showEffects,omitempty"`
	ShowEvents         bool `json:"showEvents,omitempty"`
	ShowObjectChanges  bool `json:"showObjectChanges,omitempty"`
	ShowBalanceChanges bool `json:"showBalanceChanges,omitempty"`
}

// DefaultResponseOptions asks for effects, events and object changes.
func DefaultResponseOptions() *ResponseOptions {
	return &ResponseOptions{ShowEffects: true, ShowEvents: true, ShowObjectChanges: true}
}

// MoveCallRequest describes a single Move function call.
type MoveCallRequest struct {
	Signer    string
	PackageID string
	Module    string
	Function  string
	TypeArgs  []string
	Args      []any
	Gas       *string
	GasBudget int64
}

// TransactionBytes is the result of unsafe_moveCall.
type TransactionBytes struct {
	TxBytes      string          `json:"txBytes"`
	Gas          json.RawMessage `json:"gas"`
	InputObjects json.RawMessage `json:"inputObjects"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Effects struct {
	Status ExecutionStatus `json:"status"`
}

// ObjectChange is one entry of a transaction's objectChanges.
type ObjectChange struct {
	Type       string          `json:"type"`
	Sender     string          `json:"sender,omitempty"`
	Owner      json.RawMessage `json:"owner,omitempty"`
	ObjectType string          `json:"objectType,omitempty"`
	ObjectID   string          `json:"objectId,omitempty"`
	Version    string          `json:"version,omitempty"`
	Digest     string          `json:"digest,omitempty"`
}

// OwnerKind returns "AddressOwner", "ObjectOwner", "Shared" or "Immutable".
func (o ObjectChange) OwnerKind() string {
	return ownerKind(o.Owner)
}

// OwnerAddress returns the owning address for AddressOwner objects.
func (o ObjectChange) OwnerAddress() string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(o.Owner, &m); err != nil {
		return ""
	}
	var addr string
	if err := json.Unmarshal(m["AddressOwner"], &addr); err != nil {
		return ""
	}
	return addr
}

func ownerKind(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	for k := range m {
		return k
	}
	return ""
}

// FindCreated returns the first created object owned the given way.
func FindCreated(changes []ObjectChange, kind string) (ObjectChange, bool) {
	for _, c := range changes {
		if c.Type == "created" && c.OwnerKind() == kind {
			return c, true
		}
	}
	return ObjectChange{}, false
}

// TransactionBlockResponse is the subset of SuiTransactionBlockResponse the app reads.
type TransactionBlockResponse struct {
	Digest        string         `json:"digest"`
	Effects       *Effects       `json:"effects,omitempty"`
	Events        []Event        `json:"events,omitempty"`
	ObjectChanges []ObjectChange `json:"objectChanges,omitempty"`
	TimestampMs   string         `json:"timestampMs,omitempty"`
	Checkpoint    string         `json:"checkpoint,omitempty"`
}

// Succeeded reports whether effects are present and successful.
func (r *TransactionBlockResponse) Succeeded() bool {
	return r.Effects != nil && r.Effects.Status.Status == "success"
}

type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

type Event struct {
	ID                EventID         `json:"id"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson"`
	TimestampMs       string          `json:"timestampMs,omitempty"`
}

type EventPage struct {
	Data        []Event  `json:"data"`
	NextCursor  *EventID `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}

type ObjectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

type ObjectData struct {
	ObjectID string          `json:"objectId"`
	Version  string          `json:"version"`
	Digest   string          `json:"digest"`
	Type     string          `json:"type,omitempty"`
	Owner    json.RawMessage `json:"owner,omitempty"`
	Content  *ObjectContent  `json:"content,omitempty"`
}

type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

type ObjectResponse struct {
	Data  *ObjectData  `json:"data"`
	Error *ObjectError `json:"error,omitempty"`
}

type ObjectPage struct {
	Data        []ObjectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// ExplorerURL joins an explorer base URL and an object id or digest.
func ExplorerURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/" + id
}
