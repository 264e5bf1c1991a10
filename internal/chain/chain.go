// Package chain wraps the Move calls the application makes on Sui. Every
// submission is built by the fullnode, signed by the relayer wallet, executed
// and then polled until confirmed.
package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"suidoc/internal/config"
	"suidoc/internal/metrics"
	"suidoc/internal/model"
	"suidoc/internal/sui"
	"suidoc/internal/wallet"

	"go.uber.org/zap"
)

var (
	ErrMissingAllowlist = errors.New("allowlist object not found in transaction")
	ErrMissingCap       = errors.New("allowlist cap not found in transaction")
)

const maxOwnedPages = 10

// Chain is the set of on-chain operations the services depend on.
type Chain interface {
	CreateAllowlist(ctx context.Context, name string) (*model.Allowlist, error)
	AddToAllowlist(ctx context.Context, allowlistID, capID, address string) (string, error)
	PublishBlob(ctx context.Context, allowlistID, capID, blobID string) (string, error)
	RecordSignature(ctx context.Context, sub SignatureSubmission) (string, error)
	AllowlistMembers(ctx context.Context, allowlistID string) ([]string, error)
	IsAllowed(ctx context.Context, policyID, address string) (bool, error)
	OwnedDocuments(ctx context.Context, owner string) ([]sui.ObjectData, error)
	SignatureEvents(ctx context.Context, cursor *sui.EventID, limit int) (*EventBatch, error)
}

// RPC is the part of *sui.Client used here.
type RPC interface {
	MoveCall(ctx context.Context, req sui.MoveCallRequest) (*sui.TransactionBytes, error)
	ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string, opts *sui.ResponseOptions) (*sui.TransactionBlockResponse, error)
	WaitForTransaction(ctx context.Context, digest string, interval, timeout time.Duration) (*sui.TransactionBlockResponse, error)
	GetObject(ctx context.Context, objectID string) (*sui.ObjectResponse, error)
	GetOwnedObjects(ctx context.Context, owner, structType string, cursor *string, limit int) (*sui.ObjectPage, error)
	QueryEvents(ctx context.Context, moveEventType string, cursor *sui.EventID, limit int, descending bool) (*sui.EventPage, error)
}

// Signer signs transaction bytes for the relayer address.
type Signer interface {
	Address() string
	SignTransaction(txBytes []byte) string
}

// SignatureSubmission is the payload of document::record_signature.
type SignatureSubmission struct {
	DocumentID  string
	ContentHash string
	Signer      string
	Signature   string
}

// EventBatch is one page of indexed signature events.
type EventBatch struct {
	Records []model.SignatureRecord
	Next    *sui.EventID
	HasMore bool
}

type suiChain struct {
	rpc     RPC
	signer  Signer
	cfg     config.SuiConfig
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New returns a Chain backed by a Sui fullnode.
func New(rpc RPC, signer Signer, cfg config.SuiConfig, log *zap.Logger, m *metrics.Metrics) Chain {
	if log == nil {
		log = zap.NewNop()
	}
	return &suiChain{
		rpc:     rpc,
		signer:  signer,
		cfg:     cfg,
		log:     log.With(zap.String("component", "chain")),
		metrics: m,
	}
}

func (c *suiChain) submit(ctx context.Context, pkg, module, function string, args []any) (*sui.TransactionBlockResponse, error) {
	start := time.Now()
	resp, err := c.execute(ctx, pkg, module, function, args)
	c.metrics.Confirmation(function, time.Since(start), err)
	if err != nil {
		c.log.Warn("move call failed",
			zap.String("function", module+"::"+function),
			zap.Error(err),
		)
		return nil, err
	}
	c.log.Info("move call confirmed",
		zap.String("function", module+"::"+function),
		zap.String("digest", resp.Digest),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (c *suiChain) execute(ctx context.Context, pkg, module, function string, args []any) (*sui.TransactionBlockResponse, error) {
	tx, err := c.rpc.MoveCall(ctx, sui.MoveCallRequest{
		Signer:    c.signer.Address(),
		PackageID: pkg,
		Module:    module,
		Function:  function,
		Args:      args,
		GasBudget: c.cfg.GasBudget,
	})
	if err != nil {
		return nil, fmt.Errorf("build %s::%s: %w", module, function, err)
	}

	raw, err := base64.StdEncoding.DecodeString(tx.TxBytes)
	if err != nil {
		return nil, fmt.Errorf("decode tx bytes: %w", err)
	}
	sig := c.signer.SignTransaction(raw)

	executed, err := c.rpc.ExecuteTransactionBlock(ctx, tx.TxBytes, []string{sig}, nil)
	if err != nil {
		return nil, fmt.Errorf("execute %s::%s: %w", module, function, err)
	}
	if executed.Effects != nil && !executed.Succeeded() {
		return nil, fmt.Errorf("%w: %s::%s: %s", sui.ErrTxFailed, module, function, executed.Effects.Status.Error)
	}

	confirmed, err := c.rpc.WaitForTransaction(ctx, executed.Digest, c.cfg.PollInterval, c.cfg.ConfirmTimeout)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (c *suiChain) CreateAllowlist(ctx context.Context, name string) (*model.Allowlist, error) {
	resp, err := c.submit(ctx, c.cfg.AllowlistPackageID, "allowlist", "create_allowlist_entry", []any{name})
	if err != nil {
		return nil, err
	}

	list, ok := sui.FindCreated(resp.ObjectChanges, "Shared")
	if !ok {
		return nil, ErrMissingAllowlist
	}
	capObj, ok := sui.FindCreated(resp.ObjectChanges, "AddressOwner")
	if !ok {
		return nil, ErrMissingCap
	}
	return &model.Allowlist{
		ID:     list.ObjectID,
		CapID:  capObj.ObjectID,
		Name:   name,
		Digest: resp.Digest,
	}, nil
}

func (c *suiChain) AddToAllowlist(ctx context.Context, allowlistID, capID, address string) (string, error) {
	resp, err := c.submit(ctx, c.cfg.AllowlistPackageID, "allowlist", "add", []any{allowlistID, capID, address})
	if err != nil {
		return "", err
	}
	return resp.Digest, nil
}

func (c *suiChain) PublishBlob(ctx context.Context, allowlistID, capID, blobID string) (string, error) {
	resp, err := c.submit(ctx, c.cfg.AllowlistPackageID, "allowlist", "publish", []any{allowlistID, capID, blobID})
	if err != nil {
		return "", err
	}
	return resp.Digest, nil
}

func (c *suiChain) RecordSignature(ctx context.Context, sub SignatureSubmission) (string, error) {
	args := []any{sub.DocumentID, sub.ContentHash, sub.Signer, sub.Signature}
	resp, err := c.submit(ctx, c.cfg.DocumentPackageID, c.cfg.DocumentModule, "record_signature", args)
	if err != nil {
		return "", err
	}
	return resp.Digest, nil
}

type allowlistFields struct {
	Name string   `json:"name"`
	List []string `json:"list"`
}

func (c *suiChain) AllowlistMembers(ctx context.Context, allowlistID string) ([]string, error) {
	obj, err := c.rpc.GetObject(ctx, allowlistID)
	if err != nil {
		return nil, fmt.Errorf("get allowlist: %w", err)
	}
	if obj.Data == nil || obj.Data.Content == nil {
		return nil, fmt.Errorf("allowlist %s has no content", allowlistID)
	}
	var f allowlistFields
	if err := json.Unmarshal(obj.Data.Content.Fields, &f); err != nil {
		return nil, fmt.Errorf("decode allowlist fields: %w", err)
	}
	return f.List, nil
}

func (c *suiChain) IsAllowed(ctx context.Context, policyID, address string) (bool, error) {
	want, err := wallet.NormalizeAddress(address)
	if err != nil {
		return false, nil
	}
	members, err := c.AllowlistMembers(ctx, policyID)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if n, err := wallet.NormalizeAddress(m); err == nil && n == want {
			return true, nil
		}
	}
	return false, nil
}

func (c *suiChain) OwnedDocuments(ctx context.Context, owner string) ([]sui.ObjectData, error) {
	structType := fmt.Sprintf("%s::%s::Document", c.cfg.DocumentPackageID, c.cfg.DocumentModule)

	var out []sui.ObjectData
	var cursor *string
	for i := 0; i < maxOwnedPages; i++ {
		page, err := c.rpc.GetOwnedObjects(ctx, owner, structType, cursor, 50)
		if err != nil {
			return nil, fmt.Errorf("owned documents: %w", err)
		}
		for _, o := range page.Data {
			if o.Data != nil {
				out = append(out, *o.Data)
			}
		}
		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}

type signatureEvent struct {
	DocumentID  string `json:"document_id"`
	ContentHash string `json:"content_hash"`
	Signer      string `json:"signer"`
	Signature   string `json:"signature"`
}

func (c *suiChain) SignatureEvents(ctx context.Context, cursor *sui.EventID, limit int) (*EventBatch, error) {
	eventType := fmt.Sprintf("%s::%s::SignatureRecorded", c.cfg.DocumentPackageID, c.cfg.DocumentModule)
	page, err := c.rpc.QueryEvents(ctx, eventType, cursor, limit, false)
	if err != nil {
		return nil, fmt.Errorf("query signature events: %w", err)
	}

	batch := &EventBatch{Next: page.NextCursor, HasMore: page.HasNextPage}
	if batch.Next == nil {
		batch.Next = cursor
	}
	for _, ev := range page.Data {
		rec, err := toRecord(ev)
		if err != nil {
			c.log.Warn("skipping malformed signature event",
				zap.String("tx_digest", ev.ID.TxDigest),
				zap.Error(err),
			)
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func toRecord(ev sui.Event) (model.SignatureRecord, error) {
	var p signatureEvent
	if err := json.Unmarshal(ev.ParsedJSON, &p); err != nil {
		return model.SignatureRecord{}, err
	}
	if p.DocumentID == "" || p.Signer == "" {
		return model.SignatureRecord{}, errors.New("missing document_id or signer")
	}
	signedAt := time.Now().UTC()
	if ms, err := strconv.ParseInt(ev.TimestampMs, 10, 64); err == nil {
		signedAt = time.UnixMilli(ms).UTC()
	}
	return model.SignatureRecord{
		TxDigest:    ev.ID.TxDigest,
		EventSeq:    ev.ID.EventSeq,
		DocumentID:  p.DocumentID,
		Signer:      strings.ToLower(p.Signer),
		Signature:   p.Signature,
		ContentHash: p.ContentHash,
		SignedAt:    signedAt,
	}, nil
}
