package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"suidoc/internal/chain"
	"suidoc/internal/encryption"
	"suidoc/internal/metrics"
	"suidoc/internal/model"
	"suidoc/internal/repository"
	"suidoc/internal/storage"
	"suidoc/internal/sui"
	"suidoc/internal/walrus"
	"suidoc/internal/wallet"
)

var tracer = otel.Tracer("suidoc/service")

const (
	defaultPageSize = 10
	maxPageSize     = 100
	presignExpiry   = 15 * time.Minute
)

// UploadInput is a document upload request. UploadedBy is the authenticated wallet.
type UploadInput struct {
	Title         string
	Filename      string
	ContentType   string
	UploadedBy    string
	WalrusService string
	Reader        io.Reader
}

// ListQuery filters the documents a viewer can see.
type ListQuery struct {
	Search string
	Status model.DocumentStatus
	Limit  int
	Offset int
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentStats are the dashboard counters.
type DocumentStats struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Pending   int `json:"pending"`
	Signed    int `json:"signed"`
	Completed int `json:"completed"`
}

type SignatureFieldInput struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// DownloadResult is a decrypted document.
type DownloadResult struct {
	Document *model.Document
	Data     []byte
}

// BlobLink points at the encrypted payload of a document.
type BlobLink struct {
	BlobID        string `json:"blob_id"`
	AggregatorURL string `json:"aggregator_url"`
	MirrorURL     string `json:"mirror_url,omitempty"`
	EncryptionID  string `json:"encryption_id"`
	AllowlistID   string `json:"allowlist_id"`
	AllowlistURL  string `json:"allowlist_url,omitempty"`
}

// DocumentService defines the document use cases. viewer is always the
// authenticated wallet address.
type DocumentService interface {
	// Upload creates the allowlist, encrypts and stores the file, registers the
	// blob on chain and saves the document. The ciphertext mirror copy is removed
	// again if saving fails.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)
	List(ctx context.Context, viewer string, q ListQuery) (*DocumentListResult, error)
	Get(ctx context.Context, viewer, id string) (*model.Document, error)
	Stats(ctx context.Context, viewer string) (*DocumentStats, error)
	AddSignatureField(ctx context.Context, viewer, id string, in SignatureFieldInput) (*model.SignatureField, error)
	// Sign checks signature against the document hash, records it on chain and marks the field.
	Sign(ctx context.Context, viewer, id, fieldID, signature string) (*model.Document, error)
	// Share adds addresses to the allowlist and the sharing list.
	Share(ctx context.Context, viewer, id string, addresses []string) (*model.Document, error)
	Download(ctx context.Context, viewer, id string) (*DownloadResult, error)
	BlobLink(ctx context.Context, viewer, id string) (*BlobLink, error)
	Delete(ctx context.Context, viewer, id string) error
	Signatures(ctx context.Context, viewer, id string) ([]model.SignatureRecord, error)
	OnChain(ctx context.Context, owner string) ([]sui.ObjectData, error)
}

// DocumentDeps wires a DocumentService. Mirror may be nil.
type DocumentDeps struct {
	Repo              repository.DocumentRepository
	Records           repository.SignatureRecordRepository
	Chain             chain.Chain
	Cipher            encryption.Cipher
	Blobs             walrus.BlobStore
	Mirror            storage.Mirror
	PackageID         string
	MaxUploadBytes    int64
	ExplorerObjectURL string
	Logger            *zap.Logger
	Metrics           *metrics.Metrics
}

type documentService struct {
	DocumentDeps
	log *zap.Logger
}

func NewDocumentService(d DocumentDeps) DocumentService {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &documentService{DocumentDeps: d, log: log.With(zap.String("service", "document"))}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func normalize(address string) (string, error) {
	a, err := wallet.NormalizeAddress(address)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return a, nil
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (doc *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload")
	defer func() {
		s.Metrics.Upload(err)
		endSpan(span, err)
	}()

	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	uploader, err := normalize(in.UploadedBy)
	if err != nil {
		return nil, err
	}
	svc, err := s.Blobs.Service(in.WalrusService)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Reader, s.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.MaxUploadBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])
	span.SetAttributes(
		attribute.String("document.uploader", uploader),
		attribute.Int("document.size", len(data)),
		attribute.String("walrus.service", svc.ID),
	)

	log := s.log.With(zap.String("uploader", uploader), zap.String("content_hash", contentHash))

	allowlist, err := s.Chain.CreateAllowlist(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create allowlist: %w", err)
	}
	if _, err := s.Chain.AddToAllowlist(ctx, allowlist.ID, allowlist.CapID, uploader); err != nil {
		return nil, fmt.Errorf("add uploader to allowlist: %w", err)
	}

	identity, err := encryption.NewIdentity(allowlist.ID)
	if err != nil {
		return nil, err
	}
	sealed, err := s.Cipher.Encrypt(ctx, s.PackageID, identity, data)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	stored, err := s.Blobs.Store(ctx, svc.ID, sealed)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	digest, err := s.Chain.PublishBlob(ctx, allowlist.ID, allowlist.CapID, stored.BlobID)
	if err != nil {
		return nil, fmt.Errorf("register blob: %w", err)
	}
	log.Info("blob registered",
		zap.String("blob_id", stored.BlobID),
		zap.String("allowlist_id", allowlist.ID),
		zap.String("digest", digest),
	)

	id := uuid.New().String()
	storagePath := ""
	if s.Mirror != nil {
		info, err := s.Mirror.Put(ctx, stored.BlobID, bytes.NewReader(sealed), int64(len(sealed)), map[string]string{
			"document-id":  id,
			"content-hash": contentHash,
		})
		if err != nil {
			log.Warn("ciphertext mirror failed", zap.String("blob_id", stored.BlobID), zap.Error(err))
		} else {
			storagePath = info.Key
		}
	}

	now := time.Now().UTC()
	doc = &model.Document{
		ID:              id,
		Title:           title,
		Filename:        in.Filename,
		ContentType:     in.ContentType,
		Size:            int64(len(data)),
		ContentHash:     contentHash,
		UploadedBy:      uploader,
		UploadedAt:      now,
		UpdatedAt:       now,
		Status:          model.StatusDraft,
		BlobID:          stored.BlobID,
		BlobObjectID:    stored.ObjectID,
		EncryptionID:    identity,
		AllowlistID:     allowlist.ID,
		CapID:           allowlist.CapID,
		WalrusService:   svc.ID,
		RegisterDigest:  digest,
		StoragePath:     storagePath,
		SignatureFields: []model.SignatureField{},
		SharedWith:      []string{},
	}

	saved, err := s.Repo.Create(ctx, doc)
	if err != nil {
		if storagePath != "" {
			if delErr := s.Mirror.Delete(ctx, stored.BlobID); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	log.Info("document uploaded", zap.String("document_id", saved.ID))
	return saved, nil
}

func (s *documentService) List(ctx context.Context, viewer string, q ListQuery) (*DocumentListResult, error) {
	v, err := normalize(viewer)
	if err != nil {
		return nil, err
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	res, err := s.Repo.List(ctx, repository.DocumentFilter{
		Viewer:    v,
		Search:    strings.TrimSpace(q.Search),
		Status:    q.Status,
		PageQuery: repository.PageQuery{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// load fetches a document and checks that viewer may see it.
func (s *documentService) load(ctx context.Context, viewer, id string) (*model.Document, string, error) {
	if id == "" {
		return nil, "", ErrIDRequired
	}
	v, err := normalize(viewer)
	if err != nil {
		return nil, "", err
	}
	doc, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if !doc.CanView(v) {
		return nil, "", ErrForbidden
	}
	return doc, v, nil
}

// loadOwned is load restricted to the uploader.
func (s *documentService) loadOwned(ctx context.Context, viewer, id string) (*model.Document, error) {
	doc, v, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if doc.UploadedBy != v {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, viewer, id string) (*model.Document, error) {
	doc, _, err := s.load(ctx, viewer, id)
	return doc, err
}

func (s *documentService) Stats(ctx context.Context, viewer string) (*DocumentStats, error) {
	v, err := normalize(viewer)
	if err != nil {
		return nil, err
	}
	counts, err := s.Repo.CountByStatus(ctx, v)
	if err != nil {
		return nil, err
	}
	st := &DocumentStats{
		Draft:     counts[model.StatusDraft],
		Pending:   counts[model.StatusPending],
		Signed:    counts[model.StatusSigned],
		Completed: counts[model.StatusCompleted],
	}
	st.Total = st.Draft + st.Pending + st.Signed + st.Completed
	return st, nil
}

func (s *documentService) AddSignatureField(ctx context.Context, viewer, id string, in SignatureFieldInput) (*model.SignatureField, error) {
	doc, err := s.loadOwned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == model.StatusCompleted {
		return nil, ErrDocumentCompleted
	}
	if in.Width <= 0 || in.Height <= 0 || in.X < 0 || in.Y < 0 {
		return nil, ErrInvalidField
	}

	suffix, err := gonanoid.New(12)
	if err != nil {
		return nil, fmt.Errorf("generate field id: %w", err)
	}
	field := model.SignatureField{
		ID:         "sig-" + suffix,
		DocumentID: doc.ID,
		X:          in.X,
		Y:          in.Y,
		Width:      in.Width,
		Height:     in.Height,
	}
	status, err := s.Repo.AddSignatureField(ctx, &field)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentCompleted) {
			return nil, ErrDocumentCompleted
		}
		return nil, err
	}
	s.log.Debug("signature field added",
		zap.String("document_id", doc.ID),
		zap.String("field_id", field.ID),
		zap.String("status", string(status)),
	)
	return &field, nil
}

func (s *documentService) Sign(ctx context.Context, viewer, id, fieldID, signature string) (doc *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Sign", trace.WithAttributes(
		attribute.String("document.id", id),
		attribute.String("field.id", fieldID),
	))
	defer func() {
		s.Metrics.Signature(err)
		endSpan(span, err)
	}()

	doc, signer, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	field, ok := doc.Field(fieldID)
	if !ok {
		return nil, ErrFieldNotFound
	}
	if field.IsSigned() {
		return nil, ErrAlreadySigned
	}
	if err := wallet.VerifyPersonalMessage([]byte(doc.ContentHash), signature, signer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	digest, err := s.Chain.RecordSignature(ctx, chain.SignatureSubmission{
		DocumentID:  doc.ID,
		ContentHash: doc.ContentHash,
		Signer:      signer,
		Signature:   signature,
	})
	if err != nil {
		return nil, fmt.Errorf("record signature: %w", err)
	}

	// The status comes back from the store: other fields may have been signed
	// while this transaction was confirming.
	now := time.Now().UTC()
	status, err := s.Repo.SignField(ctx, doc.ID, fieldID, signer, digest, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadySigned
		}
		return nil, err
	}
	field.SignedBy = signer
	field.SignedAt = &now
	field.TransactionID = digest
	doc.Status = status
	doc.UpdatedAt = now
	s.log.Info("field signed",
		zap.String("document_id", doc.ID),
		zap.String("field_id", fieldID),
		zap.String("signer", signer),
		zap.String("digest", digest),
		zap.String("status", string(doc.Status)),
	)
	return doc, nil
}

func (s *documentService) Share(ctx context.Context, viewer, id string, addresses []string) (doc *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Share", trace.WithAttributes(attribute.String("document.id", id)))
	defer func() { endSpan(span, err) }()

	if len(addresses) == 0 {
		return nil, ErrNoAddresses
	}
	doc, err = s.loadOwned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	// The uploader is on the allowlist from the start.
	seen := make(map[string]bool, len(doc.SharedWith)+len(addresses)+1)
	seen[doc.UploadedBy] = true
	for _, a := range doc.SharedWith {
		seen[a] = true
	}
	var fresh []string
	for _, raw := range addresses {
		a, err := normalize(raw)
		if err != nil {
			return nil, err
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		fresh = append(fresh, a)
	}
	if len(fresh) == 0 {
		return doc, nil
	}

	// Addresses can be on chain without a share row when an earlier add landed
	// but its confirmation was not observed. Those are only recorded.
	members, err := s.allowlistMembers(ctx, doc.AllowlistID)
	if err != nil {
		return nil, err
	}

	added := make([]string, 0, len(fresh))
	var chainErr error
	for _, a := range fresh {
		if members[a] {
			added = append(added, a)
			continue
		}
		if _, err := s.Chain.AddToAllowlist(ctx, doc.AllowlistID, doc.CapID, a); err != nil {
			chainErr = fmt.Errorf("add %s to allowlist: %w", a, err)
			break
		}
		added = append(added, a)
	}
	if len(added) > 0 {
		if err := s.Repo.AddShares(ctx, doc.ID, added); err != nil {
			return nil, err
		}
		doc.SharedWith = append(doc.SharedWith, added...)
	}
	if chainErr != nil {
		return nil, chainErr
	}
	s.log.Info("document shared", zap.String("document_id", doc.ID), zap.Strings("addresses", added))
	return doc, nil
}

// allowlistMembers returns the normalized on-chain members of an allowlist.
func (s *documentService) allowlistMembers(ctx context.Context, allowlistID string) (map[string]bool, error) {
	list, err := s.Chain.AllowlistMembers(ctx, allowlistID)
	if err != nil {
		return nil, fmt.Errorf("read allowlist: %w", err)
	}
	members := make(map[string]bool, len(list))
	for _, m := range list {
		if a, err := wallet.NormalizeAddress(m); err == nil {
			members[a] = true
		}
	}
	return members, nil
}

func (s *documentService) readMirror(ctx context.Context, blobID string) ([]byte, error) {
	rc, _, err := s.Mirror.Get(ctx, blobID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ciphertext prefers the mirror copy and falls back to the Walrus aggregator.
func (s *documentService) ciphertext(ctx context.Context, doc *model.Document) ([]byte, error) {
	if s.Mirror != nil && doc.StoragePath != "" {
		data, err := s.readMirror(ctx, doc.BlobID)
		if err == nil {
			return data, nil
		}
		s.log.Debug("mirror read failed, falling back to aggregator",
			zap.String("blob_id", doc.BlobID), zap.Error(err))
	}
	data, err := s.Blobs.Read(ctx, doc.WalrusService, doc.BlobID)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *documentService) Download(ctx context.Context, viewer, id string) (*DownloadResult, error) {
	doc, v, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	sealed, err := s.ciphertext(ctx, doc)
	if err != nil {
		return nil, err
	}
	plain, err := s.Cipher.Decrypt(ctx, v, sealed)
	if err != nil {
		if errors.Is(err, encryption.ErrAccessDenied) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return &DownloadResult{Document: doc, Data: plain}, nil
}

func (s *documentService) BlobLink(ctx context.Context, viewer, id string) (*BlobLink, error) {
	doc, _, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	svc, err := s.Blobs.Service(doc.WalrusService)
	if err != nil {
		return nil, err
	}
	link := &BlobLink{
		BlobID:        doc.BlobID,
		AggregatorURL: svc.AggregatorURL + "/v1/blobs/" + doc.BlobID,
		EncryptionID:  doc.EncryptionID,
		AllowlistID:   doc.AllowlistID,
	}
	if s.ExplorerObjectURL != "" {
		link.AllowlistURL = sui.ExplorerURL(s.ExplorerObjectURL, doc.AllowlistID)
	}
	if s.Mirror != nil && doc.StoragePath != "" {
		u, err := s.Mirror.PresignGet(ctx, doc.BlobID, presignExpiry)
		if err != nil {
			s.log.Warn("presign failed", zap.String("blob_id", doc.BlobID), zap.Error(err))
		} else {
			link.MirrorURL = u
		}
	}
	return link, nil
}

// Delete removes the mirror copy, then the record. On-chain objects and the
// Walrus blob are left as they are.
func (s *documentService) Delete(ctx context.Context, viewer, id string) error {
	doc, err := s.loadOwned(ctx, viewer, id)
	if err != nil {
		return err
	}
	if s.Mirror != nil && doc.StoragePath != "" {
		if err := s.Mirror.Delete(ctx, doc.BlobID); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	return s.Repo.Delete(ctx, id)
}

func (s *documentService) Signatures(ctx context.Context, viewer, id string) ([]model.SignatureRecord, error) {
	doc, _, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return s.Records.ListByDocument(ctx, doc.ID)
}

func (s *documentService) OnChain(ctx context.Context, owner string) ([]sui.ObjectData, error) {
	o, err := normalize(owner)
	if err != nil {
		return nil, err
	}
	return s.Chain.OwnedDocuments(ctx, o)
}
