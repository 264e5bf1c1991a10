package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"suidoc/internal/metrics"
	"suidoc/internal/repository"
	"suidoc/internal/sui"
	"suidoc/internal/wallet"
)

// VerifyInput is a file plus the claimed signer and signature.
type VerifyInput struct {
	File      io.Reader
	Address   string
	Signature string
}

// VerifyResult reports whether the signature matches the file. When the same
// signature was recorded on chain the transaction details are attached.
type VerifyResult struct {
	IsValid       bool       `json:"is_valid"`
	ContentHash   string     `json:"content_hash"`
	Signer        string     `json:"signer"`
	Message       string     `json:"message,omitempty"`
	DocumentID    string     `json:"document_id,omitempty"`
	DocumentName  string     `json:"document_name,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
	ExplorerURL   string     `json:"explorer_url,omitempty"`
}

type VerificationService interface {
	Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error)
}

type VerificationDeps struct {
	Docs           repository.DocumentRepository
	Records        repository.SignatureRecordRepository
	ExplorerTxURL  string
	MaxUploadBytes int64
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

type verificationService struct {
	VerificationDeps
	log *zap.Logger
}

func NewVerificationService(d VerificationDeps) VerificationService {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &verificationService{VerificationDeps: d, log: log.With(zap.String("service", "verification"))}
}

func (s *verificationService) Verify(ctx context.Context, in VerifyInput) (res *VerifyResult, err error) {
	ctx, span := tracer.Start(ctx, "VerificationService.Verify")
	defer func() { endSpan(span, err) }()

	if in.File == nil {
		return nil, ErrReaderNil
	}
	signer, err := normalize(in.Address)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(in.File, s.MaxUploadBytes+1))
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
	hash := hex.EncodeToString(sum[:])
	span.SetAttributes(attribute.String("verify.signer", signer), attribute.String("verify.content_hash", hash))

	res = &VerifyResult{ContentHash: hash, Signer: signer}
	if verr := wallet.VerifyPersonalMessage([]byte(hash), in.Signature, signer); verr != nil {
		res.Message = verr.Error()
		s.Metrics.Verification(false)
		return res, nil
	}
	res.IsValid = true
	s.Metrics.Verification(true)

	rec, err := s.Records.FindByHashAndSigner(ctx, hash, signer)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res.Message = "signature is valid but was not found on chain"
		return res, nil
	case err != nil:
		s.log.Warn("signature record lookup failed", zap.String("content_hash", hash), zap.Error(err))
		return res, nil
	}

	signedAt := rec.SignedAt
	res.DocumentID = rec.DocumentID
	res.TransactionID = rec.TxDigest
	res.SignedAt = &signedAt
	res.ExplorerURL = sui.ExplorerURL(s.ExplorerTxURL, rec.TxDigest)

	if doc, err := s.Docs.FindByID(ctx, rec.DocumentID); err == nil {
		res.DocumentName = doc.Title
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.log.Warn("document lookup failed", zap.String("document_id", rec.DocumentID), zap.Error(err))
	}
	return res, nil
}
