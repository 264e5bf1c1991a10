package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"suidoc/internal/chain"
	"suidoc/internal/metrics"
	"suidoc/internal/model"
	"suidoc/internal/repository"
	"suidoc/internal/sui"
)

// SignatureCursorName is the cursor row used by the signature indexer.
const SignatureCursorName = "signature_events"

const maxPagesPerSync = 10

// SignatureIndexer copies SignatureRecorded events from the chain into the
// signature record table, resuming from the persisted cursor.
type SignatureIndexer struct {
	chain    chain.Chain
	records  repository.SignatureRecordRepository
	cursors  repository.CursorRepository
	interval time.Duration
	pageSize int
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewSignatureIndexer(c chain.Chain, records repository.SignatureRecordRepository, cursors repository.CursorRepository,
	interval time.Duration, pageSize int, logger *zap.Logger, m *metrics.Metrics) *SignatureIndexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	return &SignatureIndexer{
		chain:    c,
		records:  records,
		cursors:  cursors,
		interval: interval,
		pageSize: pageSize,
		log:      logger.With(zap.String("component", "signature_indexer")),
		metrics:  m,
	}
}

// Run syncs once, then on every tick until ctx is done.
func (x *SignatureIndexer) Run(ctx context.Context) {
	x.log.Info("indexer started", zap.Duration("interval", x.interval))
	ticker := time.NewTicker(x.interval)
	defer ticker.Stop()

	for {
		if _, err := x.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
			x.log.Warn("indexer sync failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			x.log.Info("indexer stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sync reads up to maxPagesPerSync pages of events and returns how many were stored.
// The cursor is saved after every page.
func (x *SignatureIndexer) Sync(ctx context.Context) (int, error) {
	saved, err := x.cursors.LoadCursor(ctx, SignatureCursorName)
	if err != nil {
		return 0, err
	}
	var cursor *sui.EventID
	if saved != nil {
		cursor = &sui.EventID{TxDigest: saved.TxDigest, EventSeq: saved.EventSeq}
	}

	total := 0
	for page := 0; page < maxPagesPerSync; page++ {
		batch, err := x.chain.SignatureEvents(ctx, cursor, x.pageSize)
		if err != nil {
			return total, err
		}
		for i := range batch.Records {
			if err := x.records.Upsert(ctx, &batch.Records[i]); err != nil {
				return total, err
			}
		}
		total += len(batch.Records)
		x.metrics.Indexed(len(batch.Records))

		if batch.Next != nil && (cursor == nil || *batch.Next != *cursor) {
			if err := x.cursors.SaveCursor(ctx, SignatureCursorName, model.EventCursor{
				TxDigest: batch.Next.TxDigest,
				EventSeq: batch.Next.EventSeq,
			}); err != nil {
				return total, err
			}
			cursor = batch.Next
		}
		if !batch.HasMore {
			break
		}
	}
	if total > 0 {
		x.log.Info("signature events indexed", zap.Int("count", total))
	}
	return total, nil
}
