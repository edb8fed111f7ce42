// Package backup exports tenant data to object storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bizdesk/backend/internal/domain/backup"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/storage"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

const scheduledClaimTTL = 20 * time.Hour

type Service struct {
	repo      backup.Repository
	exporter  backup.Exporter
	store     storage.ObjectStore
	claims    shared.IdempotencyStore
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	repo backup.Repository,
	exporter backup.Exporter,
	store storage.ObjectStore,
	claims shared.IdempotencyStore,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		exporter:  exporter,
		store:     store,
		claims:    claims,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Run exports the tenant and uploads the gzipped snapshot. The backup row is
// written before the export starts so a crash leaves a running record behind.
func (s *Service) Run(ctx context.Context, tenantID uuid.UUID, trigger backup.Trigger) (*BackupResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "backup", "run")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrTenantID, tenantID.String())

	b := backup.Start(tenantID, trigger, s.now())
	if err := s.repo.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	size, counts, err := s.upload(ctx, b)
	if err != nil {
		telemetry.RecordError(span, err)
		b.Fail(err, s.now())
		s.logger.Error("Backup failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("key", b.ObjectKey),
			zap.Error(err))
		if _, saveErr := s.save(context.WithoutCancel(ctx), b); saveErr != nil {
			s.logger.Error("Failed to record backup failure", zap.Error(saveErr))
		}
		return nil, fmt.Errorf("backup %s: %w", b.ID, err)
	}
	if err := b.Complete(size, counts, s.now()); err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, "size_bytes", size)
	s.logger.Info("Backup completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("key", b.ObjectKey),
		zap.Int64("size_bytes", size),
		zap.Duration("duration", b.Duration()))
	return s.save(ctx, b)
}

// RunScheduled runs the daily backup once per tenant and day, even with
// several replicas running the scheduler.
func (s *Service) RunScheduled(ctx context.Context, tenantID uuid.UUID) error {
	key := fmt.Sprintf("backup:%s:%s", tenantID, s.now().UTC().Format("2006-01-02"))
	claimed, err := s.claims.MarkProcessed(ctx, key, scheduledClaimTTL)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Debug("Backup already taken today", zap.String("tenant_id", tenantID.String()))
		return nil
	}
	if _, err := s.Run(ctx, tenantID, backup.TriggerScheduled); err != nil {
		if relErr := s.claims.Release(context.WithoutCancel(ctx), key); relErr != nil {
			s.logger.Error("Failed to release backup claim", zap.String("key", key), zap.Error(relErr))
		}
		return err
	}
	return nil
}

func (s *Service) upload(ctx context.Context, b *backup.Backup) (int64, map[string]int, error) {
	snap, err := s.exporter.Export(ctx, b.TenantID)
	if err != nil {
		return 0, nil, err
	}
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return 0, nil, err
	}
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		return 0, nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := s.store.Put(ctx, b.ObjectKey, buf.Bytes(), "application/gzip"); err != nil {
		return 0, nil, err
	}
	return int64(buf.Len()), snap.Counts(), nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BackupResponse, error) {
	b, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToBackupResponse(b)
	return &response, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter BackupListFilter) ([]BackupResponse, int64, error) {
	backups, total, err := s.repo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]BackupResponse, len(backups))
	for i := range backups {
		responses[i] = ToBackupResponse(&backups[i])
	}
	return responses, total, nil
}

// Download returns a presigned URL of a completed backup
func (s *Service) Download(ctx context.Context, tenantID, id uuid.UUID) (*DownloadResponse, error) {
	b, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !b.Downloadable() {
		return nil, shared.NewInvalidStateError("Only completed backups can be downloaded")
	}
	url, expiresAt, err := s.store.PresignGet(ctx, b.ObjectKey, 0)
	if err != nil {
		return nil, err
	}
	return &DownloadResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// Delete removes the object and the record. A running backup cannot be
// deleted.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	b, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if b.Status == backup.StatusRunning {
		return shared.NewInvalidStateError("A running backup cannot be deleted")
	}
	if b.Status == backup.StatusCompleted {
		if err := s.store.Delete(ctx, b.ObjectKey); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, backup.NewBackupDeletedEvent(b))
	}
	return nil
}

func (s *Service) save(ctx context.Context, b *backup.Backup) (*BackupResponse, error) {
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, b); err != nil {
		return nil, err
	}
	response := ToBackupResponse(b)
	return &response, nil
}
