package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/backup"
	"gorm.io/datatypes"
)

type BackupModel struct {
	TenantAggregateModel
	Status      string                             `gorm:"type:varchar(20);not null"`
	Trigger     string                             `gorm:"column:trigger_kind;type:varchar(20);not null"`
	ObjectKey   string                             `gorm:"type:varchar(500)"`
	SizeBytes   int64                              `gorm:"not null"`
	TableCounts datatypes.JSONType[map[string]int] `gorm:"type:jsonb"`
	StartedAt   time.Time                          `gorm:"not null"`
	CompletedAt *time.Time
	Error       string `gorm:"column:error_message;type:text"`
}

func (BackupModel) TableName() string { return "backups" }

func BackupModelFromDomain(b *backup.Backup) *BackupModel {
	m := &BackupModel{
		Status:      string(b.Status),
		Trigger:     string(b.Trigger),
		ObjectKey:   b.ObjectKey,
		SizeBytes:   b.SizeBytes,
		TableCounts: datatypes.NewJSONType(b.TableCounts),
		StartedAt:   b.StartedAt,
		CompletedAt: b.CompletedAt,
		Error:       b.Error,
	}
	m.fromTenantAggregate(b.TenantAggregateRoot)
	return m
}

func (m *BackupModel) ToDomain() *backup.Backup {
	return &backup.Backup{
		TenantAggregateRoot: m.toTenantAggregate(),
		Status:              backup.Status(m.Status),
		Trigger:             backup.Trigger(m.Trigger),
		ObjectKey:           m.ObjectKey,
		SizeBytes:           m.SizeBytes,
		TableCounts:         m.TableCounts.Data(),
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
		Error:               m.Error,
	}
}
