package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLogModel rows are never updated
type AuditLogModel struct {
	ID         uuid.UUID                          `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID                          `gorm:"type:uuid;not null;index"`
	UserID     *uuid.UUID                         `gorm:"type:uuid"`
	Action     string                             `gorm:"type:varchar(50);not null"`
	EntityType string                             `gorm:"type:varchar(50)"`
	EntityID   *uuid.UUID                         `gorm:"type:uuid"`
	Changes    datatypes.JSONType[map[string]any] `gorm:"type:jsonb"`
	IPAddress  string                             `gorm:"type:varchar(64)"`
	UserAgent  string                             `gorm:"type:varchar(500)"`
	RequestID  string                             `gorm:"type:varchar(64)"`
	OccurredAt time.Time                          `gorm:"not null;index"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }

func AuditLogModelFromDomain(l *audit.Log) *AuditLogModel {
	return &AuditLogModel{
		ID:         l.ID,
		TenantID:   l.TenantID,
		UserID:     l.UserID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Changes:    datatypes.NewJSONType(l.Changes),
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		RequestID:  l.RequestID,
		OccurredAt: l.OccurredAt,
	}
}

func (m *AuditLogModel) ToDomain() *audit.Log {
	return &audit.Log{
		ID:         m.ID,
		TenantID:   m.TenantID,
		UserID:     m.UserID,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Changes:    m.Changes.Data(),
		IPAddress:  m.IPAddress,
		UserAgent:  m.UserAgent,
		RequestID:  m.RequestID,
		OccurredAt: m.OccurredAt,
	}
}
