package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionModel struct {
	TenantAggregateModel
	ClientID        uuid.UUID                         `gorm:"type:uuid;not null;index"`
	Name            string                            `gorm:"type:varchar(200);not null"`
	Lines           datatypes.JSONSlice[billing.Line] `gorm:"type:jsonb;not null"`
	Interval        string                            `gorm:"column:billing_interval;type:varchar(20);not null"`
	StartDate       time.Time                         `gorm:"type:date;not null"`
	EndDate         *time.Time                        `gorm:"type:date"`
	NextBillingDate time.Time                         `gorm:"type:date;not null;index"`
	Status          string                            `gorm:"type:varchar(20);not null"`
	AutoSend        bool                              `gorm:"not null"`
	LastInvoiceID   *uuid.UUID                        `gorm:"type:uuid"`
	LastBilledAt    *time.Time
}

func (SubscriptionModel) TableName() string { return "subscriptions" }

func SubscriptionModelFromDomain(s *subscription.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		ClientID:        s.ClientID,
		Name:            s.Name,
		Lines:           datatypes.NewJSONSlice(s.Lines),
		Interval:        string(s.Interval),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		NextBillingDate: s.NextBillingDate,
		Status:          string(s.Status),
		AutoSend:        s.AutoSend,
		LastInvoiceID:   s.LastInvoiceID,
		LastBilledAt:    s.LastBilledAt,
	}
	m.fromTenantAggregate(s.TenantAggregateRoot)
	return m
}

func (m *SubscriptionModel) ToDomain() *subscription.Subscription {
	return &subscription.Subscription{
		TenantAggregateRoot: m.toTenantAggregate(),
		ClientID:            m.ClientID,
		Name:                m.Name,
		Lines:               billing.RecomputeLines(m.Lines),
		Interval:            subscription.Interval(m.Interval),
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		NextBillingDate:     m.NextBillingDate,
		Status:              subscription.Status(m.Status),
		AutoSend:            m.AutoSend,
		LastInvoiceID:       m.LastInvoiceID,
		LastBilledAt:        m.LastBilledAt,
	}
}
