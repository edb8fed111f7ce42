package models

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/identity"
)

type TenantModel struct {
	AggregateModel
	Name   string `gorm:"type:varchar(200);not null"`
	Slug   string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Active bool   `gorm:"not null"`
}

func (TenantModel) TableName() string { return "tenants" }

func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{Name: t.Name, Slug: t.Slug, Active: t.Active}
	m.fromAggregate(t.BaseAggregateRoot)
	return m
}

func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{BaseAggregateRoot: m.toAggregate(), Name: m.Name, Slug: m.Slug, Active: m.Active}
}

type UserModel struct {
	TenantAggregateModel
	Username       string `gorm:"type:varchar(50);not null"`
	Email          string `gorm:"type:varchar(200);not null"`
	DisplayName    string `gorm:"type:varchar(100)"`
	Role           string `gorm:"type:varchar(20);not null"`
	Status         string `gorm:"type:varchar(20);not null"`
	PasswordHash   string `gorm:"type:varchar(200);not null"`
	FailedAttempts int    `gorm:"not null"`
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"type:varchar(64)"`
}

func (UserModel) TableName() string { return "users" }

func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:       u.Username,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           string(u.Role),
		Status:         string(u.Status),
		PasswordHash:   u.PasswordHash,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
		LastLoginAt:    u.LastLoginAt,
		LastLoginIP:    u.LastLoginIP,
	}
	m.fromTenantAggregate(u.TenantAggregateRoot)
	return m
}

func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.toTenantAggregate(),
		Username:            m.Username,
		Email:               m.Email,
		DisplayName:         m.DisplayName,
		Role:                identity.Role(m.Role),
		Status:              identity.UserStatus(m.Status),
		PasswordHash:        m.PasswordHash,
		FailedAttempts:      m.FailedAttempts,
		LockedUntil:         m.LockedUntil,
		LastLoginAt:         m.LastLoginAt,
		LastLoginIP:         m.LastLoginIP,
	}
}
