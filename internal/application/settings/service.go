package settings

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Service reads and updates the company settings of a tenant
type Service struct {
	repo      settings.Repository
	publisher shared.EventPublisher
}

// NewService creates a new settings service
func NewService(repo settings.Repository, publisher shared.EventPublisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Get returns the tenant settings, defaults included
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (*SettingsResponse, error) {
	cs, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := ToSettingsResponse(cs)
	return &response, nil
}

// Update applies a partial update and validates the result as a whole
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	cs, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	setString(&cs.CompanyName, req.CompanyName)
	setString(&cs.Address, req.Address)
	setString(&cs.Email, req.Email)
	setString(&cs.Phone, req.Phone)
	setString(&cs.TaxID, req.TaxID)
	setString(&cs.Currency, req.Currency)
	setString(&cs.InvoicePrefix, req.InvoicePrefix)
	setString(&cs.QuotePrefix, req.QuotePrefix)
	setString(&cs.FooterNote, req.FooterNote)
	if req.PaymentTermsDays != nil {
		cs.PaymentTermsDays = *req.PaymentTermsDays
	}
	if req.QuoteValidityDays != nil {
		cs.QuoteValidityDays = *req.QuoteValidityDays
	}
	if req.DefaultVATRate != nil {
		cs.DefaultVATRate = *req.DefaultVATRate
	}

	if err := cs.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cs); err != nil {
		return nil, err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, settings.NewUpdatedEvent(cs)); err != nil {
			return nil, err
		}
	}

	response := ToSettingsResponse(cs)
	return &response, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
