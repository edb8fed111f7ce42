package market

import (
	"context"
	"errors"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	"github.com/bizdesk/backend/internal/domain/market"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Service handles market contracts
type Service struct {
	repo       market.Repository
	clientRepo partner.ClientRepository
	publisher  shared.EventPublisher
}

// NewService creates a new market Service
func NewService(repo market.Repository, clientRepo partner.ClientRepository, publisher shared.EventPublisher) *Service {
	return &Service{repo: repo, clientRepo: clientRepo, publisher: publisher}
}

// Create creates a draft market for an existing client
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateMarketRequest) (*MarketResponse, error) {
	if _, err := s.clientRepo.FindByID(ctx, tenantID, req.ClientID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CLIENT", "Client not found")
		}
		return nil, err
	}
	m, err := market.NewMarket(tenantID, req.ClientID, req.Reference, req.Title, req.StartDate, req.EndDate, req.Amount)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByReference(ctx, tenantID, m.Reference)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Market with this reference already exists")
	}
	m.Description = req.Description
	if by := appaudit.SourceFrom(ctx).UserID; by != nil {
		m.SetCreatedBy(*by)
	}
	return s.save(ctx, m)
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*MarketResponse, error) {
	m, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToMarketResponse(m)
	return &response, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter MarketListFilter) ([]MarketResponse, int64, error) {
	markets, total, err := s.repo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]MarketResponse, len(markets))
	for i := range markets {
		responses[i] = ToMarketResponse(&markets[i])
	}
	return responses, total, nil
}

// Update changes the terms of a draft or active market
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateMarketRequest) (*MarketResponse, error) {
	m, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := m.Update(req.Title, req.Description, req.StartDate, req.EndDate, req.Amount); err != nil {
		return nil, err
	}
	return s.save(ctx, m)
}

func (s *Service) Activate(ctx context.Context, tenantID, id uuid.UUID) (*MarketResponse, error) {
	return s.transition(ctx, tenantID, id, (*market.Market).Activate)
}

func (s *Service) Complete(ctx context.Context, tenantID, id uuid.UUID) (*MarketResponse, error) {
	return s.transition(ctx, tenantID, id, (*market.Market).Complete)
}

func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*MarketResponse, error) {
	return s.transition(ctx, tenantID, id, (*market.Market).Cancel)
}

// Delete deletes a draft market that was never invoiced
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	m, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !m.CanDelete() {
		return shared.NewInvalidStateError("Only draft markets without invoices can be deleted")
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, market.NewMarketDeletedEvent(m))
	}
	return nil
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*market.Market) error) (*MarketResponse, error) {
	m, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	return s.save(ctx, m)
}

func (s *Service) save(ctx context.Context, m *market.Market) (*MarketResponse, error) {
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, m); err != nil {
		return nil, err
	}
	response := ToMarketResponse(m)
	return &response, nil
}
