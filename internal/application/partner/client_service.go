package partner

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceChecker tells whether invoices still reference a client
type InvoiceChecker interface {
	ExistsForClient(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error)
}

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo partner.ClientRepository
	invoices   InvoiceChecker
	publisher  shared.EventPublisher
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, invoices InvoiceChecker, publisher shared.EventPublisher) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		invoices:   invoices,
		publisher:  publisher,
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	exists, err := s.clientRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Client with this code already exists")
	}

	client, err := partner.NewClient(tenantID, req.Code, req.Name, partner.ClientType(req.Type))
	if err != nil {
		return nil, err
	}
	if req.TaxID != "" || req.Notes != "" {
		if err := client.Update(client.Name, client.Type, req.TaxID, req.Notes); err != nil {
			return nil, err
		}
	}
	if err := client.SetContact(req.Contact.toDomain()); err != nil {
		return nil, err
	}

	return s.save(ctx, client)
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients matching the filter
func (s *ClientService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]ClientResponse, int64, error) {
	clients, total, err := s.clientRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses, total, nil
}

// Update updates a client
func (s *ClientService) Update(ctx context.Context, tenantID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	name, clientType, taxID, notes := client.Name, client.Type, client.TaxID, client.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Type != nil {
		clientType = partner.ClientType(*req.Type)
	}
	if req.TaxID != nil {
		taxID = *req.TaxID
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := client.Update(name, clientType, taxID, notes); err != nil {
		return nil, err
	}
	if req.Contact != nil {
		if err := client.SetContact(req.Contact.toDomain()); err != nil {
			return nil, err
		}
	}

	return s.save(ctx, client)
}

// Activate activates a client
func (s *ClientService) Activate(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	if err := client.Activate(); err != nil {
		return nil, err
	}
	return s.save(ctx, client)
}

// Deactivate deactivates a client
func (s *ClientService) Deactivate(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	if err := client.Deactivate(); err != nil {
		return nil, err
	}
	return s.save(ctx, client)
}

// Delete deletes a client that no invoice references
func (s *ClientService) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return err
	}
	used, err := s.invoices.ExistsForClient(ctx, tenantID, clientID)
	if err != nil {
		return err
	}
	if used {
		return shared.NewDomainError("CLIENT_IN_USE", "Client has invoices and cannot be deleted; deactivate it instead")
	}
	if err := s.clientRepo.Delete(ctx, tenantID, clientID); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, partner.NewClientDeletedEvent(client))
	}
	return nil
}

func (s *ClientService) save(ctx context.Context, client *partner.Client) (*ClientResponse, error) {
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, client); err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}
