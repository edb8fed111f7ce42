package partner

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VendorService handles vendor-related business operations
type VendorService struct {
	vendorRepo partner.VendorRepository
	publisher  shared.EventPublisher
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo partner.VendorRepository, publisher shared.EventPublisher) *VendorService {
	return &VendorService{vendorRepo: vendorRepo, publisher: publisher}
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, tenantID uuid.UUID, req CreateVendorRequest) (*VendorResponse, error) {
	exists, err := s.vendorRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Vendor with this code already exists")
	}

	vendor, err := partner.NewVendor(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	terms := vendor.PaymentTermsDays
	if req.PaymentTermsDays != nil {
		terms = *req.PaymentTermsDays
	}
	if err := vendor.Update(vendor.Name, req.ContactName, req.TaxID, req.Notes, terms); err != nil {
		return nil, err
	}
	if err := vendor.SetContact(req.Contact.toDomain()); err != nil {
		return nil, err
	}
	return s.save(ctx, vendor)
}

// GetByID retrieves a vendor by ID
func (s *VendorService) GetByID(ctx context.Context, tenantID, vendorID uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// List retrieves vendors matching the filter
func (s *VendorService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]VendorResponse, int64, error) {
	vendors, total, err := s.vendorRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]VendorResponse, len(vendors))
	for i := range vendors {
		responses[i] = ToVendorResponse(&vendors[i])
	}
	return responses, total, nil
}

// Update updates a vendor
func (s *VendorService) Update(ctx context.Context, tenantID, vendorID uuid.UUID, req UpdateVendorRequest) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		return nil, err
	}
	name, contactName, taxID, notes, terms := vendor.Name, vendor.ContactName, vendor.TaxID, vendor.Notes, vendor.PaymentTermsDays
	if req.Name != nil {
		name = *req.Name
	}
	if req.ContactName != nil {
		contactName = *req.ContactName
	}
	if req.TaxID != nil {
		taxID = *req.TaxID
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if req.PaymentTermsDays != nil {
		terms = *req.PaymentTermsDays
	}
	if err := vendor.Update(name, contactName, taxID, notes, terms); err != nil {
		return nil, err
	}
	if req.Contact != nil {
		if err := vendor.SetContact(req.Contact.toDomain()); err != nil {
			return nil, err
		}
	}
	return s.save(ctx, vendor)
}

// Activate activates a vendor
func (s *VendorService) Activate(ctx context.Context, tenantID, vendorID uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		return nil, err
	}
	if err := vendor.Activate(); err != nil {
		return nil, err
	}
	return s.save(ctx, vendor)
}

// Deactivate deactivates a vendor
func (s *VendorService) Deactivate(ctx context.Context, tenantID, vendorID uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		return nil, err
	}
	if err := vendor.Deactivate(); err != nil {
		return nil, err
	}
	return s.save(ctx, vendor)
}

// Delete deletes a vendor
func (s *VendorService) Delete(ctx context.Context, tenantID, vendorID uuid.UUID) error {
	vendor, err := s.vendorRepo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		return err
	}
	if err := s.vendorRepo.Delete(ctx, tenantID, vendorID); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, partner.NewVendorDeletedEvent(vendor))
	}
	return nil
}

func (s *VendorService) save(ctx context.Context, vendor *partner.Vendor) (*VendorResponse, error) {
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, vendor); err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}
