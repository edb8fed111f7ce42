package partner

import (
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Vendor is a supplier of products or services
type Vendor struct {
	shared.TenantAggregateRoot
	Code             string
	Name             string
	ContactName      string
	Contact          ContactInfo
	TaxID            string
	PaymentTermsDays int
	Notes            string
	Status           Status
}

func NewVendor(tenantID uuid.UUID, code, name string) (*Vendor, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	name, err = validateName(name)
	if err != nil {
		return nil, err
	}
	v := &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		PaymentTermsDays:    30,
		Status:              StatusActive,
	}
	v.AddDomainEvent(newVendorEvent(EventTypeVendorCreated, v))
	return v, nil
}

func (v *Vendor) Update(name, contactName, taxID, notes string, paymentTermsDays int) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	if paymentTermsDays < 0 || paymentTermsDays > 365 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be between 0 and 365 days")
	}
	v.Name = name
	v.ContactName = strings.TrimSpace(contactName)
	v.TaxID = strings.TrimSpace(taxID)
	v.Notes = notes
	v.PaymentTermsDays = paymentTermsDays
	v.Touch()
	v.AddDomainEvent(newVendorEvent(EventTypeVendorUpdated, v))
	return nil
}

func (v *Vendor) SetContact(contact ContactInfo) error {
	contact, err := contact.Normalize()
	if err != nil {
		return err
	}
	v.Contact = contact
	v.Touch()
	return nil
}

func (v *Vendor) Activate() error {
	if v.Status == StatusActive {
		return shared.NewInvalidStateError("Vendor is already active")
	}
	v.Status = StatusActive
	v.Touch()
	v.AddDomainEvent(newVendorEvent(EventTypeVendorStatusChanged, v))
	return nil
}

func (v *Vendor) Deactivate() error {
	if v.Status == StatusInactive {
		return shared.NewInvalidStateError("Vendor is already inactive")
	}
	v.Status = StatusInactive
	v.Touch()
	v.AddDomainEvent(newVendorEvent(EventTypeVendorStatusChanged, v))
	return nil
}
