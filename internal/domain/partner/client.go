package partner

import (
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientType distinguishes companies from private persons
type ClientType string

const (
	ClientTypeCompany    ClientType = "company"
	ClientTypeIndividual ClientType = "individual"
)

func (t ClientType) IsValid() bool {
	return t == ClientTypeCompany || t == ClientTypeIndividual
}

// Client is a customer that receives quotes and invoices
type Client struct {
	shared.TenantAggregateRoot
	Code    string
	Name    string
	Type    ClientType
	Contact ContactInfo
	TaxID   string
	Notes   string
	Status  Status
}

// NewClient creates an active client
func NewClient(tenantID uuid.UUID, code, name string, clientType ClientType) (*Client, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	name, err = validateName(name)
	if err != nil {
		return nil, err
	}
	if clientType == "" {
		clientType = ClientTypeCompany
	}
	if !clientType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CLIENT_TYPE", "Client type must be company or individual")
	}

	c := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                clientType,
		Status:              StatusActive,
	}
	c.AddDomainEvent(newClientEvent(EventTypeClientCreated, c))
	return c, nil
}

// Update changes the descriptive fields of the client
func (c *Client) Update(name string, clientType ClientType, taxID, notes string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	if clientType != "" {
		if !clientType.IsValid() {
			return shared.NewDomainError("INVALID_CLIENT_TYPE", "Client type must be company or individual")
		}
		c.Type = clientType
	}
	if len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}
	c.Name = name
	c.TaxID = strings.TrimSpace(taxID)
	c.Notes = notes
	c.Touch()
	c.AddDomainEvent(newClientEvent(EventTypeClientUpdated, c))
	return nil
}

// SetContact replaces the contact information
func (c *Client) SetContact(contact ContactInfo) error {
	contact, err := contact.Normalize()
	if err != nil {
		return err
	}
	c.Contact = contact
	c.Touch()
	return nil
}

func (c *Client) Activate() error {
	if c.Status == StatusActive {
		return shared.NewInvalidStateError("Client is already active")
	}
	c.Status = StatusActive
	c.Touch()
	c.AddDomainEvent(newClientEvent(EventTypeClientStatusChanged, c))
	return nil
}

func (c *Client) Deactivate() error {
	if c.Status == StatusInactive {
		return shared.NewInvalidStateError("Client is already inactive")
	}
	c.Status = StatusInactive
	c.Touch()
	c.AddDomainEvent(newClientEvent(EventTypeClientStatusChanged, c))
	return nil
}

func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}
