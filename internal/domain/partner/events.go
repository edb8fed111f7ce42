package partner

import "github.com/bizdesk/backend/internal/domain/shared"

const (
	AggregateTypeClient = "client"
	AggregateTypeVendor = "vendor"
)

const (
	EventTypeClientCreated       = "client.created"
	EventTypeClientUpdated       = "client.updated"
	EventTypeClientStatusChanged = "client.status_changed"
	EventTypeClientDeleted       = "client.deleted"

	EventTypeVendorCreated       = "vendor.created"
	EventTypeVendorUpdated       = "vendor.updated"
	EventTypeVendorStatusChanged = "vendor.status_changed"
	EventTypeVendorDeleted       = "vendor.deleted"
)

// PartnerEvent is raised whenever a client or vendor changes
type PartnerEvent struct {
	shared.BaseDomainEvent
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

func newClientEvent(eventType string, c *Client) *PartnerEvent {
	return &PartnerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeClient, c.ID, c.TenantID),
		Code:            c.Code,
		Name:            c.Name,
		Status:          c.Status,
	}
}

func newVendorEvent(eventType string, v *Vendor) *PartnerEvent {
	return &PartnerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeVendor, v.ID, v.TenantID),
		Code:            v.Code,
		Name:            v.Name,
		Status:          v.Status,
	}
}

// NewClientDeletedEvent is raised by the application layer after a delete
func NewClientDeletedEvent(c *Client) *PartnerEvent {
	return newClientEvent(EventTypeClientDeleted, c)
}

// NewVendorDeletedEvent is raised by the application layer after a delete
func NewVendorDeletedEvent(v *Vendor) *PartnerEvent {
	return newVendorEvent(EventTypeVendorDeleted, v)
}
