package tax

import (
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeDeclaration = "tax_declaration"

const (
	EventTypeDeclarationGenerated = "tax_declaration.generated"
	EventTypeDeclarationSubmitted = "tax_declaration.submitted"
	EventTypeDeclarationDeleted   = "tax_declaration.deleted"
)

type DeclarationEvent struct {
	shared.BaseDomainEvent
	Period    string          `json:"period"`
	Status    Status          `json:"status"`
	NetVATDue decimal.Decimal `json:"net_vat_due"`
}

func newDeclarationEvent(eventType string, d *Declaration) *DeclarationEvent {
	return &DeclarationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeDeclaration, d.ID, d.TenantID),
		Period:          d.Period.Label(),
		Status:          d.Status,
		NetVATDue:       d.NetVATDue,
	}
}

func NewDeclarationDeletedEvent(d *Declaration) *DeclarationEvent {
	return newDeclarationEvent(EventTypeDeclarationDeleted, d)
}
