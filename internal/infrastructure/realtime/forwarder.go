package realtime

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/shared"
)

// tables maps aggregate types to the table name clients subscribe to
var tables = map[string]string{
	"cash_register":   "cash_registers",
	"stock":           "stock_levels",
	"tax_declaration": "tax_declarations",
	"settings":        "company_settings",
}

// TableFor returns the client facing table name for an aggregate type
func TableFor(aggregateType string) string {
	if t, ok := tables[aggregateType]; ok {
		return t
	}
	return aggregateType + "s"
}

// ChangeForwarder turns every domain event into a change message for the
// tenant room of the event.
type ChangeForwarder struct {
	hub *Hub
}

func NewChangeForwarder(hub *Hub) *ChangeForwarder {
	return &ChangeForwarder{hub: hub}
}

func (f *ChangeForwarder) Handle(_ context.Context, ev shared.DomainEvent) error {
	f.hub.Broadcast(ev.TenantID(), ChangeMessage(
		TableFor(ev.AggregateType()),
		shared.EventAction(ev.EventType()),
		ev.AggregateID(),
	))
	return nil
}

func (f *ChangeForwarder) EventTypes() []string {
	return []string{"*"}
}

var _ shared.EventHandler = (*ChangeForwarder)(nil)
