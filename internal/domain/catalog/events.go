package catalog

import (
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeProduct = "product"

const (
	EventTypeProductCreated       = "product.created"
	EventTypeProductUpdated       = "product.updated"
	EventTypeProductStatusChanged = "product.status_changed"
	EventTypeProductDeleted       = "product.deleted"
)

type ProductEvent struct {
	shared.BaseDomainEvent
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Status    ProductStatus   `json:"status"`
}

func newProductEvent(eventType string, p *Product) *ProductEvent {
	return &ProductEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProduct, p.ID, p.TenantID),
		SKU:             p.SKU,
		Name:            p.Name,
		UnitPrice:       p.UnitPrice,
		Status:          p.Status,
	}
}

func NewProductDeletedEvent(p *Product) *ProductEvent {
	return newProductEvent(EventTypeProductDeleted, p)
}
