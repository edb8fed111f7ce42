package partner

import (
	"time"

	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactRequest carries the contact fields shared by clients and vendors
type ContactRequest struct {
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Phone      string `json:"phone" binding:"max=50"`
	Address    string `json:"address" binding:"max=500"`
	City       string `json:"city" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

func (c ContactRequest) toDomain() partner.ContactInfo {
	return partner.ContactInfo{
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		PostalCode: c.PostalCode,
		Country:    c.Country,
	}
}

// ContactResponse mirrors ContactRequest
type ContactResponse struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func toContactResponse(c partner.ContactInfo) ContactResponse {
	return ContactResponse(c)
}

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Code    string         `json:"code" binding:"required,min=1,max=50"`
	Name    string         `json:"name" binding:"required,min=1,max=200"`
	Type    string         `json:"type" binding:"omitempty,oneof=company individual"`
	TaxID   string         `json:"tax_id" binding:"max=50"`
	Notes   string         `json:"notes" binding:"max=2000"`
	Contact ContactRequest `json:"contact"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name    *string         `json:"name" binding:"omitempty,min=1,max=200"`
	Type    *string         `json:"type" binding:"omitempty,oneof=company individual"`
	TaxID   *string         `json:"tax_id" binding:"omitempty,max=50"`
	Notes   *string         `json:"notes" binding:"omitempty,max=2000"`
	Contact *ContactRequest `json:"contact"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	TaxID     string          `json:"tax_id"`
	Notes     string          `json:"notes"`
	Status    string          `json:"status"`
	Contact   ContactResponse `json:"contact"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Type:      string(c.Type),
		TaxID:     c.TaxID,
		Notes:     c.Notes,
		Status:    string(c.Status),
		Contact:   toContactResponse(c.Contact),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// CreateVendorRequest represents a request to create a vendor
type CreateVendorRequest struct {
	Code             string         `json:"code" binding:"required,min=1,max=50"`
	Name             string         `json:"name" binding:"required,min=1,max=200"`
	ContactName      string         `json:"contact_name" binding:"max=100"`
	TaxID            string         `json:"tax_id" binding:"max=50"`
	PaymentTermsDays *int           `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
	Notes            string         `json:"notes" binding:"max=2000"`
	Contact          ContactRequest `json:"contact"`
}

// UpdateVendorRequest represents a request to update a vendor
type UpdateVendorRequest struct {
	Name             *string         `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName      *string         `json:"contact_name" binding:"omitempty,max=100"`
	TaxID            *string         `json:"tax_id" binding:"omitempty,max=50"`
	PaymentTermsDays *int            `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
	Notes            *string         `json:"notes" binding:"omitempty,max=2000"`
	Contact          *ContactRequest `json:"contact"`
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	ContactName      string          `json:"contact_name"`
	TaxID            string          `json:"tax_id"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	Notes            string          `json:"notes"`
	Status           string          `json:"status"`
	Contact          ContactResponse `json:"contact"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

func ToVendorResponse(v *partner.Vendor) VendorResponse {
	return VendorResponse{
		ID:               v.ID,
		Code:             v.Code,
		Name:             v.Name,
		ContactName:      v.ContactName,
		TaxID:            v.TaxID,
		PaymentTermsDays: v.PaymentTermsDays,
		Notes:            v.Notes,
		Status:           string(v.Status),
		Contact:          toContactResponse(v.Contact),
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
		Version:          v.Version,
	}
}

// ListFilter represents the query parameters of the client and vendor lists
type ListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Type     string `form:"type" binding:"omitempty,oneof=company individual"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Type != "" {
		filter.Filters["type"] = f.Type
	}
	return filter.Normalize()
}
