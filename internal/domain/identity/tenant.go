package identity

import (
	"regexp"
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
)

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Tenant is a company workspace. All business data is partitioned by tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Name   string
	Slug   string
	Active bool
}

func NewTenant(name string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Company name must be between 1 and 200 characters")
	}
	slug := strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Company name must contain letters or digits")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Active:            true,
	}, nil
}
