package partner

import (
	"regexp"
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
)

var (
	codeRegex  = regexp.MustCompile(`^[A-Z0-9_\-]+$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Status is shared by clients and vendors
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ContactInfo groups the ways to reach a partner
type ContactInfo struct {
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
}

// Normalize trims fields and validates the email
func (c ContactInfo) Normalize() (ContactInfo, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	c.Country = strings.TrimSpace(c.Country)
	if c.Email != "" && (len(c.Email) > 200 || !emailRegex.MatchString(c.Email)) {
		return c, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(c.Phone) > 50 {
		return c, shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	return c, nil
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", shared.NewDomainError("INVALID_CODE", "Code cannot be empty")
	}
	if len(code) > 50 {
		return "", shared.NewDomainError("INVALID_CODE", "Code cannot exceed 50 characters")
	}
	if !codeRegex.MatchString(code) {
		return "", shared.NewDomainError("INVALID_CODE", "Code can only contain letters, numbers, underscores, and hyphens")
	}
	return code, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return "", shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return name, nil
}
