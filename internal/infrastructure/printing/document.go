package printing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind selects the template
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindQuote   DocumentKind = "quote"
)

// Party is the issuer or the recipient block of a document
type Party struct {
	Name       string
	Address    string
	City       string
	PostalCode string
	Country    string
	Email      string
	Phone      string
	TaxID      string
}

type DocumentLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

type VATLine struct {
	Rate decimal.Decimal
	Base decimal.Decimal
	VAT  decimal.Decimal
}

// DocumentView is everything a template needs; it holds no domain types so the
// templates only depend on this package.
type DocumentView struct {
	Kind     DocumentKind
	Number   string
	Status   string
	Currency string

	IssueDate time.Time
	// DueDate for invoices, validity date for quotes
	DueDate time.Time

	Company Party
	Client  Party

	Lines     []DocumentLine
	Breakdown []VATLine
	Subtotal  decimal.Decimal
	VATTotal  decimal.Decimal
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Balance   decimal.Decimal

	PaymentTerms string
	Notes        string
	Footer       string
}

// Title is used for the PDF metadata and the download file name
func (v *DocumentView) Title() string {
	if v.Kind == KindQuote {
		return "Quote " + v.Number
	}
	return "Invoice " + v.Number
}
