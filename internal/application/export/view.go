package export

import (
	"fmt"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/infrastructure/printing"
)

func companyParty(cs *settings.CompanySettings) printing.Party {
	return printing.Party{
		Name:    cs.CompanyName,
		Address: cs.Address,
		Email:   cs.Email,
		Phone:   cs.Phone,
		TaxID:   cs.TaxID,
	}
}

func clientParty(c *partner.Client) printing.Party {
	return printing.Party{
		Name:       c.Name,
		Address:    c.Contact.Address,
		City:       c.Contact.City,
		PostalCode: c.Contact.PostalCode,
		Country:    c.Contact.Country,
		Email:      c.Contact.Email,
		Phone:      c.Contact.Phone,
		TaxID:      c.TaxID,
	}
}

func documentView(kind printing.DocumentKind, doc *billing.Document, cs *settings.CompanySettings, c *partner.Client) *printing.DocumentView {
	v := &printing.DocumentView{
		Kind:      kind,
		Number:    doc.Number,
		Currency:  doc.Currency,
		IssueDate: doc.IssueDate,
		Company:   companyParty(cs),
		Client:    clientParty(c),
		Subtotal:  doc.Totals.Subtotal,
		VATTotal:  doc.Totals.VATTotal,
		Total:     doc.Totals.Total,
		Balance:   doc.Totals.Total,
		Notes:     doc.Notes,
		Footer:    cs.FooterNote,
	}
	v.Lines = make([]printing.DocumentLine, len(doc.Lines))
	for i, l := range doc.Lines {
		v.Lines[i] = printing.DocumentLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VATRate:     l.VATRate,
			Discount:    l.DiscountPercent,
			Total:       l.TotalAmount,
		}
	}
	v.Breakdown = make([]printing.VATLine, len(doc.Totals.Breakdown))
	for i, b := range doc.Totals.Breakdown {
		v.Breakdown[i] = printing.VATLine{Rate: b.Rate, Base: b.Base, VAT: b.VAT}
	}
	return v
}

func invoiceView(inv *billing.Invoice, cs *settings.CompanySettings, c *partner.Client) *printing.DocumentView {
	v := documentView(printing.KindInvoice, &inv.Document, cs, c)
	v.Status = string(inv.Status)
	v.DueDate = inv.DueDate
	v.Paid = inv.AmountPaid
	v.Balance = inv.Balance()
	if cs.PaymentTermsDays > 0 {
		v.PaymentTerms = fmt.Sprintf("Payment due within %d days", cs.PaymentTermsDays)
	}
	return v
}

func quoteView(q *billing.Quote, cs *settings.CompanySettings, c *partner.Client) *printing.DocumentView {
	v := documentView(printing.KindQuote, &q.Document, cs, c)
	v.Status = string(q.Status)
	v.DueDate = q.ValidUntil
	return v
}
