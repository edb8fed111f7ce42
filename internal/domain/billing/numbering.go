package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentType names an independent numbering sequence
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeQuote   DocumentType = "quote"
)

// GenerateDocumentNumber formats PREFIX-YYYY-NNNN. The sequence part is zero
// padded to four digits and simply grows past 9999.
func GenerateDocumentNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", strings.ToUpper(prefix), year, seq)
}

// ParseDocumentNumber is the inverse of GenerateDocumentNumber
func ParseDocumentNumber(number string) (prefix string, year, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number must look like PREFIX-YYYY-NNNN")
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return "", 0, 0, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Invalid year in document number")
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return "", 0, 0, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Invalid sequence in document number")
	}
	return parts[0], year, seq, nil
}

// NumberSequence hands out gapless-per-call sequence values, one counter per
// tenant, document type and year.
type NumberSequence interface {
	Next(ctx context.Context, tenantID uuid.UUID, docType DocumentType, year int) (int, error)
}
