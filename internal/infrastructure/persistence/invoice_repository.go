package persistence

import (
	"context"
	"time"

	"github.com/bizdesk/backend/internal/domain/billing"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var issuedInvoiceStatuses = []billing.InvoiceStatus{
	billing.InvoiceStatusSent,
	billing.InvoiceStatusPartiallyPaid,
	billing.InvoiceStatusPaid,
	billing.InvoiceStatusOverdue,
}

// GormInvoiceRepository implements billing.InvoiceRepository using GORM.
// Payments live in invoice_payments and are only ever appended.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func withPayments(db *gorm.DB) *gorm.DB {
	return db.Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("paid_at ASC")
	})
}

func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID), withPayments).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, int64, error) {
	q := conn(ctx, r.db).Model(&models.InvoiceModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "number", "notes")
	for _, key := range []string{"status", "client_id", "market_id", "subscription_id"} {
		if v, ok := filterString(filter, key); ok {
			q = q.Where(key+" = ?", v)
		}
	}
	q = dateRange(q, filter, "issue_date")
	rows, total, err := page[models.InvoiceModel](q, filter, invoiceSortFields, "issue_date")
	if err != nil {
		return nil, 0, err
	}
	return invoicesToDomain(rows), total, nil
}

func (r *GormInvoiceRepository) FindDueForOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	err := conn(ctx, r.db).Scopes(tenantScope(tenantID), withPayments).
		Where("status IN ?", []billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusPartiallyPaid}).
		Where("due_date < ?", asOf).
		Order("due_date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status billing.InvoiceStatus) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID), withPayments).
		Where("status = ?", status).Order("due_date").Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

func (r *GormInvoiceRepository) FindIssuedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).
		Where("status IN ?", issuedInvoiceStatuses).
		Where("issue_date >= ? AND issue_date <= ?", from, to).
		Order("issue_date").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

func (r *GormInvoiceRepository) ExistsForClient(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error) {
	return exists(ctx, conn(ctx, r.db), &models.InvoiceModel{}, "tenant_id = ? AND client_id = ?", tenantID, clientID)
}

func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(ctx, tx, model, invoice); err != nil {
			return err
		}
		if len(model.Payments) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Payments).Error
	})
}

func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND invoice_id = ?", tenantID, id).Delete(&models.InvoicePaymentModel{}).Error; err != nil {
			return err
		}
		return deleteScoped(ctx, tx, &models.InvoiceModel{}, tenantID, id)
	})
}

func invoicesToDomain(rows []models.InvoiceModel) []billing.Invoice {
	invoices := make([]billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices
}

// GormQuoteRepository implements billing.QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

func (r *GormQuoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Quote, error) {
	var model models.QuoteModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormQuoteRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Quote, int64, error) {
	q := conn(ctx, r.db).Model(&models.QuoteModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "number", "notes")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterString(filter, "client_id"); ok {
		q = q.Where("client_id = ?", v)
	}
	q = dateRange(q, filter, "issue_date")
	rows, total, err := page[models.QuoteModel](q, filter, quoteSortFields, "issue_date")
	if err != nil {
		return nil, 0, err
	}
	quotes := make([]billing.Quote, len(rows))
	for i := range rows {
		quotes[i] = *rows[i].ToDomain()
	}
	return quotes, total, nil
}

// FindExpirable returns sent quotes whose validity ended before asOf
func (r *GormQuoteRepository) FindExpirable(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.Quote, error) {
	var rows []models.QuoteModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).
		Where("status = ? AND valid_until < ?", billing.QuoteStatusSent, asOf).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	quotes := make([]billing.Quote, len(rows))
	for i := range rows {
		quotes[i] = *rows[i].ToDomain()
	}
	return quotes, nil
}

func (r *GormQuoteRepository) Save(ctx context.Context, quote *billing.Quote) error {
	return saveVersioned(ctx, conn(ctx, r.db), models.QuoteModelFromDomain(quote), quote)
}

func (r *GormQuoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(ctx, r.db, &models.QuoteModel{}, tenantID, id)
}

// GormReminderRepository implements billing.ReminderRepository using GORM
type GormReminderRepository struct {
	db *gorm.DB
}

func NewGormReminderRepository(db *gorm.DB) *GormReminderRepository {
	return &GormReminderRepository{db: db}
}

func (r *GormReminderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Reminder, error) {
	var model models.ReminderModel
	if err := conn(ctx, r.db).Scopes(tenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormReminderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Reminder, int64, error) {
	q := conn(ctx, r.db).Model(&models.ReminderModel{}).Scopes(tenantScope(tenantID))
	q = search(q, filter.Search, "message")
	if v, ok := filterString(filter, "status"); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterString(filter, "invoice_id"); ok {
		q = q.Where("invoice_id = ?", v)
	}
	if v, ok := filterInt(filter, "level"); ok {
		q = q.Where("level = ?", v)
	}
	rows, total, err := page[models.ReminderModel](q, filter, reminderSortFields, "scheduled_for")
	if err != nil {
		return nil, 0, err
	}
	reminders := make([]billing.Reminder, len(rows))
	for i := range rows {
		reminders[i] = *rows[i].ToDomain()
	}
	return reminders, total, nil
}

func (r *GormReminderRepository) MaxLevelForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int, error) {
	var level int
	err := conn(ctx, r.db).Model(&models.ReminderModel{}).Scopes(tenantScope(tenantID)).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(MAX(level), 0)").
		Row().Scan(&level)
	return level, err
}

func (r *GormReminderRepository) Save(ctx context.Context, reminder *billing.Reminder) error {
	return saveVersioned(ctx, conn(ctx, r.db), models.ReminderModelFromDomain(reminder), reminder)
}

// GormNumberSequence implements billing.NumberSequence on document_sequences.
// Each call commits on its own so a number is never handed out twice.
type GormNumberSequence struct {
	db *gorm.DB
}

func NewGormNumberSequence(db *gorm.DB) *GormNumberSequence {
	return &GormNumberSequence{db: db}
}

func (s *GormNumberSequence) Next(ctx context.Context, tenantID uuid.UUID, docType billing.DocumentType, year int) (int, error) {
	var next int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		seed := models.DocumentSequenceModel{TenantID: tenantID, DocType: string(docType), Year: year, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		where := tx.Model(&models.DocumentSequenceModel{}).
			Where("tenant_id = ? AND doc_type = ? AND year = ?", tenantID, string(docType), year)
		if err := where.Session(&gorm.Session{}).Updates(map[string]any{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		var row models.DocumentSequenceModel
		if err := where.Session(&gorm.Session{}).First(&row).Error; err != nil {
			return err
		}
		next = row.LastValue
		return nil
	})
	return next, err
}
