package purchase

import (
	"context"
	"errors"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	"github.com/bizdesk/backend/internal/domain/partner"
	"github.com/bizdesk/backend/internal/domain/purchase"
	"github.com/bizdesk/backend/internal/domain/settings"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseService handles expenses
type ExpenseService struct {
	expenseRepo  purchase.ExpenseRepository
	vendorRepo   partner.VendorRepository
	settingsRepo settings.Repository
	publisher    shared.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo purchase.ExpenseRepository,
	vendorRepo partner.VendorRepository,
	settingsRepo settings.Repository,
	publisher shared.EventPublisher,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		vendorRepo:   vendorRepo,
		settingsRepo: settingsRepo,
		publisher:    publisher,
	}
}

// Create records an expense. Without a VAT rate the company default applies.
func (s *ExpenseService) Create(ctx context.Context, tenantID uuid.UUID, req ExpenseRequest) (*ExpenseResponse, error) {
	in, err := s.input(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	expense, err := purchase.NewExpense(tenantID, in)
	if err != nil {
		return nil, err
	}
	if by := appaudit.SourceFrom(ctx).UserID; by != nil {
		expense.SetCreatedBy(*by)
	}
	return s.save(ctx, expense)
}

func (s *ExpenseService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	expenses, total, err := s.expenseRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

func (s *ExpenseService) Update(ctx context.Context, tenantID, id uuid.UUID, req ExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	in, err := s.input(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	if err := expense.Update(in); err != nil {
		return nil, err
	}
	return s.save(ctx, expense)
}

func (s *ExpenseService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, purchase.NewExpenseDeletedEvent(expense))
	}
	return nil
}

func (s *ExpenseService) input(ctx context.Context, tenantID uuid.UUID, req ExpenseRequest) (purchase.ExpenseInput, error) {
	if req.VendorID != nil {
		if _, err := s.vendorRepo.FindByID(ctx, tenantID, *req.VendorID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return purchase.ExpenseInput{}, shared.NewDomainError("INVALID_VENDOR", "Vendor not found")
			}
			return purchase.ExpenseInput{}, err
		}
	}
	in := purchase.ExpenseInput{
		VendorID:      req.VendorID,
		Category:      req.Category,
		Description:   req.Description,
		Date:          req.Date,
		NetAmount:     req.NetAmount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
	}
	if req.VATRate != nil {
		in.VATRate = *req.VATRate
		return in, nil
	}
	cfg, err := s.settingsRepo.Get(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		cfg = settings.Defaults(tenantID, "")
	} else if err != nil {
		return purchase.ExpenseInput{}, err
	}
	in.VATRate = cfg.DefaultVATRate
	return in, nil
}

func (s *ExpenseService) save(ctx context.Context, expense *purchase.Expense) (*ExpenseResponse, error) {
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, expense); err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}
