package cash

import (
	"context"
	"errors"
	"time"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	appbilling "github.com/bizdesk/backend/internal/application/billing"
	"github.com/bizdesk/backend/internal/domain/cash"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// concurrent movements on one register retry this many times
const maxConflictRetries = 3

// RegisterService handles cash registers, their sessions and movements
type RegisterService struct {
	registerRepo cash.RegisterRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewRegisterService creates a new RegisterService
func NewRegisterService(registerRepo cash.RegisterRepository, publisher shared.EventPublisher, logger *zap.Logger) *RegisterService {
	return &RegisterService{
		registerRepo: registerRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates a closed register
func (s *RegisterService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRegisterRequest) (*RegisterResponse, error) {
	register, err := cash.NewRegister(tenantID, req.Name, req.Location)
	if err != nil {
		return nil, err
	}
	if by := appaudit.SourceFrom(ctx).UserID; by != nil {
		register.SetCreatedBy(*by)
	}
	return s.save(ctx, register)
}

// GetByID retrieves a register by ID
func (s *RegisterService) GetByID(ctx context.Context, tenantID, registerID uuid.UUID) (*RegisterResponse, error) {
	register, err := s.registerRepo.FindByID(ctx, tenantID, registerID)
	if err != nil {
		return nil, err
	}
	response := ToRegisterResponse(register)
	return &response, nil
}

// List retrieves registers matching the filter
func (s *RegisterService) List(ctx context.Context, tenantID uuid.UUID, filter RegisterListFilter) ([]RegisterResponse, int64, error) {
	registers, total, err := s.registerRepo.FindAll(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]RegisterResponse, len(registers))
	for i := range registers {
		responses[i] = ToRegisterResponse(&registers[i])
	}
	return responses, total, nil
}

// Update renames a register
func (s *RegisterService) Update(ctx context.Context, tenantID, registerID uuid.UUID, req UpdateRegisterRequest) (*RegisterResponse, error) {
	register, err := s.registerRepo.FindByID(ctx, tenantID, registerID)
	if err != nil {
		return nil, err
	}
	if err := register.Rename(req.Name, req.Location); err != nil {
		return nil, err
	}
	register.AddDomainEvent(cash.NewRegisterUpdatedEvent(register))
	return s.save(ctx, register)
}

// Delete deletes a closed register along with its history
func (s *RegisterService) Delete(ctx context.Context, tenantID, registerID uuid.UUID) error {
	register, err := s.registerRepo.FindByID(ctx, tenantID, registerID)
	if err != nil {
		return err
	}
	if register.IsOpen() {
		return shared.NewInvalidStateError("Close the register before deleting it")
	}
	if err := s.registerRepo.Delete(ctx, tenantID, registerID); err != nil {
		return err
	}
	if s.publisher != nil {
		return s.publisher.Publish(ctx, cash.NewRegisterDeletedEvent(register))
	}
	return nil
}

// Open starts a session
func (s *RegisterService) Open(ctx context.Context, tenantID, registerID uuid.UUID, req OpenRegisterRequest) (*RegisterResponse, error) {
	by, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	register, err := s.registerRepo.FindByID(ctx, tenantID, registerID)
	if err != nil {
		return nil, err
	}
	if err := register.Open(req.OpeningBalance, by, s.now()); err != nil {
		return nil, err
	}
	return s.save(ctx, register)
}

// Record adds a movement to an open register
func (s *RegisterService) Record(ctx context.Context, tenantID, registerID uuid.UUID, req RecordMovementRequest) (*MovementResponse, error) {
	return s.record(ctx, tenantID, registerID, func(r *cash.Register) (*cash.Movement, error) {
		return r.Record(cash.MovementType(req.Type), req.Amount, cash.PaymentMethod(req.Method), req.Reference, req.InvoiceID, appaudit.SourceFrom(ctx).UserID)
	})
}

// RecordSale books an invoice payment taken at the counter
func (s *RegisterService) RecordSale(ctx context.Context, tenantID, registerID uuid.UUID, sale appbilling.CashSale) error {
	invoiceID := sale.InvoiceID
	_, err := s.record(ctx, tenantID, registerID, func(r *cash.Register) (*cash.Movement, error) {
		return r.Record(cash.MovementSale, sale.Amount, cash.PaymentMethod(sale.Method), sale.Number, &invoiceID, sale.CreatedBy)
	})
	return err
}

// Close ends the session and stores the reconciliation
func (s *RegisterService) Close(ctx context.Context, tenantID, registerID uuid.UUID, req CloseRegisterRequest) (*ClosingResponse, error) {
	by, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	register, err := s.registerRepo.FindByID(ctx, tenantID, registerID)
	if err != nil {
		return nil, err
	}
	closing, err := register.Close(req.Counted, req.Notes, by, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.registerRepo.SaveWithClosing(ctx, register, closing); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, register); err != nil {
		return nil, err
	}
	if !closing.Difference.IsZero() {
		s.logger.Info("Register closed with a cash difference",
			zap.String("register", register.Name),
			zap.String("difference", closing.Difference.StringFixed(2)))
	}
	response := ToClosingResponse(closing)
	return &response, nil
}

// ListMovements retrieves the movements of a register
func (s *RegisterService) ListMovements(ctx context.Context, tenantID, registerID uuid.UUID, filter MovementFilter) ([]MovementResponse, int64, error) {
	if _, err := s.registerRepo.FindByID(ctx, tenantID, registerID); err != nil {
		return nil, 0, err
	}
	movements, total, err := s.registerRepo.FindMovements(ctx, tenantID, registerID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses, total, nil
}

// ListClosings retrieves the closings of a register
func (s *RegisterService) ListClosings(ctx context.Context, tenantID, registerID uuid.UUID, filter MovementFilter) ([]ClosingResponse, int64, error) {
	if _, err := s.registerRepo.FindByID(ctx, tenantID, registerID); err != nil {
		return nil, 0, err
	}
	closings, total, err := s.registerRepo.FindClosings(ctx, tenantID, registerID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ClosingResponse, len(closings))
	for i := range closings {
		responses[i] = ToClosingResponse(&closings[i])
	}
	return responses, total, nil
}

// record applies fn to a fresh copy of the register, retrying when another
// movement was saved in between
func (s *RegisterService) record(
	ctx context.Context,
	tenantID, registerID uuid.UUID,
	fn func(*cash.Register) (*cash.Movement, error),
) (*MovementResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		register, err := s.registerRepo.FindByID(ctx, tenantID, registerID)
		if err != nil {
			return nil, err
		}
		movement, err := fn(register)
		if err != nil {
			return nil, err
		}
		err = s.registerRepo.SaveWithMovement(ctx, register, movement)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Debug("Register changed concurrently, retrying",
				zap.String("register_id", registerID.String()),
				zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := shared.PublishAndClear(ctx, s.publisher, register); err != nil {
			return nil, err
		}
		response := ToMovementResponse(movement)
		return &response, nil
	}
	return nil, lastErr
}

func (s *RegisterService) save(ctx context.Context, register *cash.Register) (*RegisterResponse, error) {
	if err := s.registerRepo.Save(ctx, register); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, register); err != nil {
		return nil, err
	}
	response := ToRegisterResponse(register)
	return &response, nil
}

// actor returns the authenticated user, required to open and close sessions
func actor(ctx context.Context) (uuid.UUID, error) {
	if by := appaudit.SourceFrom(ctx).UserID; by != nil {
		return *by, nil
	}
	return uuid.Nil, shared.ErrUnauthorized
}

var _ appbilling.CashRecorder = (*RegisterService)(nil)
