package inventory

import (
	"context"
	"errors"

	"github.com/bizdesk/backend/internal/domain/catalog"
	"github.com/bizdesk/backend/internal/domain/inventory"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// conflicting writers retry this many times before giving up
const maxConflictRetries = 3

// StockService handles stock levels and movements
type StockService struct {
	stockRepo   inventory.StockRepository
	productRepo catalog.ProductRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	stockRepo inventory.StockRepository,
	productRepo catalog.ProductRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Receive adds stock
func (s *StockService) Receive(ctx context.Context, tenantID uuid.UUID, req StockOperationRequest) (*StockLevelResponse, error) {
	ref := inventory.Reference{Type: req.ReferenceType, ID: req.ReferenceID}
	return s.move(ctx, tenantID, req.ProductID, req.CreatedBy, func(l *inventory.StockLevel) (*inventory.StockMovement, error) {
		return l.Receive(req.Quantity, req.Reason, ref)
	})
}

// Issue removes stock, failing with INSUFFICIENT_STOCK rather than going negative
func (s *StockService) Issue(ctx context.Context, tenantID uuid.UUID, req StockOperationRequest) (*StockLevelResponse, error) {
	ref := inventory.Reference{Type: req.ReferenceType, ID: req.ReferenceID}
	return s.move(ctx, tenantID, req.ProductID, req.CreatedBy, func(l *inventory.StockLevel) (*inventory.StockMovement, error) {
		return l.Issue(req.Quantity, req.Reason, ref)
	})
}

// Adjust sets the quantity to a physical count
func (s *StockService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*StockLevelResponse, error) {
	return s.move(ctx, tenantID, req.ProductID, req.CreatedBy, func(l *inventory.StockLevel) (*inventory.StockMovement, error) {
		return l.Adjust(req.CountedQuantity, req.Reason, inventory.Reference{Type: "count"})
	})
}

// SetMinQuantity changes the reorder threshold of a product
func (s *StockService) SetMinQuantity(ctx context.Context, tenantID, productID uuid.UUID, req SetMinQuantityRequest) (*StockLevelResponse, error) {
	level, err := s.loadLevel(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if err := level.SetMinQuantity(req.MinQuantity); err != nil {
		return nil, err
	}
	if err := s.stockRepo.SaveLevel(ctx, level); err != nil {
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// GetLevel returns the stock of one product, zero when nothing moved yet
func (s *StockService) GetLevel(ctx context.Context, tenantID, productID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.loadLevel(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// ListLevels lists stock levels
func (s *StockService) ListLevels(ctx context.Context, tenantID uuid.UUID, filter LevelFilter) ([]StockLevelResponse, int64, error) {
	levels, total, err := s.stockRepo.FindLevels(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]StockLevelResponse, len(levels))
	for i := range levels {
		responses[i] = ToStockLevelResponse(&levels[i])
	}
	return responses, total, nil
}

// ListMovements lists stock movements, newest first by default
func (s *StockService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]MovementResponse, int64, error) {
	movements, total, err := s.stockRepo.FindMovements(ctx, tenantID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses, total, nil
}

// move loads the level, applies fn and stores level and movement together,
// reloading and retrying when another writer got there first.
func (s *StockService) move(
	ctx context.Context,
	tenantID, productID uuid.UUID,
	createdBy *uuid.UUID,
	fn func(*inventory.StockLevel) (*inventory.StockMovement, error),
) (*StockLevelResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		level, err := s.loadLevel(ctx, tenantID, productID)
		if err != nil {
			return nil, err
		}
		movement, err := fn(level)
		if err != nil {
			return nil, err
		}
		movement.CreatedBy = createdBy

		err = s.stockRepo.SaveWithMovement(ctx, level, movement)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Debug("Stock level changed concurrently, retrying",
				zap.String("product_id", productID.String()),
				zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := shared.PublishAndClear(ctx, s.publisher, level); err != nil {
			return nil, err
		}
		response := ToStockLevelResponse(level)
		return &response, nil
	}
	return nil, lastErr
}

func (s *StockService) loadLevel(ctx context.Context, tenantID, productID uuid.UUID) (*inventory.StockLevel, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if !product.TrackStock {
		return nil, shared.NewDomainError("PRODUCT_NOT_TRACKED", "Stock is not tracked for this product")
	}
	level, err := s.stockRepo.FindLevel(ctx, tenantID, productID)
	if errors.Is(err, shared.ErrNotFound) {
		return inventory.NewStockLevel(tenantID, productID), nil
	}
	return level, err
}
