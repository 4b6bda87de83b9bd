package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

type paymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByEmployee(ctx context.Context, employeeID int64) ([]models.Payment, error)
}

// PaymentService records the append-only compensation ledger. Amounts keep
// their sign conventions: fines go in negative, everything else positive,
// regardless of how the request spelled them.
type PaymentService struct {
	repo   paymentStore
	logger *zap.Logger
}

// NewPaymentService constructs the service.
func NewPaymentService(repo paymentStore, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, logger: logger}
}

// Create records a payout or fine.
func (s *PaymentService) Create(ctx context.Context, req dto.CreatePaymentRequest) (*models.Payment, error) {
	if req.Amount == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must be non-zero")
	}
	amount := req.Amount
	if amount < 0 {
		amount = -amount
	}
	if req.Type == models.PaymentFine {
		amount = -amount
	}
	payment := &models.Payment{
		EmployeeID: req.EmployeeID,
		Amount:     amount,
		Type:       req.Type,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create payment")
	}
	s.logger.Info("payment recorded",
		zap.Int64("payment_id", payment.PaymentID),
		zap.Int64("employee_id", payment.EmployeeID),
		zap.Int64("amount", payment.Amount),
		zap.String("type", string(payment.Type)))
	return payment, nil
}

// ListByEmployee returns one employee's ledger.
func (s *PaymentService) ListByEmployee(ctx context.Context, employeeID int64) ([]models.Payment, error) {
	payments, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list payments")
	}
	return payments, nil
}
