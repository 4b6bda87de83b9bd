package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/repository"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

type employeeStore interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, tgID int64) (*models.Employee, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
	UpdateStatus(ctx context.Context, tgID int64, status models.EmployeeStatus) (*models.Employee, error)
	Delete(ctx context.Context, tgID int64) error
}

// EmployeeService handles registration and the manager approval gate. New
// signups land in PENDING and stay locked out of every workflow until a
// manager approves them; a rejection removes the record outright.
type EmployeeService struct {
	repo       employeeStore
	notifier   notify.Notifier
	managerIDs []int64
	logger     *zap.Logger
}

// NewEmployeeService constructs the service. notifier may be nil.
func NewEmployeeService(repo employeeStore, notifier notify.Notifier, managerIDs []int64, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, notifier: notifier, managerIDs: managerIDs, logger: logger}
}

// Register files a new signup pending manager review.
func (s *EmployeeService) Register(ctx context.Context, req dto.RegisterEmployeeRequest) (*models.Employee, error) {
	if !req.Job.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown job %q", req.Job))
	}
	employee := &models.Employee{
		TgID: req.TgID,
		Name: req.Name,
		Job:  req.Job,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "employee already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "register employee")
	}
	s.logger.Info("employee registered",
		zap.Int64("tg_id", employee.TgID), zap.String("job", string(employee.Job)))

	if s.notifier != nil {
		text := fmt.Sprintf("Новая заявка на регистрацию:\n%s — %s (ID %d)",
			employee.Name, employee.Job, employee.TgID)
		for _, managerID := range s.managerIDs {
			if err := s.notifier.Send(ctx, managerID, text); err != nil {
				s.logger.Error("signup notification failed",
					zap.Int64("manager_id", managerID), zap.Error(err))
			}
		}
	}
	return employee, nil
}

// Review resolves a pending signup: approval flips the record to APPROVED,
// rejection deletes it. The applicant is told either way, best-effort.
func (s *EmployeeService) Review(ctx context.Context, tgID int64, approve bool) (*models.Employee, error) {
	if approve {
		employee, err := s.repo.UpdateStatus(ctx, tgID, models.EmployeeApproved)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "approve employee")
		}
		s.logger.Info("employee approved", zap.Int64("tg_id", tgID))
		s.tell(ctx, tgID, "Ваша заявка одобрена. Добро пожаловать!")
		return employee, nil
	}

	if err := s.repo.Delete(ctx, tgID); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "reject employee")
	}
	s.logger.Info("employee rejected", zap.Int64("tg_id", tgID))
	s.tell(ctx, tgID, "Ваша заявка отклонена.")
	return nil, nil
}

// Get fetches one employee.
func (s *EmployeeService) Get(ctx context.Context, tgID int64) (*models.Employee, error) {
	employee, err := s.repo.GetByID(ctx, tgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "get employee")
	}
	return employee, nil
}

// List returns employees matching the filter.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	employees, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list employees")
	}
	return employees, nil
}

func (s *EmployeeService) tell(ctx context.Context, tgID int64, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, tgID, text); err != nil {
		s.logger.Error("employee notification failed", zap.Int64("tg_id", tgID), zap.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
