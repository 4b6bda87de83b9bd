package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/repository"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

type remakeStore interface {
	Create(ctx context.Context, remake *models.Remake) error
	GetByID(ctx context.Context, remakeID int64) (*models.Remake, error)
	List(ctx context.Context, filter models.RemakeFilter) ([]models.Remake, error)
	Advance(ctx context.Context, remakeID int64, from, to models.RemakeStatus) (*models.Remake, error)
}

// RemakeService tracks equipment repair tickets from report to resolution.
type RemakeService struct {
	repo       remakeStore
	notifier   notify.Notifier
	managerIDs []int64
	logger     *zap.Logger
}

// NewRemakeService constructs the service. notifier may be nil.
func NewRemakeService(repo remakeStore, notifier notify.Notifier, managerIDs []int64, logger *zap.Logger) *RemakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemakeService{repo: repo, notifier: notifier, managerIDs: managerIDs, logger: logger}
}

// Create opens a ticket and tells the managers about it.
func (s *RemakeService) Create(ctx context.Context, applicantID int64, req dto.CreateRemakeRequest) (*models.Remake, error) {
	remake := &models.Remake{
		EquipmentNm: req.EquipmentNm,
		Description: req.Description,
		ApplicantID: applicantID,
	}
	if err := s.repo.Create(ctx, remake); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create remake")
	}
	s.logger.Info("remake ticket opened",
		zap.Int64("remake_id", remake.RemakeID), zap.Int64("applicant_id", applicantID))

	if s.notifier != nil {
		// The gateway renders messages as HTML, so user text is escaped.
		text := fmt.Sprintf("Новая заявка на ремонт №%d\nОборудование: %s\n%s",
			remake.RemakeID, html.EscapeString(remake.EquipmentNm), html.EscapeString(remake.Description))
		for _, managerID := range s.managerIDs {
			if err := s.notifier.Send(ctx, managerID, text); err != nil {
				s.logger.Error("remake notification failed",
					zap.Int64("manager_id", managerID), zap.Error(err))
			}
		}
	}
	return remake, nil
}

// Start moves a ticket into IN_PROGRESS.
func (s *RemakeService) Start(ctx context.Context, remakeID int64) (*models.Remake, error) {
	return s.advance(ctx, remakeID, models.RemakeCreated, models.RemakeInProgress)
}

// Finish closes a ticket. The applicant is told, best-effort.
func (s *RemakeService) Finish(ctx context.Context, remakeID int64) (*models.Remake, error) {
	remake, err := s.advance(ctx, remakeID, models.RemakeInProgress, models.RemakeDone)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		text := fmt.Sprintf("Ремонт по заявке №%d завершён: %s", remake.RemakeID, remake.EquipmentNm)
		if sendErr := s.notifier.Send(ctx, remake.ApplicantID, text); sendErr != nil {
			s.logger.Error("remake completion notification failed",
				zap.Int64("applicant_id", remake.ApplicantID), zap.Error(sendErr))
		}
	}
	return remake, nil
}

func (s *RemakeService) advance(ctx context.Context, remakeID int64, from, to models.RemakeStatus) (*models.Remake, error) {
	remake, err := s.repo.Advance(ctx, remakeID, from, to)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			current, getErr := s.repo.GetByID(ctx, remakeID)
			if getErr != nil {
				if errors.Is(getErr, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrNotFound, "remake not found")
				}
				return nil, appErrors.Wrap(getErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "inspect remake")
			}
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("remake %d is %s", remakeID, current.Status))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "advance remake")
	}
	s.logger.Info("remake advanced",
		zap.Int64("remake_id", remakeID), zap.String("status", string(to)))
	return remake, nil
}

// List returns tickets, optionally narrowed by status or applicant.
func (s *RemakeService) List(ctx context.Context, filter models.RemakeFilter) ([]models.Remake, error) {
	remakes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list remakes")
	}
	return remakes, nil
}

// Get fetches one ticket.
func (s *RemakeService) Get(ctx context.Context, remakeID int64) (*models.Remake, error) {
	remake, err := s.repo.GetByID(ctx, remakeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "remake not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "get remake")
	}
	return remake, nil
}
