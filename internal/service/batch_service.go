package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/notify"
	"github.com/atelier-ops/workshop-api/internal/qr"
	"github.com/atelier-ops/workshop-api/internal/repository"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
	"github.com/atelier-ops/workshop-api/pkg/label"
)

type batchStore interface {
	Create(ctx context.Context, batch *models.Batch) error
	GetByID(ctx context.Context, batchID int64) (*models.Batch, error)
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
	Transition(ctx context.Context, params repository.TransitionParams) (*models.Batch, error)
}

// BatchService drives a batch through its production lifecycle. Every status
// change is a single check-and-set update: when two workers race for the
// same batch, exactly one wins and the loser gets a conflict, never a
// silent overwrite.
type BatchService struct {
	repo     batchStore
	notifier notify.Notifier
	encoder  qr.Encoder
	renderer *label.Renderer
	logger   *zap.Logger
}

// NewBatchService constructs the service. notifier, encoder and renderer may
// be nil, which disables notifications and label rendering respectively.
func NewBatchService(repo batchStore, notifier notify.Notifier, encoder qr.Encoder, renderer *label.Renderer, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		repo:     repo,
		notifier: notifier,
		encoder:  encoder,
		renderer: renderer,
		logger:   logger,
	}
}

// Create registers a freshly cut batch in CREATED.
func (s *BatchService) Create(ctx context.Context, cutterID int64, req dto.CreateBatchRequest) (*models.Batch, error) {
	batch := &models.Batch{
		ProjectNm:  req.ProjectNm,
		ProductNm:  req.ProductNm,
		Color:      req.Color,
		Size:       req.Size,
		Quantity:   req.Quantity,
		PartsCount: req.PartsCount,
		CutterID:   cutterID,
		Type:       req.Type,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create batch")
	}
	s.logger.Info("batch created",
		zap.Int64("batch_id", batch.BatchID),
		zap.Int64("cutter_id", cutterID),
		zap.String("type", string(batch.Type)))
	return batch, nil
}

// Get fetches one batch.
func (s *BatchService) Get(ctx context.Context, batchID int64) (*models.Batch, error) {
	batch, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "get batch")
	}
	return batch, nil
}

// List returns batches matching the filter.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error) {
	batches, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list batches")
	}
	return batches, nil
}

// Take claims a CREATED batch for a seamstress. The claim both assigns and
// starts sewing; a batch someone else already claimed yields ALREADY_TAKEN.
func (s *BatchService) Take(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	now := time.Now().UTC()
	batch, err := s.repo.Transition(ctx, repository.TransitionParams{
		BatchID:           batchID,
		From:              []models.BatchStatus{models.BatchCreated},
		To:                models.BatchSewing,
		RequireUnassigned: true,
		SetSeamstress:     &seamstressID,
		SetSewStart:       &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, s.explainMiss(ctx, batchID, missTaken)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "take batch")
	}
	s.logger.Info("batch taken",
		zap.Int64("batch_id", batchID), zap.Int64("seamstress_id", seamstressID))
	return batch, nil
}

// FinishSewing moves a batch the actor is sewing to SEWN.
func (s *BatchService) FinishSewing(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	now := time.Now().UTC()
	batch, err := s.repo.Transition(ctx, repository.TransitionParams{
		BatchID:           batchID,
		From:              []models.BatchStatus{models.BatchSewing},
		To:                models.BatchSewn,
		RequireSeamstress: &seamstressID,
		SetSewEnd:         &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, s.explainOwnedMiss(ctx, batchID, seamstressID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finish sewing")
	}
	s.logger.Info("batch sewn",
		zap.Int64("batch_id", batchID), zap.Int64("seamstress_id", seamstressID))
	return batch, nil
}

// Review records the controller's verdict on a SEWN or REWORK_FINISHED
// batch. A REMAKE verdict sends the batch back to its original seamstress
// and notifies her exactly once; delivery failure never undoes the verdict.
func (s *BatchService) Review(ctx context.Context, controllerID, batchID int64, decision models.ReviewDecision) (*models.Batch, error) {
	var target models.BatchStatus
	switch decision {
	case models.DecisionApprove:
		target = models.BatchDone
	case models.DecisionReject:
		target = models.BatchDefect
	case models.DecisionRemake:
		target = models.BatchReworkDefect
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown decision %q", decision))
	}

	now := time.Now().UTC()
	batch, err := s.repo.Transition(ctx, repository.TransitionParams{
		BatchID:       batchID,
		From:          []models.BatchStatus{models.BatchSewn, models.BatchReworkFinished},
		To:            target,
		SetController: &controllerID,
		SetControl:    &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, s.explainMiss(ctx, batchID, missTransition)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "review batch")
	}
	s.logger.Info("batch reviewed",
		zap.Int64("batch_id", batchID),
		zap.Int64("controller_id", controllerID),
		zap.String("decision", string(decision)),
		zap.String("status", string(batch.Status)))

	if decision == models.DecisionRemake && s.notifier != nil && batch.SeamstressID != nil {
		text := fmt.Sprintf("Пачка №%d отправлена на доработку. Исправьте дефекты и отметьте начало работы.", batch.BatchID)
		if err := s.notifier.Send(ctx, *batch.SeamstressID, text); err != nil {
			s.logger.Error("rework notification failed",
				zap.Int64("batch_id", batchID),
				zap.Int64("seamstress_id", *batch.SeamstressID),
				zap.Error(err))
		}
	}
	return batch, nil
}

// StartRework lets the original seamstress pick a REWORK_DEFECT batch back
// up. Nobody else may touch it. Like Take, starting marks the sewing start.
func (s *BatchService) StartRework(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	now := time.Now().UTC()
	batch, err := s.repo.Transition(ctx, repository.TransitionParams{
		BatchID:           batchID,
		From:              []models.BatchStatus{models.BatchReworkDefect},
		To:                models.BatchReworkStarted,
		RequireSeamstress: &seamstressID,
		SetSewStart:       &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, s.explainOwnedMiss(ctx, batchID, seamstressID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "start rework")
	}
	s.logger.Info("rework started",
		zap.Int64("batch_id", batchID), zap.Int64("seamstress_id", seamstressID))
	return batch, nil
}

// FinishRework moves a reworked batch back to the controller's queue.
func (s *BatchService) FinishRework(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	now := time.Now().UTC()
	batch, err := s.repo.Transition(ctx, repository.TransitionParams{
		BatchID:           batchID,
		From:              []models.BatchStatus{models.BatchReworkStarted},
		To:                models.BatchReworkFinished,
		RequireSeamstress: &seamstressID,
		SetSewEnd:         &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, s.explainOwnedMiss(ctx, batchID, seamstressID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finish rework")
	}
	s.logger.Info("rework finished",
		zap.Int64("batch_id", batchID), zap.Int64("seamstress_id", seamstressID))
	return batch, nil
}

// Label renders the printable label PDF for a batch.
func (s *BatchService) Label(ctx context.Context, batchID int64) ([]byte, error) {
	if s.encoder == nil || s.renderer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "label rendering is not configured")
	}
	batch, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	lines := batch.SummaryLines()
	png, err := s.encoder.Encode(ctx, strings.Join(lines, "\n"), 300)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "render code image")
	}
	pdf, err := s.renderer.Render(png, lines)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render label")
	}
	return pdf, nil
}

type missKind int

const (
	missTaken missKind = iota
	missTransition
)

// explainMiss turns a failed guard into the right conflict error by looking
// at what the batch holds now.
func (s *BatchService) explainMiss(ctx context.Context, batchID int64, kind missKind) error {
	batch, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "inspect batch")
	}
	if kind == missTaken {
		return appErrors.Clone(appErrors.ErrAlreadyTaken,
			fmt.Sprintf("batch %d is already %s", batchID, batch.Status))
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("batch %d is %s", batchID, batch.Status))
}

// explainOwnedMiss distinguishes "not yours" from "wrong status".
func (s *BatchService) explainOwnedMiss(ctx context.Context, batchID, seamstressID int64) error {
	batch, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "inspect batch")
	}
	if batch.SeamstressID == nil || *batch.SeamstressID != seamstressID {
		return appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("batch %d belongs to another seamstress", batchID))
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("batch %d is %s", batchID, batch.Status))
}
