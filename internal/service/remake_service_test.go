package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

type stubRemakeStore struct {
	remakes map[int64]*models.Remake
	nextID  int64
}

func newStubRemakeStore() *stubRemakeStore {
	return &stubRemakeStore{remakes: map[int64]*models.Remake{}}
}

func (s *stubRemakeStore) Create(_ context.Context, remake *models.Remake) error {
	s.nextID++
	remake.RemakeID = s.nextID
	remake.Status = models.RemakeCreated
	clone := *remake
	s.remakes[remake.RemakeID] = &clone
	return nil
}

func (s *stubRemakeStore) GetByID(_ context.Context, remakeID int64) (*models.Remake, error) {
	remake, ok := s.remakes[remakeID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *remake
	return &clone, nil
}

func (s *stubRemakeStore) List(_ context.Context, filter models.RemakeFilter) ([]models.Remake, error) {
	var out []models.Remake
	for _, r := range s.remakes {
		if filter.ApplicantID != nil && r.ApplicantID != *filter.ApplicantID {
			continue
		}
		if len(filter.Statuses) == 0 {
			out = append(out, *r)
			continue
		}
		for _, status := range filter.Statuses {
			if r.Status == status {
				out = append(out, *r)
				break
			}
		}
	}
	return out, nil
}

func (s *stubRemakeStore) Advance(_ context.Context, remakeID int64, from, to models.RemakeStatus) (*models.Remake, error) {
	remake, ok := s.remakes[remakeID]
	if !ok || remake.Status != from {
		return nil, sql.ErrNoRows
	}
	remake.Status = to
	clone := *remake
	return &clone, nil
}

func TestRemakeServiceCreateNotifiesManagers(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewRemakeService(newStubRemakeStore(), notifier, []int64{1, 2}, nil)

	remake, err := svc.Create(context.Background(), 77, dto.CreateRemakeRequest{
		EquipmentNm: "Оверлок", Description: "рвёт нить <на> шве",
	})
	require.NoError(t, err)
	require.Equal(t, models.RemakeCreated, remake.Status)
	assert.Equal(t, []int64{1, 2}, notifier.chats)
	// User text is escaped for the gateway's HTML rendering.
	assert.Contains(t, notifier.sent[0], "&lt;на&gt;")
}

func TestRemakeServiceLifecycle(t *testing.T) {
	notifier := &stubNotifier{}
	store := newStubRemakeStore()
	svc := NewRemakeService(store, notifier, nil, nil)

	remake, err := svc.Create(context.Background(), 77, dto.CreateRemakeRequest{
		EquipmentNm: "Машинка", Description: "не строчит",
	})
	require.NoError(t, err)

	// Finishing before starting is refused.
	_, err = svc.Finish(context.Background(), remake.RemakeID)
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition.Code))

	started, err := svc.Start(context.Background(), remake.RemakeID)
	require.NoError(t, err)
	require.Equal(t, models.RemakeInProgress, started.Status)

	done, err := svc.Finish(context.Background(), remake.RemakeID)
	require.NoError(t, err)
	require.Equal(t, models.RemakeDone, done.Status)

	// The applicant hears about completion.
	assert.Contains(t, notifier.chats, int64(77))
}

func TestRemakeServiceAdvanceMissing(t *testing.T) {
	svc := NewRemakeService(newStubRemakeStore(), nil, nil, nil)
	_, err := svc.Start(context.Background(), 404)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}
