package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

type stubPaymentStore struct {
	payments []models.Payment
	nextID   int64
}

func (s *stubPaymentStore) Create(_ context.Context, payment *models.Payment) error {
	s.nextID++
	payment.PaymentID = s.nextID
	s.payments = append(s.payments, *payment)
	return nil
}

func (s *stubPaymentStore) ListByEmployee(_ context.Context, employeeID int64) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestPaymentServiceNormalizesSigns(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		typ    models.PaymentType
		want   int64
	}{
		{"salary stays positive", 50000, models.PaymentSalary, 50000},
		{"bonus flipped positive", -3000, models.PaymentBonus, 3000},
		{"fine stored negative", 1500, models.PaymentFine, -1500},
		{"fine already negative", -1500, models.PaymentFine, -1500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewPaymentService(&stubPaymentStore{}, nil)
			payment, err := svc.Create(context.Background(), dto.CreatePaymentRequest{
				EmployeeID: 7, Amount: tc.amount, Type: tc.typ,
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, payment.Amount)
			require.NotZero(t, payment.PaymentID)
		})
	}
}

func TestPaymentServiceRejectsZeroAmount(t *testing.T) {
	svc := NewPaymentService(&stubPaymentStore{}, nil)
	_, err := svc.Create(context.Background(), dto.CreatePaymentRequest{
		EmployeeID: 7, Amount: 0, Type: models.PaymentSalary,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestPaymentServiceListsOnlyRequestedEmployee(t *testing.T) {
	store := &stubPaymentStore{}
	svc := NewPaymentService(store, nil)
	_, err := svc.Create(context.Background(), dto.CreatePaymentRequest{EmployeeID: 7, Amount: 100, Type: models.PaymentSalary})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), dto.CreatePaymentRequest{EmployeeID: 8, Amount: 200, Type: models.PaymentBonus})
	require.NoError(t, err)

	payments, err := svc.ListByEmployee(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, int64(100), payments[0].Amount)
}
