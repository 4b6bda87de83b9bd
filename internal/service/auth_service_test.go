package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/pkg/config"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "workshop-api",
	}
}

func TestAuthServiceRejectsWrongGatewayKey(t *testing.T) {
	svc := NewAuthService(newStubEmployeeStore(), "right-key", authTestConfig(), nil)
	_, err := svc.ExchangeToken(context.Background(), "wrong-key", 100)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceRejectsPendingEmployee(t *testing.T) {
	store := newStubEmployeeStore(&models.Employee{
		TgID: 100, Job: models.RoleSeamstress, Status: models.EmployeePending,
	})
	svc := NewAuthService(store, "key", authTestConfig(), nil)
	_, err := svc.ExchangeToken(context.Background(), "key", 100)
	require.True(t, appErrors.Is(err, appErrors.ErrPendingApproval.Code))
}

func TestAuthServiceRejectsUnknownEmployee(t *testing.T) {
	svc := NewAuthService(newStubEmployeeStore(), "key", authTestConfig(), nil)
	_, err := svc.ExchangeToken(context.Background(), "key", 404)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}

func TestAuthServiceIssuesAndValidatesToken(t *testing.T) {
	store := newStubEmployeeStore(&models.Employee{
		TgID: 100, Job: models.RoleController, Status: models.EmployeeApproved,
	})
	svc := NewAuthService(store, "key", authTestConfig(), nil)

	pair, err := svc.ExchangeToken(context.Background(), "key", 100)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(100), claims.EmployeeID)
	require.Equal(t, models.RoleController, claims.Role)
}

func TestAuthServiceAcceptsLegacyApprovalSpellings(t *testing.T) {
	for _, spelling := range []string{"approved", "appoved", "одобрено"} {
		store := newStubEmployeeStore(&models.Employee{
			TgID: 100, Job: models.RoleCutter, Status: models.EmployeeStatus(spelling),
		})
		svc := NewAuthService(store, "key", authTestConfig(), nil)
		_, err := svc.ExchangeToken(context.Background(), "key", 100)
		require.NoError(t, err, "spelling %q must resolve to APPROVED", spelling)
	}
}

func TestAuthServiceRejectsTamperedToken(t *testing.T) {
	store := newStubEmployeeStore(&models.Employee{
		TgID: 100, Job: models.RoleCutter, Status: models.EmployeeApproved,
	})
	svc := NewAuthService(store, "key", authTestConfig(), nil)
	pair, err := svc.ExchangeToken(context.Background(), "key", 100)
	require.NoError(t, err)

	other := NewAuthService(store, "key", config.JWTConfig{
		Secret: "different-secret", Expiration: time.Hour,
	}, nil)
	_, err = other.ValidateToken(pair.AccessToken)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized.Code))
}
