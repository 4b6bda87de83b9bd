package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/pkg/config"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

type employeeReader interface {
	GetByID(ctx context.Context, tgID int64) (*models.Employee, error)
}

// AuthService exchanges the chat gateway's shared key plus a chat identity
// for a short-lived access token. Only the gateway holds the key; employees
// never authenticate against this service directly.
type AuthService struct {
	employees  employeeReader
	gatewayKey []byte
	jwtCfg     config.JWTConfig
	logger     *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(employees employeeReader, gatewayKey string, jwtCfg config.JWTConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		employees:  employees,
		gatewayKey: []byte(gatewayKey),
		jwtCfg:     jwtCfg,
		logger:     logger,
	}
}

// VerifyGatewayKey checks the shared key in constant time.
func (s *AuthService) VerifyGatewayKey(presented string) error {
	if len(s.gatewayKey) == 0 ||
		subtle.ConstantTimeCompare(s.gatewayKey, []byte(presented)) != 1 {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid gateway key")
	}
	return nil
}

// ExchangeToken issues an access token for an approved employee. Pending
// registrations are refused with PENDING_APPROVAL so the gateway can tell
// the user to wait.
func (s *AuthService) ExchangeToken(ctx context.Context, presentedKey string, tgID int64) (*models.TokenPair, error) {
	if err := s.VerifyGatewayKey(presentedKey); err != nil {
		return nil, err
	}
	employee, err := s.employees.GetByID(ctx, tgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lookup employee")
	}
	status, ok := models.NormalizeEmployeeStatus(string(employee.Status))
	if !ok || status != models.EmployeeApproved {
		return nil, appErrors.Clone(appErrors.ErrPendingApproval, "registration awaits manager review")
	}

	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.jwtCfg.Expiration)
	claims := &models.JWTClaims{
		EmployeeID: employee.TgID,
		Role:       employee.Job,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   strconv.FormatInt(employee.TgID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign token")
	}
	s.logger.Info("access token issued",
		zap.Int64("tg_id", employee.TgID), zap.String("role", string(employee.Job)))
	return &models.TokenPair{
		AccessToken: signed,
		ExpiresIn:   int64(s.jwtCfg.Expiration.Seconds()),
	}, nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
