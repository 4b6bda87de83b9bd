package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated employee identity inside a token.
type JWTClaims struct {
	EmployeeID int64 `json:"employee_id"`
	Role       Role  `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair is returned from the gateway token exchange.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
