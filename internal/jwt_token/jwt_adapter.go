package jwttoken

import (
	"deedgate/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *AccessTokenClaims) *auth.JWTClaims {
	return &auth.JWTClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Wallet: claims.Wallet,
	}
}

// JWTServiceAdapter exposes the service through the auth middleware's validator port.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
