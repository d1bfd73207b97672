package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/requestcontext"
)

// AccessTokenClaims are the claims of a bearer token. The subject is the user id.
type AccessTokenClaims struct {
	Email  string `json:"email"`
	Wallet string `json:"wallet,omitempty"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 bearer tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey string, issuer string, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// GenerateAccessToken mints a token for the user. A zero wallet is left out of the claims.
func (s *JWTService) GenerateAccessToken(
	ctx context.Context,
	userID id.UserID,
	email string,
	wallet id.WalletAddress,
) (string, error) {
	if userID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	if email == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	claims := AccessTokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        hex.EncodeToString(b),
		},
	}
	if !wallet.IsZero() {
		claims.Wallet = wallet.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// ValidateToken checks signature, algorithm, expiry, issuer and audience.
func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token issuer")
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token audience")
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token claims")
	}
	return claims, nil
}
