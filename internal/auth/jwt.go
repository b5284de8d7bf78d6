// Package auth issues and verifies the bearer tokens that identify RPC callers.
package auth

import (
	"errors"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
	ErrInvalidRole  = errors.New("unknown role")
)

// Role is what a principal may do.
type Role string

const (
	// RolePayer creates, funds and refunds its own sessions. The token subject
	// is the payer's base58 key, standing in for its signature.
	RolePayer Role = "payer"
	// RoleOperator runs settlement and ledger administration.
	RoleOperator Role = "operator"
)

// Principal is the authenticated caller of an RPC.
type Principal struct {
	Subject string
	Role    Role
}

// Key decodes the subject as a base58 public key.
func (p Principal) Key() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(p.Subject)
}

func (p Principal) validate() error {
	switch p.Role {
	case RolePayer:
		if _, err := p.Key(); err != nil {
			return fmt.Errorf("payer subject must be a base58 key: %w", err)
		}
	case RoleOperator:
		if p.Subject == "" {
			return errors.New("operator subject is required")
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, p.Role)
	}
	return nil
}

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims represents the custom JWT claims of a principal. The subject is
// carried in the registered "sub" claim.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager with the given secret and token duration.
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate creates a new JWT token for the given principal.
func (m *JWTManager) Generate(p Principal) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a JWT token, returning its principal if valid.
func (m *JWTManager) Validate(tokenString string) (Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	p := Principal{Subject: claims.Subject, Role: claims.Role}
	if err := p.validate(); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return p, nil
}
