package auth

import (
	"errors"
	"testing"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-0123456789"

func TestJWTManager(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	payer := solana.NewWallet().PublicKey()

	t.Run("payer round trip", func(t *testing.T) {
		token, err := m.Generate(Principal{Subject: payer.String(), Role: RolePayer})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		p, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if p.Role != RolePayer {
			t.Errorf("Expected payer role, got %s", p.Role)
		}
		key, err := p.Key()
		if err != nil || !key.Equals(payer) {
			t.Errorf("Expected key %s, got %s (%v)", payer, key, err)
		}
	})

	t.Run("operator round trip", func(t *testing.T) {
		token, err := m.Generate(Principal{Subject: "ops-1", Role: RoleOperator})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		p, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if p.Subject != "ops-1" || p.Role != RoleOperator {
			t.Errorf("Unexpected principal %+v", p)
		}
	})

	t.Run("payer subject must be a key", func(t *testing.T) {
		if _, err := m.Generate(Principal{Subject: "alice", Role: RolePayer}); err == nil {
			t.Error("Expected error for non-key payer subject")
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := m.Generate(Principal{Subject: payer.String(), Role: "admin"})
		if !errors.Is(err, ErrInvalidRole) {
			t.Errorf("Expected ErrInvalidRole, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := NewJWTManager("another-secret-xyz", time.Hour).Generate(Principal{Subject: "ops", Role: RoleOperator})
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, _ := NewJWTManager(testSecret, -time.Minute).Generate(Principal{Subject: "ops", Role: RoleOperator})
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("forged role claim", func(t *testing.T) {
		claims := &Claims{Role: "root", RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
