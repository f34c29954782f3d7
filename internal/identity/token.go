// Package identity turns signed session tokens into domain identities.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// Claims is the session token payload
type Claims struct {
	UID       string `json:"uid,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// DefaultTTL is used by Issue when the manager has no ttl
const DefaultTTL = 12 * time.Hour

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("identity: session secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for who. The system role cannot be issued.
func (m *Manager) Issue(who domain.Identity) (string, error) {
	if who.UID == "" {
		return "", fmt.Errorf("%w: uid is required", domain.ErrInvalidInput)
	}
	if who.Role == domain.RoleSystem {
		return "", fmt.Errorf("%w: system identity cannot hold a session", domain.ErrInvalidInput)
	}

	now := m.now()
	claims := Claims{
		UID:       who.UID,
		Email:     who.Email,
		Role:      string(who.Role),
		CompanyID: who.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   who.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify validates raw and resolves the identity it carries. Every failure
// wraps ErrUnauthenticated.
func (m *Manager) Verify(raw string) (domain.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing session token", domain.ErrUnauthenticated)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	return domain.Identity{
		UID:       uid,
		Email:     strings.TrimSpace(claims.Email),
		Role:      role,
		CompanyID: claims.CompanyID,
	}, nil
}
