// Package session issues and verifies the signed admin cookies.
//
// A pending token proves a correct password and waits for the emailed code;
// a session token marks an authenticated admin.
package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	StagePending = "pending"
	StageSession = "session"

	PendingCookie = "showcase_pending"
	SessionCookie = "showcase_session"

	issuer = "showcase"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims are the JWT claims of both stages.
type Claims struct {
	Stage string `json:"stg"`
	jwt.RegisteredClaims
}

// AdminID returns the admin the token was issued to.
func (c *Claims) AdminID() uint {
	id, _ := strconv.ParseUint(c.Subject, 10, 64)
	return uint(id)
}

// Manager signs tokens with HMAC-SHA256.
type Manager struct {
	secret []byte
	now    func() time.Time
}

// NewManager creates a Manager. An empty secret is replaced by a random one,
// which invalidates every token on restart.
func NewManager(secret string) (*Manager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return &Manager{secret: key, now: time.Now}, nil
}

// Issue signs a token for adminID at the given stage.
func (m *Manager) Issue(adminID uint, stage string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Stage: stage,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(adminID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Parse verifies token and requires it to be of the given stage.
func (m *Manager) Parse(token, stage string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Stage != stage || claims.AdminID() == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
