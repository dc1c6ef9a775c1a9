package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"mediamatrixhub/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds share one signing key and are told apart by the kind claim.
const (
	KindAdmin      = "admin"
	KindSubscriber = "subscriber"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID uint            `json:"uid"`
	Role   models.UserRole `json:"role,omitempty"`
	Kind   string          `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager signs and parses HS256 tokens.
type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// GenerateToken issues an operator token valid for ttl.
func (m *TokenManager) GenerateToken(userID uint, role models.UserRole, ttl time.Duration) (string, error) {
	return m.sign(Claims{UserID: userID, Role: role, Kind: KindAdmin}, ttl)
}

// GenerateSubscriberToken issues a self-service session token whose
// subject is the subscriber id.
func (m *TokenManager) GenerateSubscriberToken(subscriberID uint, ttl time.Duration) (string, error) {
	return m.sign(Claims{UserID: subscriberID, Kind: KindSubscriber}, ttl)
}

func (m *TokenManager) sign(claims Claims, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken validates signature and expiry.
func (m *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseKind parses tokenStr and requires the given kind.
func (m *TokenManager) ParseKind(tokenStr, kind string) (*Claims, error) {
	claims, err := m.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidToken, claims.Kind)
	}
	return claims, nil
}
