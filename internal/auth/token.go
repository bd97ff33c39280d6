package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// ErrInvalidToken covers malformed, forged, expired or out-of-domain tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	AdminID string        `json:"admin_id"`
	Domain  domain.Domain `json:"domain"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT scoped to the admin's domain.
func (tm *TokenManager) GenerateToken(adminID string, d domain.Domain) (domain.IssuedToken, error) {
	issuedAt := tm.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		AdminID: adminID,
		Domain:  d,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return domain.IssuedToken{Value: tokenString, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Verify parses the token and returns the identity it proves.
func (tm *TokenManager) Verify(tokenStr string) (domain.TokenIdentity, error) {
	if tokenStr == "" {
		return domain.TokenIdentity{}, ErrInvalidToken
	}
	claims, err := tm.ParseToken(tokenStr)
	if err != nil {
		return domain.TokenIdentity{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.AdminID == "" || !claims.Domain.Valid() || claims.ExpiresAt == nil {
		return domain.TokenIdentity{}, ErrInvalidToken
	}
	identity := domain.TokenIdentity{
		AdminID:   claims.AdminID,
		Domain:    claims.Domain,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return identity, nil
}
