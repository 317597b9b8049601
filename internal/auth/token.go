package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/subscription-service/internal/domain"
)

// TokenManager handles issuing and validating JWT session tokens. User
// tokens are short-lived (an hour by default); admin tokens last a day.
type TokenManager struct {
	secret   []byte
	userTTL  time.Duration
	adminTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, userTTLMinutes, adminTTLMinutes int) *TokenManager {
	if userTTLMinutes <= 0 {
		userTTLMinutes = 60
	}
	if adminTTLMinutes <= 0 {
		adminTTLMinutes = 24 * 60
	}
	return &TokenManager{
		secret:   []byte(secret),
		userTTL:  time.Duration(userTTLMinutes) * time.Minute,
		adminTTL: time.Duration(adminTTLMinutes) * time.Minute,
	}
}

// Claims describes JWT payload.
type Claims struct {
	SubjectID string             `json:"sub"`
	Subject   domain.SubjectType `json:"subject"`
	Role      *domain.AdminRole  `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateUserToken signs a session token bound to the internal user id.
func (tm *TokenManager) GenerateUserToken(userID string) (string, time.Time, error) {
	return tm.generate(userID, domain.SubjectTypeUser, nil, tm.userTTL)
}

// GenerateAdminToken signs a token asserting the fixed admin identity.
func (tm *TokenManager) GenerateAdminToken() (string, time.Time, error) {
	role := domain.AdminRoleAdmin
	return tm.generate(domain.AdminSubjectID, domain.SubjectTypeAdmin, &role, tm.adminTTL)
}

func (tm *TokenManager) generate(subjectID string, subject domain.SubjectType, role *domain.AdminRole, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Subject:   subject,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
