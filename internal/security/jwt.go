package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"devsync/internal/common"
)

type JWTProvider struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewJWTProvider(accessSecret, refreshSecret string) *JWTProvider {
	return &JWTProvider{accessSecret: []byte(accessSecret), refreshSecret: []byte(refreshSecret)}
}

type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

func (p *JWTProvider) GenerateAccess(userID common.UUID, email, role string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID.String(),
		Email:  email,
		Role:   role,
	})
	signed, err := token.SignedString(p.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (p *JWTProvider) GenerateRefresh(userID common.UUID, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID.String(),
	})
	signed, err := token.SignedString(p.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (p *JWTProvider) ParseAccess(tokenString string) (*Claims, error) {
	return p.parse(tokenString, p.accessSecret)
}

func (p *JWTProvider) ParseRefresh(tokenString string) (*Claims, error) {
	return p.parse(tokenString, p.refreshSecret)
}

func (p *JWTProvider) parse(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.NewError(common.CodeUnauthorized, "invalid token", err)
	}
	if !token.Valid {
		return nil, common.NewError(common.CodeUnauthorized, "invalid token", nil)
	}
	if claims.UserID == "" && claims.Subject != "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}
