package api

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL bounds a dashboard session when configuration does not
// say otherwise.
const defaultTokenTTL = 24 * time.Hour

// Credentials is the static shared credential pair the dashboard login
// checks against. There is no user model: one pair gates the whole API.
type Credentials struct {
	Username string
	Password string
}

// Matches compares the submitted pair in constant time.
func (c Credentials) Matches(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
	return userOK && passOK
}

// TokenManager issues and validates the JWT a successful login returns.
type TokenManager struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// Claims are the session claims carried by a dashboard token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a token manager. secretKey should be a strong
// random string; ttl zero falls back to the default.
func NewTokenManager(secretKey string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
	}
}

// Generate creates a session token for the given username.
func (m *TokenManager) Generate(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and checks a session token, returning its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
