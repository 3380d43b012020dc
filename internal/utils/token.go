package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	jwtIssuer         = "todo-tracker-api"
	minJWTSecretBytes = 32
	defaultTokenTTL   = 7 * 24 * time.Hour
)

// Verification failures. Callers answer all of them the same way; the
// distinction exists for logs.
var (
	ErrTokenMissing      = errors.New("token is missing")
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrTokenExpired      = errors.New("token is expired")
	ErrTokenBadSignature = errors.New("token signature is invalid")
)

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTCodec issues and verifies HS256 bearer tokens bound to a user id.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec validates the secret and returns a codec. A non-positive ttl means 7 days.
func NewJWTCodec(secret string, ttl time.Duration) (*JWTCodec, error) {
	raw := strings.TrimSpace(secret)
	if raw == "" {
		return nil, errors.New("JWT secret is required")
	}
	if len(raw) < minJWTSecretBytes {
		return nil, fmt.Errorf("JWT secret must be at least %d characters", minJWTSecretBytes)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTCodec{secret: []byte(raw), ttl: ttl, now: time.Now}, nil
}

// Issue generates a new JWT token for a user.
func (c *JWTCodec) Issue(userID int64) (string, error) {
	if userID <= 0 {
		return "", errors.New("invalid user ID")
	}

	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the token and returns the user id it was issued for.
func (c *JWTCodec) Verify(tokenString string) (int64, error) {
	if strings.TrimSpace(tokenString) == "" {
		return 0, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithTimeFunc(c.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return 0, classifyTokenError(err)
	}

	if !token.Valid {
		return 0, ErrTokenMalformed
	}

	if claims.UserID <= 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return 0, fmt.Errorf("%w: subject does not match user", ErrTokenMalformed)
	}

	return claims.UserID, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
