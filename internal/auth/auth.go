package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")
var ErrBadCredentials = errors.New("invalid email or password")

const tokenLifetime = 30 * 24 * time.Hour

// userIDHeader carries the resolved owner id from the middleware to the
// handlers.
const userIDHeader = "X-User-ID"

type Auth struct {
	jwtSecret []byte
}

type Claims struct {
	jwt.RegisteredClaims
}

func New(secret string) *Auth {
	return &Auth{jwtSecret: []byte(secret)}
}

// HashPassword returns the bcrypt hash of a plaintext password.
func (a *Auth) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash.
func (a *Auth) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

// GenerateToken issues a signed JWT whose subject is the user id.
func (a *Auth) GenerateToken(userID string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "drift-notes",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Middleware rejects requests without a valid bearer token and exposes
// the resolved owner id to downstream handlers.
func (a *Auth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Never trust a client-supplied identity header.
		r.Header.Del(userIDHeader)

		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := a.ValidateToken(parts[1])
		if err != nil || claims.Subject == "" {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		r.Header.Set(userIDHeader, claims.Subject)
		next(w, r)
	}
}

// UserID returns the owner id resolved by Middleware, or "" when the
// request is unauthenticated.
func UserID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}
