package auth

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is the http-only cookie carrying the session token. UserCookie
// carries the script-readable profile blob set alongside it on login.
const (
	TokenCookie = "token"
	UserCookie  = "user"

	// TokenTTL is the fixed lifetime of an issued session token.
	TokenTTL = time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	Secret []byte
	TTL    time.Duration
}

// ConfigFromEnv reads the signing secret from JWT_SECRET.
func ConfigFromEnv() Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecret"
	}
	return Config{Secret: []byte(secret), TTL: TokenTTL}
}

// Claims carried by a session token: the registered claims plus the
// authenticated user's id and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
}

// Service issues and verifies session tokens. Validity is purely a function
// of signature and expiry; nothing is persisted server-side.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(cfg Config) *Service {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = TokenTTL
	}
	return &Service{secret: cfg.Secret, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a session token for the given user and returns it together with
// its expiry time.
func (s *Service) Issue(userID int64, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Email:  email,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses a token string and returns its claims when the signature
// checks out and the token has not expired.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IdentityFromRequest resolves the caller's user id from a bearer token in the
// Authorization header, falling back to the token cookie. All verification
// failures collapse to "no identity"; callers decide whether that is an error.
func (s *Service) IdentityFromRequest(r *http.Request) (int64, bool) {
	if token := bearerToken(r); token != "" {
		if claims, err := s.Verify(token); err == nil {
			return claims.UserID, true
		}
	}
	cookie, err := r.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	claims, err := s.Verify(cookie.Value)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
