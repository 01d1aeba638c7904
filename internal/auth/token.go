package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bankdesk/bankdesk/internal/shared"
)

// Claims is the verified content of a bearer token.
type Claims struct {
	Issuer    string
	Subject   int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies self-contained identity tokens. The
// signing algorithm is an implementation detail behind this interface.
type TokenService interface {
	Sign(subject int64) (string, error)
	Verify(token string) (*Claims, error)
}

// JWTService signs HMAC-SHA256 JSON Web Tokens with a shared secret.
type JWTService struct {
	issuer string
	secret []byte
	ttl    time.Duration
}

// NewJWTService constructs a JWTService. ttl bounds token validity; the
// expiry is embedded as an absolute exp claim.
func NewJWTService(issuer, secret string, ttl time.Duration) *JWTService {
	return &JWTService{issuer: issuer, secret: []byte(secret), ttl: ttl}
}

// Sign mints a token for the given subject id.
func (s *JWTService) Sign(subject int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   strconv.FormatInt(subject, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates signature and expiry. Every failure mode, including
// structurally malformed input and tokens signed with a different secret,
// degrades to shared.ErrInvalidToken.
func (s *JWTService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, shared.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, shared.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, shared.ErrInvalidToken
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	out := &Claims{Issuer: claims.Issuer, Subject: subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

var _ TokenService = (*JWTService)(nil)
