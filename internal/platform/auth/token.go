package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleMember    = "member"
	RoleModerator = "moderator"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrMissingToken  = errors.New("bearer token is required")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrNotConfigured = errors.New("token verification is not configured")
)

// Claims are the JWT claims the API expects. Subject is the member id.
type Claims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Principal is the caller resolved from a verified token.
type Principal struct {
	MemberID string
	Email    string
	Name     string
	Role     string
	Active   bool
}

func (p Principal) IsModerator() bool {
	return p.Role == RoleModerator
}

// Verifier validates HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret string, issuer string) *Verifier {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

func (v *Verifier) Verify(tokenStr string) (Principal, error) {
	if v == nil {
		return Principal{}, ErrNotConfigured
	}
	if strings.TrimSpace(tokenStr) == "" {
		return Principal{}, ErrMissingToken
	}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return Principal{}, ErrInvalidToken
	}

	role := strings.ToLower(strings.TrimSpace(claims.Role))
	if role != RoleModerator {
		role = RoleMember
	}
	return Principal{
		MemberID: strings.TrimSpace(claims.Subject),
		Email:    strings.TrimSpace(claims.Email),
		Name:     strings.TrimSpace(claims.Name),
		Role:     role,
		Active:   !strings.EqualFold(strings.TrimSpace(claims.Status), StatusInactive),
	}, nil
}

// Issue mints a token for p. It backs the local token command and tests.
func (v *Verifier) Issue(p Principal, ttl time.Duration) (string, error) {
	if v == nil {
		return "", ErrNotConfigured
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now().UTC()
	status := StatusActive
	if !p.Active {
		status = StatusInactive
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.MemberID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:  p.Email,
		Name:   p.Name,
		Role:   p.Role,
		Status: status,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
