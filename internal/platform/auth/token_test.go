package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	verifier := NewVerifier("test-secret", "questboard")
	token, err := verifier.Issue(Principal{MemberID: "m-1", Email: "ann@example.com", Name: "Ann", Role: RoleModerator, Active: true}, time.Hour)
	require.NoError(t, err)

	principal, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "m-1", principal.MemberID)
	assert.Equal(t, "Ann", principal.Name)
	assert.True(t, principal.Active)
	assert.True(t, principal.IsModerator())
}

func TestVerifyDefaultsUnknownRolesToMember(t *testing.T) {
	verifier := NewVerifier("test-secret", "questboard")
	token, err := verifier.Issue(Principal{MemberID: "m-1", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	principal, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleMember, principal.Role)
	assert.False(t, principal.Active, "inactive principals keep their status through the token")
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	verifier := NewVerifier("test-secret", "questboard")

	other, err := NewVerifier("other-secret", "questboard").Issue(Principal{MemberID: "m-1", Active: true}, time.Hour)
	require.NoError(t, err)
	_, err = verifier.Verify(other)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	wrongIssuer, err := NewVerifier("test-secret", "someone-else").Issue(Principal{MemberID: "m-1", Active: true}, time.Hour)
	require.NoError(t, err)
	_, err = verifier.Verify(wrongIssuer)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	past := time.Now().Add(-2 * time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "m-1",
			Issuer:    "questboard",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = verifier.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNilVerifierIsNotConfigured(t *testing.T) {
	verifier := NewVerifier("  ", "questboard")
	require.Nil(t, verifier)

	_, err := verifier.Verify("token")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = verifier.Issue(Principal{MemberID: "m-1"}, time.Hour)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, "header %q", header)
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{MemberID: "m-1"})
	principal, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "m-1", principal.MemberID)
}
