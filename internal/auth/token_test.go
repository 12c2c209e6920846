package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := NewTokenManager("admin-secret", RoleAdmin, 12*time.Hour)
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issuedAt }

	token, expires, err := tm.Issue("admin", "")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(12*time.Hour), expires)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestTokenManager_Rejections(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	admin := NewTokenManager("admin-secret", RoleAdmin, time.Hour)
	admin.now = func() time.Time { return issuedAt }
	customer := NewTokenManager("admin-secret", RoleCustomer, time.Hour)
	customer.now = admin.now

	adminToken, _, err := admin.Issue("admin", "")
	require.NoError(t, err)
	customerToken, _, err := customer.Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	t.Run("Expired", func(t *testing.T) {
		late := NewTokenManager("admin-secret", RoleAdmin, time.Hour)
		late.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

		_, err := late.Validate(adminToken)
		assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", RoleAdmin, time.Hour)
		other.now = admin.now

		_, err := other.Validate(adminToken)
		assert.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
	})

	t.Run("Wrong role", func(t *testing.T) {
		_, err := admin.Validate(customerToken)
		assert.ErrorIs(t, err, ErrWrongRole)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := admin.Validate("not.a.token")
		assert.Error(t, err)
	})

	t.Run("Unsigned algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
			},
			Role: RoleAdmin,
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = admin.Validate(unsigned)
		assert.Error(t, err)
	})
}

func TestCheckPassword(t *testing.T) {
	assert.True(t, CheckPassword("s3cret", "s3cret"))
	assert.False(t, CheckPassword("s3cret", "S3cret"))
	assert.False(t, CheckPassword("s3cret", ""))
	assert.False(t, CheckPassword("", ""))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer   abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), tt.header)
	}
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()
	_, ok := ClaimsFromContext(ctx)
	assert.False(t, ok)
	assert.Equal(t, "", UserID(ctx))

	ctx = WithClaims(ctx, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-7"}, Role: RoleCustomer})
	assert.Equal(t, "user-7", UserID(ctx))

	adminCtx := WithClaims(context.Background(), &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"}, Role: RoleAdmin})
	assert.Equal(t, "", UserID(adminCtx))
}
