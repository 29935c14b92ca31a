package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

const testSecret = "test-secret"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokenManager(clock *fakeClock) *TokenManager {
	tm := NewTokenManager(testSecret, DefaultSessionLifetime, DefaultRenewalWindow)
	tm.now = clock.Now
	return tm
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tm := newTestTokenManager(clock)

	token, err := tm.Issue("user-1", domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(30*24*time.Hour), token.ExpiresAt)

	claims, err := tm.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.True(t, clock.t.Equal(claims.IssuedAt.Time), "issued at %s, want %s", claims.IssuedAt.Time, clock.t)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	tm := newTestTokenManager(clock)

	token, err := tm.Issue("user-1", domain.RoleAdmin)
	require.NoError(t, err)

	clock.Advance(30*24*time.Hour + time.Second)
	_, err = tm.Validate(token.Value)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, tm.RequireRole(token.Value, domain.RoleUser))
}

func TestTokenManager_TamperedToken(t *testing.T) {
	tm := newTestTokenManager(&fakeClock{t: time.Now()})

	token, err := tm.Issue("user-1", domain.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(token.Value, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	elevated := strings.Replace(string(payload), `"role":"USER"`, `"role":"ADMIN"`, 1)
	require.NotEqual(t, string(payload), elevated)
	forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(elevated)) + "." + parts[2]

	_, err = tm.Validate(forged)
	require.ErrorIs(t, err, ErrBadSignature)
	assert.False(t, tm.RequireRole(forged, domain.RoleAdmin))

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = tm.Validate(parts[0] + "." + parts[1] + "." + string(sig))
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenManager_RejectsOtherSecretAndAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tm := newTestTokenManager(clock)

	other := NewTokenManager("other-secret", DefaultSessionLifetime, DefaultRenewalWindow)
	token, err := other.Issue("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = tm.Validate(token.Value)
	require.ErrorIs(t, err, ErrBadSignature)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Validate(none)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenManager_RejectsIncompleteClaims(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tm := newTestTokenManager(clock)

	sign := func(c *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(clock.t.Add(time.Hour))

	_, err := tm.Validate(sign(&Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}))
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = tm.Validate(sign(&Claims{Role: "ROOT", RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp}}))
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = tm.Validate(sign(&Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}}))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenManager_EmptyToken(t *testing.T) {
	tm := newTestTokenManager(&fakeClock{t: time.Now()})
	_, err := tm.Validate("")
	require.ErrorIs(t, err, ErrTokenRequired)
	assert.False(t, tm.RequireRole("", domain.RoleUser))
}

func TestTokenManager_MaybeRenew(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	tm := newTestTokenManager(clock)

	token, err := tm.Issue("user-1", domain.RoleUser)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	claims, err := tm.Validate(token.Value)
	require.NoError(t, err)
	_, ok, err := tm.MaybeRenew(claims)
	require.NoError(t, err)
	assert.False(t, ok, "fresh token must not be renewed")

	clock.Advance(29 * 24 * time.Hour)
	claims, err = tm.Validate(token.Value)
	require.NoError(t, err)
	renewed, ok, err := tm.MaybeRenew(claims)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, clock.t.Add(30*24*time.Hour), renewed.ExpiresAt)

	renewedClaims, err := tm.Validate(renewed.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", renewedClaims.UserID())
	assert.Equal(t, domain.RoleUser, renewedClaims.Role)
}

func TestTokenManager_RequireRole(t *testing.T) {
	tm := newTestTokenManager(&fakeClock{t: time.Now()})

	user, err := tm.Issue("u", domain.RoleUser)
	require.NoError(t, err)
	admin, err := tm.Issue("a", domain.RoleAdmin)
	require.NoError(t, err)

	assert.True(t, tm.RequireRole(user.Value, domain.RoleUser))
	assert.False(t, tm.RequireRole(user.Value, domain.RoleAdmin))
	assert.True(t, tm.RequireRole(admin.Value, domain.RoleUser))
	assert.True(t, tm.RequireRole(admin.Value, domain.RoleAdmin))
	assert.False(t, tm.RequireRole("not-a-token", domain.RoleUser))
}
