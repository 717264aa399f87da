package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret)

	token, err := Sign(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	user, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	user, err = v.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)

	wrongKey, err := Sign("other-secret", "user-1", time.Hour)
	require.NoError(t, err)

	expired, err := Sign(testSecret, "user-1", -time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong key", token: wrongKey},
		{name: "expired", token: expired},
		{name: "no subject", token: noSubject},
		{name: "other algorithm", token: hs512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, schema.ErrUnauthorized)
		})
	}
}

func TestVerifier_Leeway(t *testing.T) {
	v := NewVerifier(testSecret)
	token, err := Sign(testSecret, "user-1", time.Minute)
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(time.Minute + 10*time.Second) }
	_, err = v.Verify(token)
	assert.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = v.Verify(token)
	assert.ErrorIs(t, err, schema.ErrUnauthorized)
}

func TestVerifier_Unconfigured(t *testing.T) {
	token, err := Sign(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("").Verify(token)
	assert.ErrorIs(t, err, schema.ErrUnauthorized)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "Bearer ", ok: false},
		{header: "Basic abc", ok: false},
		{header: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestCheckCronSecret(t *testing.T) {
	assert.NoError(t, CheckCronSecret("Bearer s3cret", "s3cret"))
	assert.ErrorIs(t, CheckCronSecret("Bearer wrong", "s3cret"), schema.ErrUnauthorized)
	assert.ErrorIs(t, CheckCronSecret("s3cret", "s3cret"), schema.ErrUnauthorized)
	assert.ErrorIs(t, CheckCronSecret("", "s3cret"), schema.ErrUnauthorized)
	assert.ErrorIs(t, CheckCronSecret("Bearer ", ""), schema.ErrUnauthorized)
}

func TestUserContext(t *testing.T) {
	_, ok := UserFrom(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), schema.User{ID: "user-1"})
	user, ok := UserFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", user.ID)

	_, ok = UserFrom(WithUser(context.Background(), schema.User{}))
	assert.False(t, ok)
}
