package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/auth"
)

func TestAuthService_SignupThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.auth.Signup(ctx, SignupInput{Email: "u@example.com", Password: "password123", FullName: ptr("U. Ser")})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "password123", user.HashedPassword)

	res, err := f.auth.Login(ctx, "u@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, user.ID, res.User.ID)

	resolved, err := f.auth.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "u@example.com")

	_, err := f.auth.Signup(ctx, SignupInput{Email: "u@example.com", Password: "other"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, err := f.store.Users.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthService_SignupValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Signup(context.Background(), SignupInput{Email: "u@example.com"})
	assert.True(t, isValidation(err))

	long := make([]byte, auth.MaxPasswordBytes+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = f.auth.Signup(context.Background(), SignupInput{Email: "u@example.com", Password: string(long)})
	assert.True(t, isValidation(err))
}

func TestAuthService_BadCredentialsAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "u@example.com")

	_, wrongPassword := f.auth.Login(ctx, "u@example.com", "nope")
	_, unknownEmail := f.auth.Login(ctx, "ghost@example.com", "password123")

	assert.ErrorIs(t, wrongPassword, ErrBadCredentials)
	assert.ErrorIs(t, unknownEmail, ErrBadCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestAuthService_AuthenticateUnknownSubject(t *testing.T) {
	f := newFixture(t)
	token, _, err := f.auth.tokens.Issue("ghost@example.com")
	require.NoError(t, err)

	_, err = f.auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
