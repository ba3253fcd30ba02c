package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/highcommand/highcommand/internal/errors"
)

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(RegisterInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NotEmpty(t, user.PasswordHash)
	require.NotEmpty(t, user.PasswordSalt)
	require.NotEqual(t, "supersecret", user.PasswordHash)

	authed, err := env.auth.Authenticate("alice", "supersecret")
	require.NoError(t, err)
	require.NotNil(t, authed)
	require.Equal(t, user.ID, authed.ID)
}

func TestAuthService_Register_NormalizesUsername(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(RegisterInput{Username: "  Alice ", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	// Case and whitespace variants are the same identity.
	_, err = env.auth.Register(RegisterInput{Username: "ALICE", Password: "othersecret"})
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	authed, err := env.auth.Authenticate("ALICE", "supersecret")
	require.NoError(t, err)
	require.NotNil(t, authed)
	require.Equal(t, user.ID, authed.ID)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(RegisterInput{Username: "al", Password: "supersecret"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = env.auth.Register(RegisterInput{Username: "alice", Password: "short"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAuthService_Authenticate_RejectsWrongCredentials(t *testing.T) {
	env := newTestEnv(t)

	registered, err := env.auth.Register(RegisterInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	cases := map[string]string{
		"wrong password": "not-the-password",
		"empty password": "",
		"the stored salt": registered.PasswordSalt,
		"the stored hash": registered.PasswordHash,
	}
	for name, password := range cases {
		user, err := env.auth.Authenticate("alice", password)
		require.NoError(t, err, name)
		require.Nil(t, user, name)
	}

	// Unknown user looks exactly like a wrong password.
	user, err := env.auth.Authenticate("nobody", "supersecret")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestAuthService_GetUser(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "alice")

	user, err := env.auth.GetUser(created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, err = env.auth.GetUser(9999)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestAuthService_ListUsers_OrderedByUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "carol")
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	users, err := env.auth.ListUsers()
	require.NoError(t, err)

	usernames := make([]string, 0, len(users))
	for _, user := range users {
		usernames = append(usernames, user.Username)
	}
	require.Equal(t, []string{"alice", "bob", "carol"}, usernames)
}
