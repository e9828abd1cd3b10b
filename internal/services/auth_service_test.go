package services

import (
	"testing"

	"japa_backend/internal/auth"
	"japa_backend/internal/models"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.services.Auth.Register(env.db, dto.RegisterRequest{
		Email:    "new@example.com",
		Password: "supersecret",
		FullName: "New User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Regexp(t, `^USR-\d{6}$`, resp.User.FriendlyID)

	claims, err := auth.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	login, err := env.services.Auth.Login(env.db, dto.LoginRequest{
		Email:    "new@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	req := dto.RegisterRequest{
		Email:    "dup@example.com",
		Password: "supersecret",
		FullName: "First",
	}
	_, err := env.services.Auth.Register(env.db, req)
	require.NoError(t, err)

	_, err = env.services.Auth.Register(env.db, req)
	requireAppErrorCode(t, err, apperrors.CodeEmailAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Auth.Register(env.db, dto.RegisterRequest{
		Email:    "user@example.com",
		Password: "supersecret",
		FullName: "User",
	})
	require.NoError(t, err)

	_, err = env.services.Auth.Login(env.db, dto.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	requireAppErrorCode(t, err, apperrors.CodeInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Auth.Login(env.db, dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	requireAppErrorCode(t, err, apperrors.CodeInvalidCredentials)
}

func TestSetPasswordTokenFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "applicant@example.com")

	token, err := env.services.Token.IssueSetupToken(env.db, user.ID)
	require.NoError(t, err)

	resp, err := env.services.Auth.SetPassword(env.db, dto.SetPasswordRequest{
		Token:    token,
		Password: "mynewpassword",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	// The persisted hash is the new credential: issuing the session must
	// not write the pre-change row back over it.
	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, auth.CheckPasswordHash("mynewpassword", stored.PasswordHash))

	// The new credential works.
	_, err = env.services.Auth.Login(env.db, dto.LoginRequest{
		Email:    "applicant@example.com",
		Password: "mynewpassword",
	})
	require.NoError(t, err)

	// The token is single use.
	_, err = env.services.Auth.SetPassword(env.db, dto.SetPasswordRequest{
		Token:    token,
		Password: "anotherpassword",
	})
	requireAppErrorCode(t, err, apperrors.CodeInvalidToken)
}

func TestIssueSetupTokenInvalidatesPrior(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "applicant@example.com")

	first, err := env.services.Token.IssueSetupToken(env.db, user.ID)
	require.NoError(t, err)
	second, err := env.services.Token.IssueSetupToken(env.db, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = env.services.Auth.SetPassword(env.db, dto.SetPasswordRequest{
		Token:    first,
		Password: "mynewpassword",
	})
	requireAppErrorCode(t, err, apperrors.CodeInvalidToken)

	var count int64
	require.NoError(t, env.db.Model(&models.PasswordResetToken{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "known@example.com")

	resp, err := env.services.Auth.CheckEmail(env.db, "known@example.com")
	require.NoError(t, err)
	assert.True(t, resp.Exists)

	resp, err = env.services.Auth.CheckEmail(env.db, "unknown@example.com")
	require.NoError(t, err)
	assert.False(t, resp.Exists)
}
