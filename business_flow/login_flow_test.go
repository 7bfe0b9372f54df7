package businessflow_test

import (
	"context"
	"testing"

	"github.com/petrodesk/petrodesk/app/dto"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/petrodesk/petrodesk/models"
	testingutil "github.com/petrodesk/petrodesk/testing"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())

		station, err := fixtures.CreateTestStation("Posto Central")
		require.NoError(t, err)

		user, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
		require.NoError(t, err)

		t.Run("SuccessfulSignin", func(t *testing.T) {
			result, err := env.loginFlow.Signin(context.Background(), &dto.SigninRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, user.ID, result.User.ID)
			assert.Equal(t, user.Email, result.User.Email)
			assert.Equal(t, models.ProfileSupervisor, result.User.Profile)
			assert.Contains(t, result.User.Permissions, string(models.CapabilityApprove))
			assert.NotEmpty(t, result.Session.AccessToken)
			assert.NotEmpty(t, result.Session.RefreshToken)
			assert.Equal(t, "Bearer", result.Session.TokenType)

			claims, err := env.tokenService.ValidateToken(result.Session.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, "access", claims.TokenType)
		})

		t.Run("WrongPasswordFails", func(t *testing.T) {
			_, err := env.loginFlow.Signin(context.Background(), &dto.SigninRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownEmailFails", func(t *testing.T) {
			_, err := env.loginFlow.Signin(context.Background(), &dto.SigninRequest{
				Email:    "nobody@petrodesk.com.br",
				Password: "TestPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("InactiveAccountFails", func(t *testing.T) {
			inactive, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

			_, err = env.loginFlow.Signin(context.Background(), &dto.SigninRequest{
				Email:    inactive.Email,
				Password: "TestPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("RefreshRotatesSession", func(t *testing.T) {
			signin, err := env.loginFlow.Signin(context.Background(), &dto.SigninRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, testMetadata())
			require.NoError(t, err)

			refreshed, err := env.loginFlow.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
				RefreshToken: signin.Session.RefreshToken,
			}, testMetadata())
			require.NoError(t, err)
			assert.NotEqual(t, signin.Session.AccessToken, refreshed.Session.AccessToken)
			assert.NotEqual(t, signin.Session.RefreshToken, refreshed.Session.RefreshToken)

			// The old refresh token was retired with its session
			_, err = env.loginFlow.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
				RefreshToken: signin.Session.RefreshToken,
			}, testMetadata())
			require.Error(t, err)
		})

		t.Run("SignoutExpiresSession", func(t *testing.T) {
			signin, err := env.loginFlow.Signin(context.Background(), &dto.SigninRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, testMetadata())
			require.NoError(t, err)

			result, err := env.loginFlow.Signout(context.Background(), signin.Session.AccessToken, user.ID, testMetadata())
			require.NoError(t, err)
			assert.False(t, result.SignedOutAt.IsZero())

			session, err := env.sessionRepo.BySessionToken(context.Background(), signin.Session.AccessToken)
			require.NoError(t, err)
			if session != nil {
				assert.False(t, utils.IsTrue(session.IsActive))
			}

			_, err = env.tokenService.ValidateToken(signin.Session.AccessToken)
			require.Error(t, err)
		})

		t.Run("CheckAuthReturnsPermissions", func(t *testing.T) {
			result, err := env.loginFlow.CheckAuth(context.Background(), user.ID)
			require.NoError(t, err)
			assert.True(t, result.Authenticated)
			assert.Equal(t, user.Email, result.User.Email)
			assert.NotEmpty(t, result.User.Permissions)
		})

		return nil
	})
	require.NoError(t, err)
}
