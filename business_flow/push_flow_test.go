package businessflow_test

import (
	"context"
	"testing"

	"github.com/petrodesk/petrodesk/app/dto"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/petrodesk/petrodesk/models"
	testingutil "github.com/petrodesk/petrodesk/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())

		user, err := fixtures.CreateTestUser(models.ProfileVendedor, nil)
		require.NoError(t, err)

		t.Run("RegisterCreatesSubscription", func(t *testing.T) {
			result, err := env.pushFlow.RegisterToken(context.Background(), &dto.RegisterPushTokenRequest{
				Token:       "token-web-1",
				DeviceClass: "web",
			}, user.ID, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Registered)
			assert.True(t, result.Rotated)
			assert.Equal(t, "web", result.DeviceClass)
		})

		t.Run("ReRegisteringSameTokenIsIdempotent", func(t *testing.T) {
			result, err := env.pushFlow.RegisterToken(context.Background(), &dto.RegisterPushTokenRequest{
				Token:       "token-web-1",
				DeviceClass: "web",
			}, user.ID, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Registered)
			assert.False(t, result.Rotated)

			subscriptions, err := env.subscriptionRepo.ListByUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Len(t, subscriptions, 1)
		})

		t.Run("NewTokenRotatesDeviceClass", func(t *testing.T) {
			result, err := env.pushFlow.RegisterToken(context.Background(), &dto.RegisterPushTokenRequest{
				Token:       "token-web-2",
				DeviceClass: "web",
			}, user.ID, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Rotated)

			subscriptions, err := env.subscriptionRepo.ListByUser(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, subscriptions, 1)
			assert.Equal(t, "token-web-2", subscriptions[0].Token)
		})

		t.Run("DistinctDeviceClassesCoexist", func(t *testing.T) {
			_, err := env.pushFlow.RegisterToken(context.Background(), &dto.RegisterPushTokenRequest{
				Token:       "token-android-1",
				DeviceClass: "android",
			}, user.ID, testMetadata())
			require.NoError(t, err)

			result, err := env.pushFlow.ListSubscriptions(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Len(t, result.Subscriptions, 2)
		})

		t.Run("InvalidDeviceClassFails", func(t *testing.T) {
			_, err := env.pushFlow.RegisterToken(context.Background(), &dto.RegisterPushTokenRequest{
				Token:       "token-x",
				DeviceClass: "smartwatch",
			}, user.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("RevokeRemovesToken", func(t *testing.T) {
			result, err := env.pushFlow.RevokeToken(context.Background(), &dto.RevokePushTokenRequest{
				Token: "token-android-1",
			}, user.ID, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Revoked)

			subscriptions, err := env.subscriptionRepo.ListByUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Len(t, subscriptions, 1)
		})

		t.Run("RevokeUnknownTokenFails", func(t *testing.T) {
			_, err := env.pushFlow.RevokeToken(context.Background(), &dto.RevokePushTokenRequest{
				Token: "token-android-1",
			}, user.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))
		})

		t.Run("TokensAreScopedPerUser", func(t *testing.T) {
			other, err := fixtures.CreateTestUser(models.ProfileVendedor, nil)
			require.NoError(t, err)

			_, err = env.pushFlow.RevokeToken(context.Background(), &dto.RevokePushTokenRequest{
				Token: "token-web-2",
			}, other.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))
		})

		return nil
	})
	require.NoError(t, err)
}
