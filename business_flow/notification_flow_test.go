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

func TestNotificationFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())

		user, err := fixtures.CreateTestUser(models.ProfileSupervisor, nil)
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser(models.ProfileSupervisor, nil)
		require.NoError(t, err)

		seed := func(recipientID uint, title string) *models.Notification {
			notification := &models.Notification{
				RecipientID: recipientID,
				Type:        models.NotificationApprovalRequested,
				Title:       title,
				Message:     "Nova sugestao aguardando sua aprovacao",
			}
			require.NoError(t, env.notificationRepo.Save(context.Background(), notification))
			return notification
		}

		first := seed(user.ID, "Aprovacao pendente 1")
		second := seed(user.ID, "Aprovacao pendente 2")
		foreign := seed(other.ID, "Aprovacao de outro usuario")

		t.Run("ListReturnsOwnNotificationsWithUnreadCount", func(t *testing.T) {
			result, err := env.notificationFlow.List(context.Background(), &dto.ListNotificationsRequest{}, user.ID)
			require.NoError(t, err)
			assert.Len(t, result.Notifications, 2)
			assert.Equal(t, int64(2), result.UnreadCount)
			assert.Equal(t, int64(2), result.Pagination.Total)
		})

		t.Run("MarkReadFlagsNotification", func(t *testing.T) {
			result, err := env.notificationFlow.MarkRead(context.Background(), first.ID, user.ID)
			require.NoError(t, err)
			assert.Equal(t, first.ID, result.ID)
			assert.True(t, result.IsRead)

			stored, err := env.notificationRepo.ByID(context.Background(), first.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.True(t, utils.IsTrue(stored.IsRead))
		})

		t.Run("UnreadOnlyFilterExcludesReadRows", func(t *testing.T) {
			result, err := env.notificationFlow.List(context.Background(), &dto.ListNotificationsRequest{
				UnreadOnly: true,
			}, user.ID)
			require.NoError(t, err)
			require.Len(t, result.Notifications, 1)
			assert.Equal(t, second.UUID.String(), result.Notifications[0].UUID)
			assert.Equal(t, int64(1), result.UnreadCount)
		})

		t.Run("MarkReadOnForeignNotificationFails", func(t *testing.T) {
			_, err := env.notificationFlow.MarkRead(context.Background(), foreign.ID, user.ID)
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))
		})

		t.Run("DeleteRemovesOwnNotification", func(t *testing.T) {
			require.NoError(t, env.notificationFlow.Delete(context.Background(), second.ID, user.ID))

			result, err := env.notificationFlow.List(context.Background(), &dto.ListNotificationsRequest{}, user.ID)
			require.NoError(t, err)
			assert.Len(t, result.Notifications, 1)
		})

		t.Run("DeleteOnForeignNotificationFails", func(t *testing.T) {
			err := env.notificationFlow.Delete(context.Background(), foreign.ID, user.ID)
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))

			// The other user's inbox is untouched
			result, err := env.notificationFlow.List(context.Background(), &dto.ListNotificationsRequest{}, other.ID)
			require.NoError(t, err)
			assert.Len(t, result.Notifications, 1)
		})

		t.Run("ListRejectsBadPagination", func(t *testing.T) {
			_, err := env.notificationFlow.List(context.Background(), &dto.ListNotificationsRequest{
				Page: -1,
			}, user.ID)
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		return nil
	})
	require.NoError(t, err)
}
