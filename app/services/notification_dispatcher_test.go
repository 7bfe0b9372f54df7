package services_test

import (
	"context"
	"testing"

	"github.com/petrodesk/petrodesk/app/services"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	testingutil "github.com/petrodesk/petrodesk/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationDispatcher(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.CreateDefaultProfiles())

		notificationRepo := repository.NewNotificationRepository(testDB.DB)
		subscriptionRepo := repository.NewPushSubscriptionRepository(testDB.DB)
		userRepo := repository.NewUserRepository(testDB.DB)

		dispatcher := services.NewNotificationDispatcher(
			notificationRepo, subscriptionRepo, userRepo, services.NewMockPushService(),
		)

		station, err := fixtures.CreateTestStation("Posto Central")
		require.NoError(t, err)
		vendedor, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
		require.NoError(t, err)
		supervisorA, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
		require.NoError(t, err)
		supervisorB, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
		require.NoError(t, err)

		suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 1)
		require.NoError(t, err)

		t.Run("ApprovalRequestFansOutToProfileHolders", func(t *testing.T) {
			err := dispatcher.NotifyApprovalRequested(context.Background(), suggestion, models.ProfileSupervisor, 1)
			require.NoError(t, err)

			forA, err := notificationRepo.ListByRecipient(context.Background(), supervisorA.ID, false, 10, 0)
			require.NoError(t, err)
			assert.Len(t, forA, 1)

			forB, err := notificationRepo.ListByRecipient(context.Background(), supervisorB.ID, false, 10, 0)
			require.NoError(t, err)
			assert.Len(t, forB, 1)
		})

		t.Run("RedispatchIsDeduplicated", func(t *testing.T) {
			err := dispatcher.NotifyApprovalRequested(context.Background(), suggestion, models.ProfileSupervisor, 1)
			require.NoError(t, err)

			forA, err := notificationRepo.ListByRecipient(context.Background(), supervisorA.ID, false, 10, 0)
			require.NoError(t, err)
			assert.Len(t, forA, 1)
		})

		t.Run("TerminalOutcomeNotifiesCreatorOnce", func(t *testing.T) {
			suggestion.Status = models.SuggestionStatusApproved

			require.NoError(t, dispatcher.NotifyTerminal(context.Background(), suggestion, "Maria Souza"))
			require.NoError(t, dispatcher.NotifyTerminal(context.Background(), suggestion, "Maria Souza"))

			notifications, err := notificationRepo.ListByRecipient(context.Background(), vendedor.ID, false, 10, 0)
			require.NoError(t, err)
			assert.Len(t, notifications, 1)
			assert.Equal(t, models.NotificationSuggestionApproved, notifications[0].Type)
		})

		t.Run("TerminalOnNonTerminalStatusFails", func(t *testing.T) {
			pending, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 1)
			require.NoError(t, err)

			err = dispatcher.NotifyTerminal(context.Background(), pending, "Maria Souza")
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
