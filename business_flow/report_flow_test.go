package businessflow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/petrodesk/petrodesk/app/dto"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/petrodesk/petrodesk/models"
	testingutil "github.com/petrodesk/petrodesk/testing"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())
		require.NoError(t, fixtures.CreateApprovalChain(models.ProfileSupervisor, models.ProfileGerente))

		station, err := fixtures.CreateTestStation("Posto Central")
		require.NoError(t, err)

		vendedor, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
		require.NoError(t, err)
		gerente, err := fixtures.CreateTestUser(models.ProfileGerente, &station.ID)
		require.NoError(t, err)
		supervisor, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
		require.NoError(t, err)

		submitted, err := env.suggestionFlow.Submit(context.Background(), &dto.SubmitSuggestionRequest{
			StationID:   station.ID,
			ProductCode: "gasolina_comum",
			CostPrice:   5.10,
			FinalPrice:  5.60,
		}, vendedor.ID, testMetadata())
		require.NoError(t, err)

		_, err = env.approvalFlow.Decide(context.Background(), submitted.Suggestion.UUID,
			&dto.DecideRequest{Decision: "approved"}, supervisor.ID, testMetadata())
		require.NoError(t, err)

		t.Run("ExportProducesWorkbook", func(t *testing.T) {
			result, err := env.reportFlow.ExportSuggestions(context.Background(), &dto.ExportSuggestionsRequest{}, gerente.ID)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(result.FileName, "sugestoes_"))
			assert.True(t, strings.HasSuffix(result.FileName, ".xlsx"))
			assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
			assert.NotEmpty(t, result.Content)
		})

		t.Run("ExportWithoutReportCapabilityFails", func(t *testing.T) {
			_, err := env.reportFlow.ExportSuggestions(context.Background(), &dto.ExportSuggestionsRequest{}, vendedor.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsPermissionDenied(err))
		})

		t.Run("ExportRejectsInvertedDateRange", func(t *testing.T) {
			_, err := env.reportFlow.ExportSuggestions(context.Background(), &dto.ExportSuggestionsRequest{
				From: utils.ToPtr("2026-08-31"),
				To:   utils.ToPtr("2026-01-01"),
			}, gerente.ID)
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("ExportRejectsUnknownProduct", func(t *testing.T) {
			_, err := env.reportFlow.ExportSuggestions(context.Background(), &dto.ExportSuggestionsRequest{
				ProductCode: utils.ToPtr("querosene"),
			}, gerente.ID)
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("ExportHonorsStatusFilter", func(t *testing.T) {
			result, err := env.reportFlow.ExportSuggestions(context.Background(), &dto.ExportSuggestionsRequest{
				Status: utils.ToPtr("rejected"),
			}, gerente.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, result.Content)
		})

		return nil
	})
	require.NoError(t, err)
}
