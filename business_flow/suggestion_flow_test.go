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

func TestSuggestionFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())

		station, err := fixtures.CreateTestStation("Posto Central")
		require.NoError(t, err)

		vendedor, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
		require.NoError(t, err)

		t.Run("SubmitWithEmptyChainFails", func(t *testing.T) {
			// No chain rows yet: the suggestion must be refused, never auto-approved
			req := &dto.SubmitSuggestionRequest{
				StationID:   station.ID,
				ProductCode: "gasolina_comum",
				CostPrice:   5.00,
				FinalPrice:  5.50,
			}

			result, err := env.suggestionFlow.Submit(context.Background(), req, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsApprovalChainEmpty(err))

			count, err := env.suggestionRepo.Count(context.Background(), models.PriceSuggestionFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})

		require.NoError(t, fixtures.CreateApprovalChain(models.ProfileSupervisor, models.ProfileGerente))

		t.Run("SuccessfulSubmitAnchorsAtFirstLevel", func(t *testing.T) {
			observations := "Reajuste por alta do custo"
			req := &dto.SubmitSuggestionRequest{
				StationID:    station.ID,
				ProductCode:  "gasolina_comum",
				CostPrice:    5.00,
				FinalPrice:   5.50,
				Observations: &observations,
			}

			result, err := env.suggestionFlow.Submit(context.Background(), req, vendedor.ID, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, "pending", result.Suggestion.Status)
			assert.Equal(t, 1, result.Suggestion.CurrentLevel)
			assert.Equal(t, vendedor.ID, result.Suggestion.CreatedByID)
			assert.Equal(t, "BRL", result.Suggestion.Currency)
			assert.InDelta(t, 0.10, result.Suggestion.Margin, 0.0001)
		})

		t.Run("SubmitFinalPriceBelowCostFails", func(t *testing.T) {
			req := &dto.SubmitSuggestionRequest{
				StationID:   station.ID,
				ProductCode: "etanol",
				CostPrice:   4.00,
				FinalPrice:  3.50,
			}

			_, err := env.suggestionFlow.Submit(context.Background(), req, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("SubmitUnknownStationFails", func(t *testing.T) {
			req := &dto.SubmitSuggestionRequest{
				StationID:   99999,
				ProductCode: "gasolina_comum",
				CostPrice:   5.00,
				FinalPrice:  5.50,
			}

			_, err := env.suggestionFlow.Submit(context.Background(), req, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))
		})

		t.Run("SubmitWithoutCapabilityFails", func(t *testing.T) {
			diretor, err := fixtures.CreateTestUser(models.ProfileDiretor, nil)
			require.NoError(t, err)

			req := &dto.SubmitSuggestionRequest{
				StationID:   station.ID,
				ProductCode: "gasolina_comum",
				CostPrice:   5.00,
				FinalPrice:  5.50,
			}

			_, err = env.suggestionFlow.Submit(context.Background(), req, diretor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPermissionDenied(err))
		})

		t.Run("BatchSubmitSharesOneBatchID", func(t *testing.T) {
			batchName := "Reajuste semanal"
			req := &dto.SubmitBatchRequest{
				BatchName: &batchName,
				Suggestions: []dto.SubmitSuggestionRequest{
					{StationID: station.ID, ProductCode: "gasolina_comum", CostPrice: 5.00, FinalPrice: 5.50},
					{StationID: station.ID, ProductCode: "etanol", CostPrice: 3.40, FinalPrice: 3.79},
				},
			}

			result, err := env.suggestionFlow.SubmitBatch(context.Background(), req, vendedor.ID, testMetadata())
			require.NoError(t, err)
			require.Len(t, result.Suggestions, 2)
			assert.NotEmpty(t, result.BatchID)
			for _, suggestion := range result.Suggestions {
				require.NotNil(t, suggestion.BatchID)
				assert.Equal(t, result.BatchID, *suggestion.BatchID)
				assert.Equal(t, 1, suggestion.CurrentLevel)
			}
		})

		t.Run("BatchIsAtomic", func(t *testing.T) {
			before, err := env.suggestionRepo.Count(context.Background(), models.PriceSuggestionFilter{})
			require.NoError(t, err)

			req := &dto.SubmitBatchRequest{
				Suggestions: []dto.SubmitSuggestionRequest{
					{StationID: station.ID, ProductCode: "gasolina_comum", CostPrice: 5.00, FinalPrice: 5.50},
					{StationID: station.ID, ProductCode: "diesel_s10", CostPrice: 6.00, FinalPrice: 5.00},
				},
			}

			_, err = env.suggestionFlow.SubmitBatch(context.Background(), req, vendedor.ID, testMetadata())
			require.Error(t, err)

			after, err := env.suggestionRepo.Count(context.Background(), models.PriceSuggestionFilter{})
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})

		t.Run("EditRecomputesMargin", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 1)
			require.NoError(t, err)

			req := &dto.EditSuggestionRequest{
				CostPrice:  utils.ToPtr(5.00),
				FinalPrice: utils.ToPtr(6.00),
			}

			result, err := env.suggestionFlow.Edit(context.Background(), suggestion.UUID.String(), req, vendedor.ID, testMetadata())
			require.NoError(t, err)
			assert.InDelta(t, 0.20, result.Suggestion.Margin, 0.0001)
		})

		t.Run("EditByNonCreatorFails", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 1)
			require.NoError(t, err)

			other, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
			require.NoError(t, err)

			req := &dto.EditSuggestionRequest{FinalPrice: utils.ToPtr(6.00)}

			_, err = env.suggestionFlow.Edit(context.Background(), suggestion.UUID.String(), req, other.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPermissionDenied(err))
		})

		t.Run("EditAfterDecisionFails", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 1)
			require.NoError(t, err)

			supervisor, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
			require.NoError(t, err)

			approval := &models.PriceApproval{
				SuggestionID: suggestion.ID,
				Level:        1,
				ApproverID:   supervisor.ID,
				Decision:     models.DecisionApproved,
			}
			require.NoError(t, env.approvalRepo.Save(context.Background(), approval))

			req := &dto.EditSuggestionRequest{FinalPrice: utils.ToPtr(6.00)}

			_, err = env.suggestionFlow.Edit(context.Background(), suggestion.UUID.String(), req, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeConflict, businessflow.CodeOf(err))
		})

		t.Run("ListScopesVendedorToOwnSubmissions", func(t *testing.T) {
			other, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestSuggestion(station.ID, other.ID, 1)
			require.NoError(t, err)

			result, err := env.suggestionFlow.List(context.Background(), &dto.ListSuggestionsRequest{}, vendedor.ID)
			require.NoError(t, err)
			for _, suggestion := range result.Suggestions {
				assert.Equal(t, vendedor.ID, suggestion.CreatedByID)
			}
		})

		t.Run("GetReturnsDecisionHistory", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 2)
			require.NoError(t, err)

			supervisor, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
			require.NoError(t, err)

			approval := &models.PriceApproval{
				SuggestionID: suggestion.ID,
				Level:        1,
				ApproverID:   supervisor.ID,
				Decision:     models.DecisionApproved,
			}
			require.NoError(t, env.approvalRepo.Save(context.Background(), approval))

			result, err := env.suggestionFlow.Get(context.Background(), suggestion.UUID.String(), vendedor.ID)
			require.NoError(t, err)
			require.Len(t, result.Suggestion.Approvals, 1)
			assert.Equal(t, 1, result.Suggestion.Approvals[0].Level)
			assert.Equal(t, "approved", result.Suggestion.Approvals[0].Decision)
		})

		return nil
	})
	require.NoError(t, err)
}
