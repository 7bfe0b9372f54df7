package businessflow_test

import (
	"context"
	"sync"
	"testing"

	"github.com/petrodesk/petrodesk/app/dto"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/petrodesk/petrodesk/models"
	testingutil "github.com/petrodesk/petrodesk/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())
		require.NoError(t, fixtures.CreateApprovalChain(models.ProfileSupervisor, models.ProfileGerente))

		station, err := fixtures.CreateTestStation("Posto Matriz")
		require.NoError(t, err)

		vendedor, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
		require.NoError(t, err)
		supervisor, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
		require.NoError(t, err)
		gerente, err := fixtures.CreateTestUser(models.ProfileGerente, nil)
		require.NoError(t, err)

		submit := func(t *testing.T, finalPrice float64) string {
			t.Helper()
			result, err := env.suggestionFlow.Submit(context.Background(), &dto.SubmitSuggestionRequest{
				StationID:   station.ID,
				ProductCode: "gasolina_comum",
				CostPrice:   5.00,
				FinalPrice:  finalPrice,
			}, vendedor.ID, testMetadata())
			require.NoError(t, err)
			return result.Suggestion.UUID
		}

		approve := &dto.DecideRequest{Decision: "approved"}
		reject := &dto.DecideRequest{Decision: "rejected"}

		t.Run("ApprovalAdvancesThroughTheChain", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			first, err := env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, supervisor.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "in_approval", first.Suggestion.Status)
			assert.Equal(t, 2, first.Suggestion.CurrentLevel)

			second, err := env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, gerente.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "approved", second.Suggestion.Status)
		})

		t.Run("RejectionIsTerminal", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			result, err := env.approvalFlow.Decide(context.Background(), suggestionUUID, reject, supervisor.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "rejected", result.Suggestion.Status)

			_, err = env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, supervisor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsSuggestionTerminal(err))
		})

		t.Run("SelfApprovalFails", func(t *testing.T) {
			result, err := env.suggestionFlow.Submit(context.Background(), &dto.SubmitSuggestionRequest{
				StationID:   station.ID,
				ProductCode: "etanol",
				CostPrice:   3.40,
				FinalPrice:  3.79,
			}, supervisor.ID, testMetadata())
			require.NoError(t, err)

			_, err = env.approvalFlow.Decide(context.Background(), result.Suggestion.UUID, approve, supervisor.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeUnauthorized, businessflow.CodeOf(err))
		})

		t.Run("WrongProfileForLevelFails", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			_, err := env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, gerente.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNotLevelApprover(err))
		})

		t.Run("NonApproverFails", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			_, err := env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPermissionDenied(err))
		})

		t.Run("MarginAboveApproverLimitFails", func(t *testing.T) {
			// Gerente carries a 15% margin cap, 5.00 -> 6.00 is 20%
			suggestionUUID := submit(t, 6.00)

			_, err := env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, supervisor.ID, testMetadata())
			require.NoError(t, err)

			_, err = env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, gerente.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeUnauthorized, businessflow.CodeOf(err))
		})

		t.Run("SecondDecisionAtSameLevelConflicts", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			suggestion, err := env.suggestionRepo.ByUUID(context.Background(), suggestionUUID)
			require.NoError(t, err)

			// Simulate a racing decision that already landed at level 1
			// without advancing the suggestion
			other, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
			require.NoError(t, err)
			require.NoError(t, env.approvalRepo.Save(context.Background(), &models.PriceApproval{
				SuggestionID: suggestion.ID,
				Level:        1,
				ApproverID:   other.ID,
				Decision:     models.DecisionApproved,
			}))

			_, err = env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, supervisor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsSuggestionAlreadyDecided(err))
		})

		t.Run("ConcurrentDecidesYieldOneWinner", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			rival, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
			require.NoError(t, err)

			start := make(chan struct{})
			results := make(chan error, 2)
			var wg sync.WaitGroup
			for _, approverID := range []uint{supervisor.ID, rival.ID} {
				wg.Add(1)
				go func(id uint) {
					defer wg.Done()
					<-start
					_, err := env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, id, testMetadata())
					results <- err
				}(approverID)
			}
			close(start)
			wg.Wait()
			close(results)

			// The unique index on (suggestion, level) lets exactly one
			// insert through; the loser surfaces as a conflict
			var wins, conflicts int
			for err := range results {
				if err == nil {
					wins++
					continue
				}
				assert.Equal(t, businessflow.CodeConflict, businessflow.CodeOf(err))
				conflicts++
			}
			assert.Equal(t, 1, wins)
			assert.Equal(t, 1, conflicts)

			suggestion, err := env.suggestionRepo.ByUUID(context.Background(), suggestionUUID)
			require.NoError(t, err)
			approvals, err := env.approvalRepo.ListBySuggestion(context.Background(), suggestion.ID)
			require.NoError(t, err)
			levelOne := 0
			for _, approval := range approvals {
				if approval.Level == 1 {
					levelOne++
				}
			}
			assert.Equal(t, 1, levelOne)
		})

		t.Run("StrandedLevelConflicts", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			// Deactivate the supervisor row after submission, leaving the
			// suggestion anchored on a level no active row holds
			rows, err := env.orderRepo.ListOrdered(context.Background())
			require.NoError(t, err)
			require.NoError(t, env.orderRepo.SetActive(context.Background(), rows[0].ID, false))
			defer func() {
				require.NoError(t, env.orderRepo.SetActive(context.Background(), rows[0].ID, true))
			}()

			_, err = env.approvalFlow.Decide(context.Background(), suggestionUUID, approve, supervisor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsApprovalChainChanged(err))
		})

		t.Run("BatchDecideReportsPartialResults", func(t *testing.T) {
			batch, err := env.suggestionFlow.SubmitBatch(context.Background(), &dto.SubmitBatchRequest{
				Suggestions: []dto.SubmitSuggestionRequest{
					{StationID: station.ID, ProductCode: "gasolina_comum", CostPrice: 5.00, FinalPrice: 5.50},
					{StationID: station.ID, ProductCode: "etanol", CostPrice: 3.40, FinalPrice: 3.79},
				},
			}, vendedor.ID, testMetadata())
			require.NoError(t, err)

			// Push one suggestion to a terminal state so the batch decision
			// succeeds on the other and fails on this one
			first, err := env.suggestionRepo.ByUUID(context.Background(), batch.Suggestions[0].UUID)
			require.NoError(t, err)
			require.NoError(t, env.suggestionRepo.UpdateStatusLevel(context.Background(), first.ID, models.SuggestionStatusRejected, first.CurrentLevel))

			result, err := env.approvalFlow.BatchDecide(context.Background(), &dto.BatchDecideRequest{
				BatchID:  batch.BatchID,
				Decision: "approved",
			}, supervisor.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, result.Decided)
			assert.Equal(t, 1, result.Failed)
			assert.Len(t, result.Results, 2)
		})

		t.Run("PendingApprovalsListsCallerLevelOnly", func(t *testing.T) {
			suggestionUUID := submit(t, 5.50)

			pending, err := env.approvalFlow.PendingApprovals(context.Background(), &dto.PendingApprovalsRequest{}, supervisor.ID)
			require.NoError(t, err)

			found := false
			for _, suggestion := range pending.Suggestions {
				assert.Equal(t, 1, suggestion.CurrentLevel)
				if suggestion.UUID == suggestionUUID {
					found = true
				}
			}
			assert.True(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestApprovalFlowRepair(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())
		require.NoError(t, fixtures.CreateApprovalChain(models.ProfileSupervisor, models.ProfileGerente, models.ProfileDiretor))

		station, err := fixtures.CreateTestStation("Posto Filial")
		require.NoError(t, err)

		vendedor, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
		require.NoError(t, err)
		supervisor, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
		require.NoError(t, err)
		diretor, err := fixtures.CreateTestUser(models.ProfileDiretor, nil)
		require.NoError(t, err)

		deactivate := func(t *testing.T, profileName string, active bool) {
			t.Helper()
			rows, err := env.orderRepo.ListOrdered(context.Background())
			require.NoError(t, err)
			for _, row := range rows {
				if row.ProfileName == profileName {
					require.NoError(t, env.orderRepo.SetActive(context.Background(), row.ID, active))
					return
				}
			}
			t.Fatalf("profile %s not found in chain", profileName)
		}

		t.Run("RepairReanchorsAboveLastDecision", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 2)
			require.NoError(t, err)
			require.NoError(t, env.suggestionRepo.UpdateStatusLevel(context.Background(), suggestion.ID, models.SuggestionStatusInApproval, 2))
			require.NoError(t, env.approvalRepo.Save(context.Background(), &models.PriceApproval{
				SuggestionID: suggestion.ID,
				Level:        1,
				ApproverID:   supervisor.ID,
				Decision:     models.DecisionApproved,
			}))

			deactivate(t, models.ProfileGerente, false)
			defer deactivate(t, models.ProfileGerente, true)

			result, err := env.approvalFlow.Repair(context.Background(), suggestion.UUID.String(), diretor.ID, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Repaired)
			assert.Equal(t, "in_approval", result.Suggestion.Status)
			assert.Equal(t, 3, result.Suggestion.CurrentLevel)
		})

		t.Run("RepairApprovesWhenNoLevelRemains", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 2)
			require.NoError(t, err)
			require.NoError(t, env.suggestionRepo.UpdateStatusLevel(context.Background(), suggestion.ID, models.SuggestionStatusInApproval, 2))
			require.NoError(t, env.approvalRepo.Save(context.Background(), &models.PriceApproval{
				SuggestionID: suggestion.ID,
				Level:        1,
				ApproverID:   supervisor.ID,
				Decision:     models.DecisionApproved,
			}))

			deactivate(t, models.ProfileGerente, false)
			deactivate(t, models.ProfileDiretor, false)
			defer func() {
				deactivate(t, models.ProfileGerente, true)
				deactivate(t, models.ProfileDiretor, true)
			}()

			result, err := env.approvalFlow.Repair(context.Background(), suggestion.UUID.String(), diretor.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "approved", result.Suggestion.Status)
		})

		t.Run("RepairOnHealthySuggestionConflicts", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 1)
			require.NoError(t, err)

			_, err = env.approvalFlow.Repair(context.Background(), suggestion.UUID.String(), diretor.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeConflict, businessflow.CodeOf(err))
		})

		t.Run("RepairOnTerminalSuggestionConflicts", func(t *testing.T) {
			suggestion, err := fixtures.CreateTestSuggestion(station.ID, vendedor.ID, 1)
			require.NoError(t, err)
			require.NoError(t, env.suggestionRepo.UpdateStatusLevel(context.Background(), suggestion.ID, models.SuggestionStatusApproved, 1))

			_, err = env.approvalFlow.Repair(context.Background(), suggestion.UUID.String(), diretor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsSuggestionTerminal(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNormalizePagination(t *testing.T) {
	page, pageSize, err := businessflow.NormalizePagination(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	page, pageSize, err = businessflow.NormalizePagination(3, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	_, _, err = businessflow.NormalizePagination(-1, 10)
	assert.ErrorIs(t, err, businessflow.ErrInvalidPage)

	_, _, err = businessflow.NormalizePagination(1, 101)
	assert.ErrorIs(t, err, businessflow.ErrInvalidPageSize)
}
