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

func TestApprovalOrderFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())

		admin, err := fixtures.CreateTestUser(models.ProfileAdmin, nil)
		require.NoError(t, err)
		vendedor, err := fixtures.CreateTestUser(models.ProfileVendedor, nil)
		require.NoError(t, err)

		t.Run("SeedInstallsDefaultChainOnce", func(t *testing.T) {
			require.NoError(t, env.orderFlow.SeedDefaultChain(context.Background()))

			result, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)
			require.Len(t, result.Rows, 3)
			assert.Equal(t, models.ProfileSupervisor, result.Rows[0].ProfileName)
			assert.Equal(t, models.ProfileGerente, result.Rows[1].ProfileName)
			assert.Equal(t, models.ProfileDiretor, result.Rows[2].ProfileName)

			// Second call is a no-op
			require.NoError(t, env.orderFlow.SeedDefaultChain(context.Background()))
			again, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)
			assert.Len(t, again.Rows, 3)
		})

		t.Run("ReorderRequiresManageCapability", func(t *testing.T) {
			result, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)

			req := &dto.ReorderApprovalOrderRequest{
				Positions: []dto.ApprovalOrderPositionDTO{
					{ID: result.Rows[0].ID, OrderPosition: result.Rows[0].OrderPosition},
				},
			}

			_, err = env.orderFlow.Reorder(context.Background(), req, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPermissionDenied(err))
		})

		t.Run("ReorderSwapsPositions", func(t *testing.T) {
			before, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)
			require.Len(t, before.Rows, 3)

			req := &dto.ReorderApprovalOrderRequest{
				Positions: []dto.ApprovalOrderPositionDTO{
					{ID: before.Rows[0].ID, OrderPosition: 2},
					{ID: before.Rows[1].ID, OrderPosition: 1},
					{ID: before.Rows[2].ID, OrderPosition: 3},
				},
			}

			result, err := env.orderFlow.Reorder(context.Background(), req, admin.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.ProfileGerente, result.Rows[0].ProfileName)
			assert.Equal(t, models.ProfileSupervisor, result.Rows[1].ProfileName)
		})

		t.Run("ReorderRejectsIncompletePermutation", func(t *testing.T) {
			before, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)
			require.Len(t, before.Rows, 3)

			// Omitting the third row must fail even though the submitted
			// positions would merge into a dense sequence
			req := &dto.ReorderApprovalOrderRequest{
				Positions: []dto.ApprovalOrderPositionDTO{
					{ID: before.Rows[0].ID, OrderPosition: 2},
					{ID: before.Rows[1].ID, OrderPosition: 1},
				},
			}

			_, err = env.orderFlow.Reorder(context.Background(), req, admin.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))

			after, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)
			for i, row := range after.Rows {
				assert.Equal(t, before.Rows[i].ID, row.ID)
				assert.Equal(t, before.Rows[i].OrderPosition, row.OrderPosition)
			}
		})

		t.Run("ReorderRejectsDuplicateRow", func(t *testing.T) {
			before, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)

			req := &dto.ReorderApprovalOrderRequest{
				Positions: []dto.ApprovalOrderPositionDTO{
					{ID: before.Rows[0].ID, OrderPosition: 1},
					{ID: before.Rows[0].ID, OrderPosition: 2},
					{ID: before.Rows[1].ID, OrderPosition: 3},
				},
			}

			_, err = env.orderFlow.Reorder(context.Background(), req, admin.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("ReorderRejectsSparsePositions", func(t *testing.T) {
			before, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)

			req := &dto.ReorderApprovalOrderRequest{
				Positions: []dto.ApprovalOrderPositionDTO{
					{ID: before.Rows[0].ID, OrderPosition: 5},
					{ID: before.Rows[1].ID, OrderPosition: 2},
					{ID: before.Rows[2].ID, OrderPosition: 3},
				},
			}

			_, err = env.orderFlow.Reorder(context.Background(), req, admin.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("SetActiveTogglesRow", func(t *testing.T) {
			before, err := env.orderFlow.List(context.Background())
			require.NoError(t, err)
			rowID := before.Rows[2].ID

			result, err := env.orderFlow.SetActive(context.Background(), rowID, &dto.SetApprovalOrderActiveRequest{IsActive: false}, admin.ID, testMetadata())
			require.NoError(t, err)
			for _, row := range result.Rows {
				if row.ID == rowID {
					require.NotNil(t, row.IsActive)
					assert.False(t, *row.IsActive)
				}
			}

			_, err = env.orderFlow.SetActive(context.Background(), rowID, &dto.SetApprovalOrderActiveRequest{IsActive: true}, admin.ID, testMetadata())
			require.NoError(t, err)
		})

		t.Run("SetActiveUnknownRowFails", func(t *testing.T) {
			_, err := env.orderFlow.SetActive(context.Background(), 99999, &dto.SetApprovalOrderActiveRequest{IsActive: false}, admin.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))
		})

		t.Run("AddAppendsApproverProfile", func(t *testing.T) {
			result, err := env.orderFlow.Add(context.Background(), &dto.AddApprovalOrderRequest{ProfileName: models.ProfileAdmin}, admin.ID, testMetadata())
			require.NoError(t, err)

			last := result.Rows[len(result.Rows)-1]
			assert.Equal(t, models.ProfileAdmin, last.ProfileName)
			assert.Equal(t, 4, last.OrderPosition)
		})

		t.Run("AddDuplicateProfileConflicts", func(t *testing.T) {
			_, err := env.orderFlow.Add(context.Background(), &dto.AddApprovalOrderRequest{ProfileName: models.ProfileSupervisor}, admin.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeConflict, businessflow.CodeOf(err))
		})

		t.Run("AddNonApproverProfileFails", func(t *testing.T) {
			_, err := env.orderFlow.Add(context.Background(), &dto.AddApprovalOrderRequest{ProfileName: models.ProfileVendedor}, admin.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("AddUnknownProfileFails", func(t *testing.T) {
			_, err := env.orderFlow.Add(context.Background(), &dto.AddApprovalOrderRequest{ProfileName: "estagiario"}, admin.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))
		})

		return nil
	})
	require.NoError(t, err)
}
