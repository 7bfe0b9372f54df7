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

func TestCompetitorPriceFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())

		station, err := fixtures.CreateTestStation("Posto Central")
		require.NoError(t, err)

		vendedor, err := fixtures.CreateTestUser(models.ProfileVendedor, &station.ID)
		require.NoError(t, err)
		diretor, err := fixtures.CreateTestUser(models.ProfileDiretor, &station.ID)
		require.NoError(t, err)

		t.Run("VendedorRegistersObservation", func(t *testing.T) {
			result, err := env.competitorFlow.Register(context.Background(), &dto.RegisterCompetitorPriceRequest{
				StationID:      station.ID,
				CompetitorName: "Posto Ipiranga Centro",
				ProductCode:    "gasolina_comum",
				Price:          5.79,
				Latitude:       utils.ToPtr(-22.9068),
				Longitude:      utils.ToPtr(-43.1729),
			}, vendedor.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "Posto Ipiranga Centro", result.CompetitorPrice.CompetitorName)
			assert.Equal(t, vendedor.ID, result.CompetitorPrice.ResearcherID)
			assert.Equal(t, utils.BRLCurrency, result.CompetitorPrice.Currency)
			assert.False(t, result.CompetitorPrice.ObservedAt.IsZero())
		})

		t.Run("RegisterWithoutCapabilityFails", func(t *testing.T) {
			_, err := env.competitorFlow.Register(context.Background(), &dto.RegisterCompetitorPriceRequest{
				StationID:      station.ID,
				CompetitorName: "Posto Shell Sul",
				ProductCode:    "etanol",
				Price:          3.99,
			}, diretor.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPermissionDenied(err))
		})

		t.Run("RegisterUnknownProductFails", func(t *testing.T) {
			_, err := env.competitorFlow.Register(context.Background(), &dto.RegisterCompetitorPriceRequest{
				StationID:      station.ID,
				CompetitorName: "Posto Shell Sul",
				ProductCode:    "querosene",
				Price:          4.50,
			}, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeValidation, businessflow.CodeOf(err))
		})

		t.Run("RegisterUnknownStationFails", func(t *testing.T) {
			_, err := env.competitorFlow.Register(context.Background(), &dto.RegisterCompetitorPriceRequest{
				StationID:      99999,
				CompetitorName: "Posto Shell Sul",
				ProductCode:    "etanol",
				Price:          3.99,
			}, vendedor.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.CodeNotFound, businessflow.CodeOf(err))
		})

		t.Run("ListFiltersByProduct", func(t *testing.T) {
			_, err := env.competitorFlow.Register(context.Background(), &dto.RegisterCompetitorPriceRequest{
				StationID:      station.ID,
				CompetitorName: "Posto BR Norte",
				ProductCode:    "etanol",
				Price:          3.89,
			}, vendedor.ID, testMetadata())
			require.NoError(t, err)

			result, err := env.competitorFlow.List(context.Background(), &dto.ListCompetitorPricesRequest{
				ProductCode: utils.ToPtr("etanol"),
			}, diretor.ID)
			require.NoError(t, err)
			require.Len(t, result.CompetitorPrices, 1)
			assert.Equal(t, "Posto BR Norte", result.CompetitorPrices[0].CompetitorName)
			assert.Equal(t, int64(1), result.Pagination.Total)
		})

		t.Run("ListWithoutMapCapabilityFails", func(t *testing.T) {
			supervisorOnly, err := fixtures.CreateTestUser(models.ProfileSupervisor, &station.ID)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.Profile{}).
				Where("name = ?", models.ProfileSupervisor).
				Update("can_view_map", false).Error)
			t.Cleanup(func() {
				require.NoError(t, testDB.DB.Model(&models.Profile{}).
					Where("name = ?", models.ProfileSupervisor).
					Update("can_view_map", true).Error)
			})

			_, err = env.competitorFlow.List(context.Background(), &dto.ListCompetitorPricesRequest{}, supervisorOnly.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsPermissionDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDataFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env, err := newTestEnv(testDB)
		require.NoError(t, err)

		fixtures := env.fixtures
		require.NoError(t, fixtures.CreateDefaultProfiles())

		station, err := fixtures.CreateTestStation("Posto Central")
		require.NoError(t, err)
		inactive, err := fixtures.CreateTestStation("Posto Desativado")
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(&models.Station{}).
			Where("id = ?", inactive.ID).Update("is_active", false).Error)

		client, err := fixtures.CreateTestClient("Rede Transportes Ltda", station.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestPaymentMethod("pix", "PIX")
		require.NoError(t, err)

		t.Run("ListStationsReturnsOnlyActive", func(t *testing.T) {
			result, err := env.dataFlow.ListStations(context.Background())
			require.NoError(t, err)
			require.Len(t, result.Stations, 1)
			assert.Equal(t, station.Name, result.Stations[0].Name)
			assert.NotEmpty(t, result.Stations[0].UUID)
		})

		t.Run("ListClientsReturnsActive", func(t *testing.T) {
			result, err := env.dataFlow.ListClients(context.Background())
			require.NoError(t, err)
			require.Len(t, result.Clients, 1)
			assert.Equal(t, client.Name, result.Clients[0].Name)
			assert.Equal(t, station.ID, result.Clients[0].StationID)
		})

		t.Run("ListPaymentMethodsReturnsActive", func(t *testing.T) {
			result, err := env.dataFlow.ListPaymentMethods(context.Background())
			require.NoError(t, err)
			require.Len(t, result.PaymentMethods, 1)
			assert.Equal(t, "PIX", result.PaymentMethods[0].DisplayName)
		})

		return nil
	})
	require.NoError(t, err)
}
