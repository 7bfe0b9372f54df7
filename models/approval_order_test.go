package models_test

import (
	"testing"

	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/stretchr/testify/assert"
)

func chainSnapshot() *models.OrderSnapshot {
	return &models.OrderSnapshot{
		Version: 3,
		Rows: []models.ApprovalProfileOrder{
			{ProfileName: models.ProfileSupervisor, OrderPosition: 1, IsActive: utils.ToPtr(true)},
			{ProfileName: models.ProfileGerente, OrderPosition: 2, IsActive: utils.ToPtr(false)},
			{ProfileName: models.ProfileDiretor, OrderPosition: 3, IsActive: utils.ToPtr(true)},
		},
	}
}

func TestOrderSnapshotFirstActiveLevel(t *testing.T) {
	snapshot := chainSnapshot()
	assert.Equal(t, 1, snapshot.FirstActiveLevel())

	snapshot.Rows[0].IsActive = utils.ToPtr(false)
	assert.Equal(t, 3, snapshot.FirstActiveLevel())

	empty := &models.OrderSnapshot{}
	assert.Equal(t, 0, empty.FirstActiveLevel())
}

func TestOrderSnapshotNextActiveLevel(t *testing.T) {
	snapshot := chainSnapshot()

	// Inactive position 2 is skipped
	assert.Equal(t, 3, snapshot.NextActiveLevel(1))
	assert.Equal(t, 3, snapshot.NextActiveLevel(2))
	assert.Equal(t, 0, snapshot.NextActiveLevel(3))
}

func TestOrderSnapshotActiveProfileAt(t *testing.T) {
	snapshot := chainSnapshot()

	profile, ok := snapshot.ActiveProfileAt(1)
	assert.True(t, ok)
	assert.Equal(t, models.ProfileSupervisor, profile)

	_, ok = snapshot.ActiveProfileAt(2)
	assert.False(t, ok)

	_, ok = snapshot.ActiveProfileAt(9)
	assert.False(t, ok)
}

func TestOrderSnapshotPositionOf(t *testing.T) {
	snapshot := chainSnapshot()

	position, active := snapshot.PositionOf(models.ProfileGerente)
	assert.Equal(t, 2, position)
	assert.False(t, active)

	position, active = snapshot.PositionOf(models.ProfileDiretor)
	assert.Equal(t, 3, position)
	assert.True(t, active)

	position, active = snapshot.PositionOf(models.ProfileAdmin)
	assert.Equal(t, 0, position)
	assert.False(t, active)
}
