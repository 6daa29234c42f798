package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsService_Empty(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.stats.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalMedicines)
	assert.Zero(t, stats.UsersWithMedicines)
	assert.Zero(t, stats.AverageMedicinesPerUser)
}

func TestStatisticsService_Counts(t *testing.T) {
	env := newTestEnv(t)

	asha := env.addUser(t, "Asha", "555-1111")
	ravi := env.addUser(t, "Ravi", "555-2222")
	env.addUser(t, "Meera", "555-3333")
	env.addMedicine(t, asha, "Paracetamol", "500mg")
	env.addMedicine(t, asha, "Ibuprofen", "200mg")
	env.addMedicine(t, ravi, "Cetirizine", "10mg")

	stats, err := env.stats.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 3, stats.TotalMedicines)
	assert.EqualValues(t, 2, stats.UsersWithMedicines)
	assert.InDelta(t, 1.0, stats.AverageMedicinesPerUser, 1e-9)
}
