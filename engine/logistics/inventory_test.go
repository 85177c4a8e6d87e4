package logistics

import (
	"math"
	"testing"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/stretchr/testify/require"
)

func testDefs() map[string]BuildingInventoryDef {
	return map[string]BuildingInventoryDef{
		"sawmill": {
			Inputs:  []SlotDef{{Material: "logs", Capacity: 20}},
			Outputs: []SlotDef{{Material: "planks", Capacity: 20}},
		},
	}
}

func TestDepositInputCapsAtCapacity(t *testing.T) {
	m := NewInventoryManager(testDefs())
	m.CreateForBuilding(1, "sawmill")

	deposited := m.DepositInput(1, "logs", 25)

	require.Equal(t, 20.0, deposited)
}

func TestWithdrawOutputCapsAtAvailable(t *testing.T) {
	m := NewInventoryManager(testDefs())
	m.CreateForBuilding(1, "sawmill")
	m.stores[1].outputs["planks"].amount = 5

	withdrawn := m.WithdrawOutput(1, "planks", 10)

	require.Equal(t, 5.0, withdrawn)
	require.Equal(t, 0.0, m.OutputAmount(1, "planks"))
}

func TestDepositInputUnknownBuildingOrMaterial(t *testing.T) {
	m := NewInventoryManager(testDefs())
	require.Equal(t, 0.0, m.DepositInput(99, "logs", 5))

	m.CreateForBuilding(1, "sawmill")
	require.Equal(t, 0.0, m.DepositInput(1, "ore", 5))
}

func TestSanitizeClampsNaNAndNegative(t *testing.T) {
	require.Equal(t, 0.0, sanitize(math.NaN()))
	require.Equal(t, 0.0, sanitize(-5))
	require.Equal(t, 3.0, sanitize(3))
}

func TestBuildingsWithOutputFiltersByMinimum(t *testing.T) {
	m := NewInventoryManager(testDefs())
	m.CreateForBuilding(1, "sawmill")
	m.CreateForBuilding(2, "sawmill")
	m.stores[1].outputs["planks"].amount = 10
	m.stores[2].outputs["planks"].amount = 0

	ids := m.BuildingsWithOutput("planks", 1)

	require.Equal(t, []core.EntityID{1}, ids)
}

func TestRemoveForBuildingDropsInventory(t *testing.T) {
	m := NewInventoryManager(testDefs())
	m.CreateForBuilding(1, "sawmill")
	m.RemoveForBuilding(1)

	require.Equal(t, 0.0, m.DepositInput(1, "logs", 5))
}

func TestDepositOutputCapsAtCapacityAndUnknownMaterial(t *testing.T) {
	m := NewInventoryManager(testDefs())
	m.CreateForBuilding(1, "sawmill")

	deposited := m.DepositOutput(1, "planks", 25)
	require.Equal(t, 20.0, deposited)
	require.Equal(t, 20.0, m.OutputAmount(1, "planks"))

	require.Equal(t, 0.0, m.DepositOutput(1, "ore", 5))
}

func TestInputAmountReflectsDeposits(t *testing.T) {
	m := NewInventoryManager(testDefs())
	m.CreateForBuilding(1, "sawmill")

	require.Equal(t, 0.0, m.InputAmount(1, "logs"))
	m.DepositInput(1, "logs", 8)
	require.Equal(t, 8.0, m.InputAmount(1, "logs"))
	require.Equal(t, 0.0, m.InputAmount(1, "unknown"))
}
