package sim

import (
	"testing"

	"github.com/brackwater/colonysim/engine/command"
	"github.com/brackwater/colonysim/engine/construction"
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/logistics"
	"github.com/brackwater/colonysim/engine/placement"
	"github.com/stretchr/testify/require"
)

func demoDefs() Defs {
	oneTile := placement.Footprint{{X: 0, Y: 0}}
	return Defs{
		"sawmill": {
			Footprint:    oneTile,
			Construction: construction.Def{Footprint: oneTile, TotalDuration: 1, SpawnUnitType: "carrier", SpawnCount: 1},
			Inventory:    logistics.BuildingInventoryDef{Outputs: []logistics.SlotDef{{Material: "planks", Capacity: 50}}},
		},
		"depot": {
			Footprint:     oneTile,
			Construction:  construction.Def{Footprint: oneTile, TotalDuration: 1},
			Inventory:     logistics.BuildingInventoryDef{Inputs: []logistics.SlotDef{{Material: "planks", Capacity: 50}}},
			IsHub:         true,
			ServiceRadius: 10,
		},
	}
}

func findID(res command.Result) core.EntityID {
	for _, eff := range res.Effects {
		if c, ok := eff.(command.EntityCreated); ok {
			return c.ID
		}
	}
	return 0
}

func TestNewGameWiresAllSystemsInOrder(t *testing.T) {
	cfg := core.DefaultConfig()
	g := NewGame(cfg, demoDefs(), 16, 16)

	require.NotNil(t, g.Executor)
	require.Equal(t, uint64(0), g.scheduler.TickCount)

	g.Step()
	require.Equal(t, uint64(1), g.scheduler.TickCount)
}

func TestGameBuildingCompletesAndSpawnsRegisteredCarrier(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.TickRate = 10
	g := NewGame(cfg, demoDefs(), 16, 16)

	depotRes := g.Execute(command.PlaceBuilding{BuildingType: "depot", X: 2, Y: 2, Player: 0})
	require.True(t, depotRes.Success)

	sawmillRes := g.Execute(command.PlaceBuilding{BuildingType: "sawmill", X: 8, Y: 8, Player: 0})
	require.True(t, sawmillRes.Success)

	var completed int
	g.Bus.On(core.EvtBuildingCompleted, func(e core.Event) { completed++ })

	for i := 0; i < 20; i++ {
		g.Step()
	}

	require.Equal(t, 1, completed)
	require.Len(t, g.Carriers.All(), 1)
}

func TestGameFullDeliveryPipelineFromRequestToDispatch(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.TickRate = 10
	cfg.DispatcherStallTicks = 200
	g := NewGame(cfg, demoDefs(), 20, 20)

	depotRes := g.Execute(command.PlaceBuilding{BuildingType: "depot", X: 2, Y: 2, Player: 0})
	depotID := findID(depotRes)
	sawmillRes := g.Execute(command.PlaceBuilding{BuildingType: "sawmill", X: 6, Y: 2, Player: 0})
	sawmillID := findID(sawmillRes)

	for i := 0; i < 20; i++ {
		g.Step()
	}
	require.Len(t, g.Carriers.All(), 1)

	g.Inventory.DepositOutput(sawmillID, "planks", 15)
	g.RequestDelivery(depotID, "planks", 10, 1, g.scheduler.TickCount)

	for i := 0; i < 300; i++ {
		g.Step()
		if g.Inventory.OutputAmount(sawmillID, "planks") <= 5.0001 {
			break
		}
	}

	require.InDelta(t, 5.0, g.Inventory.OutputAmount(sawmillID, "planks"), 0.001)
	require.InDelta(t, 10.0, g.Inventory.InputAmount(depotID, "planks"), 0.001)
}
