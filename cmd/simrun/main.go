// Command simrun drives a colonysim simulation headlessly for a fixed
// number of ticks over a generated demo map, running the same engine
// without opening a render window. There is no window here at all —
// simrun never imports a rendering package.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/brackwater/colonysim/engine/command"
	"github.com/brackwater/colonysim/engine/construction"
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/logistics"
	"github.com/brackwater/colonysim/engine/placement"
	"github.com/brackwater/colonysim/engine/sim"
	"github.com/sirupsen/logrus"
)

func demoDefs() sim.Defs {
	oneTile := placement.Footprint{{X: 0, Y: 0}}
	return sim.Defs{
		"sawmill": {
			Footprint:    oneTile,
			Construction: construction.Def{Footprint: oneTile, TotalDuration: 3, SpawnUnitType: "carrier", SpawnCount: 1},
			Inventory:    logistics.BuildingInventoryDef{Outputs: []logistics.SlotDef{{Material: "planks", Capacity: 100}}},
		},
		"depot": {
			Footprint:     oneTile,
			Construction:  construction.Def{Footprint: oneTile, TotalDuration: 2},
			Inventory:     logistics.BuildingInventoryDef{Inputs: []logistics.SlotDef{{Material: "planks", Capacity: 100}}},
			IsHub:         true,
			ServiceRadius: 12,
		},
	}
}

func main() {
	ticks := flag.Int("ticks", 200, "number of fixed ticks to simulate")
	mapSize := flag.Int("mapsize", 32, "width and height of the generated demo map")
	verbose := flag.Bool("verbose", false, "log every building/carrier/logistics event")
	flag.Parse()

	cfg := core.DefaultConfig()
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	cfg.Logger = logger

	g := sim.NewGame(cfg, demoDefs(), *mapSize, *mapSize)

	if *verbose {
		for _, evt := range []core.EventType{
			core.EvtBuildingPlaced, core.EvtBuildingCompleted, core.EvtBuildingRemoved,
			core.EvtUnitSpawned, core.EvtCarrierCreated, core.EvtCarrierJobAssigned,
			core.EvtCarrierDeliveryComplete, core.EvtCarrierPickupFailed,
		} {
			evt := evt
			g.Bus.On(evt, func(e core.Event) {
				logger.WithField("tick", e.Tick).Info(evt.String())
			})
		}
	}

	depotRes := g.Execute(command.PlaceBuilding{BuildingType: "depot", X: *mapSize / 4, Y: *mapSize / 4, Player: 0})
	if !depotRes.Success {
		fmt.Fprintln(os.Stderr, "failed to place depot:", depotRes.Error)
		os.Exit(1)
	}
	depotID := onlyCreated(depotRes)

	sawmillRes := g.Execute(command.PlaceBuilding{BuildingType: "sawmill", X: *mapSize / 2, Y: *mapSize / 2, Player: 0})
	if !sawmillRes.Success {
		fmt.Fprintln(os.Stderr, "failed to place sawmill:", sawmillRes.Error)
		os.Exit(1)
	}
	sawmillID := onlyCreated(sawmillRes)

	for i := 0; i < *ticks; i++ {
		g.Step()

		// Simulate production: top up the sawmill's output once it's
		// built, so there's always something for the carrier to move.
		if g.Construction.Get(sawmillID) != nil && g.Construction.Get(sawmillID).Phase == construction.PhaseCompleted {
			g.Inventory.DepositOutput(sawmillID, "planks", 0.5)
		}

		if g.Inventory.OutputAmount(sawmillID, "planks") >= 10 {
			g.RequestDelivery(depotID, "planks", 10, 1, g.Tick())
		}
	}

	fmt.Printf("ran %d ticks\n", *ticks)
	fmt.Printf("entities alive: %d\n", g.Entities.Count())
	fmt.Printf("carriers: %d\n", len(g.Carriers.All()))
	fmt.Printf("sawmill output remaining: %.2f planks\n", g.Inventory.OutputAmount(sawmillID, "planks"))
	fmt.Printf("depot input received: %.2f planks\n", g.Inventory.InputAmount(depotID, "planks"))
}

func onlyCreated(res command.Result) core.EntityID {
	for _, eff := range res.Effects {
		if c, ok := eff.(command.EntityCreated); ok {
			return c.ID
		}
	}
	return 0
}
