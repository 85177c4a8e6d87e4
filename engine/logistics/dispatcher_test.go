package logistics

import (
	"testing"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/brackwater/colonysim/engine/maplib"
	"github.com/brackwater/colonysim/engine/movement"
	"github.com/brackwater/colonysim/engine/pathfind"
	"github.com/stretchr/testify/require"
)

func dispatcherWorldDefs() map[string]BuildingInventoryDef {
	return map[string]BuildingInventoryDef{
		"sawmill": {Outputs: []SlotDef{{Material: "planks", Capacity: 50}}},
		"depot":   {Inputs: []SlotDef{{Material: "planks", Capacity: 50}}},
		"hub":     {},
	}
}

type dispatcherWorld struct {
	entities *core.Table
	inv      *InventoryManager
	res      *ReservationManager
	requests *RequestManager
	carriers *CarrierManager
	cs       *CarrierSystem
	areas    *ServiceAreaIndex
	mv       *movement.Manager
	bus      *core.EventBus
	d        *Dispatcher
	source   *core.Entity
	dest     *core.Entity
	hub      *core.Entity
	unit     *core.Entity
}

func newDispatcherWorld(t *testing.T, stallCheckTicks, stallTimeoutTicks uint64) *dispatcherWorld {
	t.Helper()
	grid := maplib.NewTileGrid(12, 12)
	for i := range grid.GroundType {
		grid.GroundType[i] = maplib.GroundGrass
	}
	entities := core.NewTable()
	nav := pathfind.NewNavGrid(grid, entities)
	bus := core.NewEventBus()

	source := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 5, Y: 0}, 0)
	dest := entities.Add(core.EntityBuilding, "depot", hexgrid.Coord{X: 0, Y: 0}, 0)
	hub := entities.Add(core.EntityBuilding, "hub", hexgrid.Coord{X: 2, Y: 0}, 0)
	unit := entities.Add(core.EntityUnit, "carrier", hexgrid.Coord{X: 2, Y: 1}, 0)

	nav.Refresh(grid, entities)

	inv := NewInventoryManager(dispatcherWorldDefs())
	inv.CreateForBuilding(source.ID, "sawmill")
	inv.CreateForBuilding(dest.ID, "depot")
	inv.stores[source.ID].outputs["planks"].amount = 20

	areas := NewServiceAreaIndex()
	areas.RegisterHub(hub.ID, hub.Pos, 10, 0)

	carriers := NewCarrierManager(bus)
	carriers.Register(unit.ID, hub.ID)

	mv := movement.NewManager(entities, nav, bus, 3)
	cs := NewCarrierSystem(carriers, inv, entities, mv, nav, bus, 4.0)

	requests := NewRequestManager()
	res := NewReservationManager()
	d := NewDispatcher(requests, res, inv, carriers, cs, areas, entities, bus, stallCheckTicks, stallTimeoutTicks, nil)

	return &dispatcherWorld{
		entities: entities, inv: inv, res: res, requests: requests,
		carriers: carriers, cs: cs, areas: areas, mv: mv, bus: bus, d: d,
		source: source, dest: dest, hub: hub, unit: unit,
	}
}

func (w *dispatcherWorld) drive(t *testing.T, maxSteps int) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		w.d.Update(0.1)
		w.cs.Update(0.1)
		w.mv.Update(0.25)
		if !w.mv.IsMoving(w.unit.ID) && w.carriers.Get(w.unit.ID).Job == nil {
			return
		}
	}
}

func TestDispatcherAssignsMatchedRequestToCarrier(t *testing.T) {
	w := newDispatcherWorld(t, 100, 100)
	req := w.requests.Add(w.dest.ID, "planks", 10, 1, 0)

	w.drive(t, 300)

	require.Equal(t, 10.0, w.inv.stores[w.source.ID].outputs["planks"].amount)
	require.Equal(t, 10.0, w.inv.stores[w.dest.ID].inputs["planks"].amount)
	_, stillThere := w.requests.requests[req.ID]
	require.False(t, stillThere, "fulfilled request should be removed")
}

func TestDispatcherLeavesUnmatchableRequestPending(t *testing.T) {
	w := newDispatcherWorld(t, 100, 100)
	req := w.requests.Add(w.dest.ID, "nails", 10, 1, 0)

	w.d.Update(0.1)

	pending := w.requests.GetPending()
	require.Len(t, pending, 1)
	require.Equal(t, req.ID, pending[0].ID)
	require.Equal(t, RequestPending, pending[0].Status)
}

func TestDispatcherSweepStalledResetsTimedOutRequest(t *testing.T) {
	w := newDispatcherWorld(t, 5, 10)
	req := w.requests.Add(w.dest.ID, "planks", 10, 1, 0)
	resID, ok := w.res.Create(w.source.ID, "planks", 10, req.ID)
	require.True(t, ok)
	w.requests.Assign(req, w.source.ID, w.unit.ID, 0)
	// Mark the carrier busy so the dispatcher can't immediately
	// reassign it the moment the stall sweep resets the request.
	w.carriers.SetStatus(w.unit.ID, StatusWalking)

	for i := uint64(0); i < 20; i++ {
		w.d.Update(0.1)
	}

	require.Equal(t, RequestPending, req.Status)
	require.Equal(t, core.EntityID(0), req.Source)
	require.False(t, w.res.Release(resID), "stalled sweep should already have released the reservation")
}

func TestDispatcherHandleBuildingDestroyedCancelsAndResetsRequests(t *testing.T) {
	w := newDispatcherWorld(t, 100, 100)
	toDest := w.requests.Add(w.dest.ID, "planks", 10, 1, 0)

	fromSource := w.requests.Add(w.hub.ID, "planks", 5, 1, 0)
	resID, ok := w.res.Create(w.source.ID, "planks", 5, fromSource.ID)
	require.True(t, ok)
	w.requests.Assign(fromSource, w.source.ID, w.unit.ID, 0)

	var cleaned int
	w.bus.On(core.EvtLogisticsBuildingCleanedUp, func(e core.Event) { cleaned++ })

	w.d.HandleBuildingDestroyed(w.dest.ID)
	_, destStillTracked := w.requests.requests[toDest.ID]
	require.False(t, destStillTracked)

	w.d.HandleBuildingDestroyed(w.source.ID)
	require.Equal(t, RequestPending, fromSource.Status)
	require.False(t, w.res.Release(resID))
	require.Equal(t, 2, cleaned)
}

func TestDispatcherOnCarrierRemovedResetsItsRequest(t *testing.T) {
	w := newDispatcherWorld(t, 100, 100)
	req := w.requests.Add(w.dest.ID, "planks", 10, 1, 0)
	_, ok := w.res.Create(w.source.ID, "planks", 10, req.ID)
	require.True(t, ok)
	w.requests.Assign(req, w.source.ID, w.unit.ID, 0)
	w.d.requestToCarrier[req.ID] = w.unit.ID

	w.carriers.Remove(w.unit.ID)

	require.Equal(t, RequestPending, req.Status)
}
