// Package sim wires every manager into one runnable simulation: the
// entity table, event bus, tile grid, territory map, placement
// validator, construction manager, nav grid, movement manager, the
// full logistics suite, and the command executor, driven by a fixed
// tick scheduler in the order the rest of this engine's systems
// depend on (movement, then construction, then logistics dispatch,
// then carrier execution).
package sim

import (
	"github.com/brackwater/colonysim/engine/command"
	"github.com/brackwater/colonysim/engine/construction"
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/logistics"
	"github.com/brackwater/colonysim/engine/maplib"
	"github.com/brackwater/colonysim/engine/movement"
	"github.com/brackwater/colonysim/engine/pathfind"
	"github.com/brackwater/colonysim/engine/placement"
	"github.com/brackwater/colonysim/engine/territory"
	"github.com/brackwater/colonysim/internal/simlog"
	"github.com/sirupsen/logrus"
)

// Defs bundles every building type's cross-cutting configuration, the
// single source a Game is built from.
type Defs map[string]command.BuildingDef

// Game owns every manager and the scheduler driving them. It is the
// only thing a host application (a CLI runner, a test harness, a
// future UI) needs to hold onto.
type Game struct {
	Config    core.Config
	Entities  *core.Table
	Grid      *maplib.TileGrid
	Bus       *core.EventBus
	Territory *territory.Map
	Nav       *pathfind.NavGrid

	Construction *construction.Manager
	Movement     *movement.Manager
	Inventory    *logistics.InventoryManager
	Carriers     *logistics.CarrierManager
	Areas        *logistics.ServiceAreaIndex
	Requests     *logistics.RequestManager
	Reservations *logistics.ReservationManager
	CarrierSys   *logistics.CarrierSystem
	Dispatcher   *logistics.Dispatcher

	Executor  *command.Executor
	scheduler *core.Scheduler
}

// NewGame builds every manager over a grid of the given size and
// wires the scheduler in the fixed system order: movement advances
// units first, construction then progresses buildings (which may spawn
// new units for movement to pick up next tick), the dispatcher then
// matches pending requests to carriers, and the carrier system finally
// executes whatever job the dispatcher just assigned alongside fatigue
// decay for everyone else.
func NewGame(cfg core.Config, defs Defs, width, height int) *Game {
	grid := maplib.NewTileGrid(width, height)
	entities := core.NewTable()
	bus := core.NewEventBus()
	terr := territory.NewMap(width, height)
	validator := placement.NewValidator(grid, entities, terr)
	nav := pathfind.NewNavGrid(grid, entities)

	constrDefs := make(map[string]construction.Def, len(defs))
	invDefs := make(map[string]logistics.BuildingInventoryDef, len(defs))
	for name, d := range defs {
		constrDefs[name] = d.Construction
		invDefs[name] = d.Inventory
	}

	constr := construction.NewManager(constrDefs, grid, entities, bus, cfg.Logger)
	mv := movement.NewManager(entities, nav, bus, cfg.MovementMaxRepathAttempts)
	inv := logistics.NewInventoryManager(invDefs)
	carriers := logistics.NewCarrierManager(bus)
	areas := logistics.NewServiceAreaIndex()
	requests := logistics.NewRequestManager()
	reservations := logistics.NewReservationManager()
	carrierSys := logistics.NewCarrierSystem(carriers, inv, entities, mv, nav, bus, cfg.CarrierBaseSpeedTilesPerSec)

	dispatcher := logistics.NewDispatcher(
		requests, reservations, inv, carriers, carrierSys, areas, entities, bus,
		cfg.DispatcherStallTicks/5+1, cfg.DispatcherStallTicks, cfg.Logger,
	)

	exec := command.NewExecutor(defs, entities, grid, bus, validator, terr, constr, mv, nav, inv, carriers, areas, dispatcher, cfg.CarrierBaseSpeedTilesPerSec)

	g := &Game{
		Config:       cfg,
		Entities:     entities,
		Grid:         grid,
		Bus:          bus,
		Territory:    terr,
		Nav:          nav,
		Construction: constr,
		Movement:     mv,
		Inventory:    inv,
		Carriers:     carriers,
		Areas:        areas,
		Requests:     requests,
		Reservations: reservations,
		CarrierSys:   carrierSys,
		Dispatcher:   dispatcher,
		Executor:     exec,
	}

	g.scheduler = core.NewScheduler(cfg.TickRate)
	g.scheduler.AddSystem(mv)
	g.scheduler.AddSystem(constr)
	g.scheduler.AddSystem(dispatcher)
	g.scheduler.AddSystem(carrierSys)

	return g
}

// Execute runs a single command against the game's executor.
func (g *Game) Execute(cmd command.Command) command.Result {
	return g.Executor.Execute(cmd)
}

// Step advances the simulation by one fixed tick, independent of
// scheduler Play/Pause state — used by headless runners and tests that
// want deterministic single-tick control.
func (g *Game) Step() {
	g.scheduler.Step(1.0 / g.Config.TickRate)
}

// Tick returns the number of fixed ticks the scheduler has run.
func (g *Game) Tick() uint64 {
	return g.scheduler.TickCount
}

// Play resumes the scheduler's continuous Advance-driven ticking.
func (g *Game) Play() { g.scheduler.Play() }

// Pause stops the scheduler's continuous ticking; Step still works.
func (g *Game) Pause() { g.scheduler.Pause() }

// RequestDelivery enqueues a logistics request for amount units of
// material to be delivered to building dest at the given priority,
// fed by the dispatcher on subsequent ticks.
func (g *Game) RequestDelivery(dest core.EntityID, material string, amount float64, priority int, tick uint64) int {
	return g.Requests.Add(dest, material, amount, priority, tick).ID
}

// Log returns a logger scoped to the game, for host-app diagnostics
// outside any single manager.
func (g *Game) Log() *logrus.Entry {
	return simlog.Or(g.Config.Logger).WithField("component", "game")
}
