package command

import (
	"github.com/brackwater/colonysim/engine/construction"
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/brackwater/colonysim/engine/logistics"
	"github.com/brackwater/colonysim/engine/maplib"
	"github.com/brackwater/colonysim/engine/movement"
	"github.com/brackwater/colonysim/engine/pathfind"
	"github.com/brackwater/colonysim/engine/placement"
	"github.com/brackwater/colonysim/engine/territory"
	"github.com/brackwater/colonysim/internal/simerr"
)

// carrierSubType is the unit sub-type that triggers auto-registration
// with the nearest same-player service hub on spawn.
const carrierSubType = "carrier"

// Executor is the simulation's sole mutation entry point: it validates
// a Command's preconditions, applies the mutation across every
// manager it touches, emits the corresponding event(s), and reports
// back what changed.
type Executor struct {
	Defs map[string]BuildingDef

	entities    *core.Table
	grid        *maplib.TileGrid
	bus         *core.EventBus
	validator   *placement.Validator
	territory   *territory.Map
	construction *construction.Manager
	movement    *movement.Manager
	nav         *pathfind.NavGrid
	inventory   *logistics.InventoryManager
	carriers    *logistics.CarrierManager
	areas       *logistics.ServiceAreaIndex
	dispatcher  *logistics.Dispatcher

	unitSpeed float64
	selected  map[core.EntityID]bool

	resourceAmounts map[core.EntityID]float64
}

// NewExecutor wires every manager the executor coordinates and
// subscribes to unit:spawned so carrier auto-registration applies
// uniformly whether a unit was spawned by this executor's SpawnUnit
// command or by the construction system's on-completion spawn.
func NewExecutor(
	defs map[string]BuildingDef,
	entities *core.Table,
	grid *maplib.TileGrid,
	bus *core.EventBus,
	validator *placement.Validator,
	terr *territory.Map,
	constr *construction.Manager,
	mv *movement.Manager,
	nav *pathfind.NavGrid,
	inv *logistics.InventoryManager,
	carriers *logistics.CarrierManager,
	areas *logistics.ServiceAreaIndex,
	dispatcher *logistics.Dispatcher,
	unitSpeed float64,
) *Executor {
	e := &Executor{
		Defs:            defs,
		entities:        entities,
		grid:            grid,
		bus:             bus,
		validator:       validator,
		territory:       terr,
		construction:    constr,
		movement:        mv,
		nav:             nav,
		inventory:       inv,
		carriers:        carriers,
		areas:           areas,
		dispatcher:      dispatcher,
		unitSpeed:       unitSpeed,
		selected:        make(map[core.EntityID]bool),
		resourceAmounts: make(map[core.EntityID]float64),
	}
	bus.On(core.EvtUnitSpawned, e.onUnitSpawned)
	return e
}

// Execute validates and applies cmd, returning the outcome. No
// mutation happens if validation fails.
func (e *Executor) Execute(cmd Command) Result {
	switch c := cmd.(type) {
	case PlaceBuilding:
		return e.placeBuilding(c)
	case PlaceResource:
		return e.placeResource(c)
	case SpawnUnit:
		return e.spawnUnit(c)
	case MoveUnit:
		return e.moveUnit(c)
	case MoveSelectedUnits:
		return e.moveSelectedUnits(c)
	case Select:
		return e.selectOne(c)
	case SelectAtTile:
		return e.selectAtTile(c)
	case ToggleSelection:
		return e.toggleSelection(c)
	case SelectArea:
		return e.selectArea(c)
	case RemoveEntity:
		return e.removeEntity(c)
	default:
		return fail(simerr.ErrInvalidCommand)
	}
}

func (e *Executor) placeBuilding(c PlaceBuilding) Result {
	def, ok := e.Defs[c.BuildingType]
	if !ok {
		return fail(simerr.ErrUnknownBuildType)
	}
	anchor := hexgrid.Coord{X: c.X, Y: c.Y}
	if err := e.validator.Validate(def.Footprint, anchor, c.Player); err != nil {
		return fail(err)
	}

	entity := e.entities.Add(core.EntityBuilding, c.BuildingType, anchor, c.Player)
	e.inventory.CreateForBuilding(entity.ID, c.BuildingType)
	e.construction.Start(entity.ID, c.BuildingType, anchor)
	e.territory.Rebuild(e.entities)
	e.nav.Refresh(e.grid, e.entities)
	if def.IsHub {
		e.areas.RegisterHub(entity.ID, anchor, def.ServiceRadius, c.Player)
	}

	e.bus.Emit(core.Event{Type: core.EvtBuildingPlaced, Payload: entity.ID})

	return okResult(e,
		EntityCreated{ID: entity.ID, Type: core.EntityBuilding, SubType: c.BuildingType, X: c.X, Y: c.Y},
		BuildingPlaced{ID: entity.ID},
	)
}

func (e *Executor) placeResource(c PlaceResource) Result {
	pos := hexgrid.Coord{X: c.X, Y: c.Y}
	if !e.grid.InBounds(pos.X, pos.Y) {
		return fail(simerr.ErrOutOfBounds)
	}
	if e.entities.GetAt(pos) != nil {
		return fail(simerr.ErrTileOccupied)
	}

	entity := e.entities.Add(core.EntityStackedResource, c.MaterialType, pos, -1)
	e.resourceAmounts[entity.ID] = c.Amount

	return okResult(e, EntityCreated{ID: entity.ID, Type: core.EntityStackedResource, SubType: c.MaterialType, X: c.X, Y: c.Y})
}

func (e *Executor) spawnUnit(c SpawnUnit) Result {
	pos := hexgrid.Coord{X: c.X, Y: c.Y}
	if !e.grid.InBounds(pos.X, pos.Y) {
		return fail(simerr.ErrOutOfBounds)
	}
	if !maplib.IsPassable(e.grid.GroundTypeAt(pos.X, pos.Y)) {
		return fail(simerr.ErrNotBuildable)
	}
	if e.entities.GetAt(pos) != nil {
		return fail(simerr.ErrTileOccupied)
	}

	entity := e.entities.Add(core.EntityUnit, c.UnitType, pos, c.Player)
	e.bus.Emit(core.Event{Type: core.EvtUnitSpawned, Payload: entity.ID})

	return okResult(e, EntityCreated{ID: entity.ID, Type: core.EntityUnit, SubType: c.UnitType, X: c.X, Y: c.Y}, UnitSpawned{ID: entity.ID})
}

// onUnitSpawned auto-registers any newly spawned carrier with its
// player's nearest service hub, regardless of whether the unit came
// from a SpawnUnit command or a completed building's configured spawn.
func (e *Executor) onUnitSpawned(ev core.Event) {
	id, ok := ev.Payload.(core.EntityID)
	if !ok {
		return
	}
	unit := e.entities.Get(id)
	if unit == nil || unit.SubType != carrierSubType {
		return
	}
	hub, found := e.areas.NearestHub(unit.Pos, unit.Player)
	if !found {
		return
	}
	e.carriers.Register(id, hub)
}

func (e *Executor) moveUnit(c MoveUnit) Result {
	entity := e.entities.Get(c.EntityID)
	if entity == nil {
		return fail(simerr.ErrUnknownEntity)
	}
	if entity.Type != core.EntityUnit {
		return fail(simerr.ErrInvalidCommand)
	}
	dest := hexgrid.Coord{X: c.TargetX, Y: c.TargetY}
	if err := e.movement.OrderMove(c.EntityID, dest, e.unitSpeed); err != nil {
		return fail(err)
	}
	return okResult(e, EntityMoved{ID: c.EntityID, X: c.TargetX, Y: c.TargetY})
}

// moveSelectedUnits orders every selected unit to the same
// destination independently; a unit with no path is simply skipped
// rather than failing the whole command, since a partial order is
// more useful to a player controlling a group than an all-or-nothing
// one. The command only fails if not a single selected unit could be
// ordered.
func (e *Executor) moveSelectedUnits(c MoveSelectedUnits) Result {
	dest := hexgrid.Coord{X: c.TargetX, Y: c.TargetY}
	var effects []Effect
	for id := range e.selected {
		entity := e.entities.Get(id)
		if entity == nil || entity.Type != core.EntityUnit {
			continue
		}
		if err := e.movement.OrderMove(id, dest, e.unitSpeed); err != nil {
			continue
		}
		effects = append(effects, EntityMoved{ID: id, X: c.TargetX, Y: c.TargetY})
	}
	if len(effects) == 0 {
		return fail(simerr.ErrInvalidCommand)
	}
	return okResult(e, effects...)
}

func (e *Executor) selectOne(c Select) Result {
	e.selected = make(map[core.EntityID]bool)
	if c.EntityID != nil {
		if e.entities.Get(*c.EntityID) == nil {
			return fail(simerr.ErrUnknownEntity)
		}
		e.selected[*c.EntityID] = true
	}
	return okResult(e)
}

func (e *Executor) selectAtTile(c SelectAtTile) Result {
	entity := e.entities.GetAt(hexgrid.Coord{X: c.X, Y: c.Y})
	if !c.Add {
		e.selected = make(map[core.EntityID]bool)
	}
	if entity != nil {
		e.selected[entity.ID] = true
	}
	return okResult(e)
}

func (e *Executor) toggleSelection(c ToggleSelection) Result {
	if e.entities.Get(c.EntityID) == nil {
		return fail(simerr.ErrUnknownEntity)
	}
	if e.selected[c.EntityID] {
		delete(e.selected, c.EntityID)
	} else {
		e.selected[c.EntityID] = true
	}
	return okResult(e)
}

func (e *Executor) selectArea(c SelectArea) Result {
	minX, maxX := c.X1, c.X2
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := c.Y1, c.Y2
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	e.selected = make(map[core.EntityID]bool)
	for _, entity := range e.entities.All() {
		if entity.Pos.X >= minX && entity.Pos.X <= maxX && entity.Pos.Y >= minY && entity.Pos.Y <= maxY {
			e.selected[entity.ID] = true
		}
	}
	return okResult(e)
}

// Selected returns the currently selected entity ids. Order is
// unspecified.
func (e *Executor) Selected() []core.EntityID {
	out := make([]core.EntityID, 0, len(e.selected))
	for id := range e.selected {
		out = append(out, id)
	}
	return out
}

// removeEntity deletes an entity and cascades every side-state it
// owns: construction state, carrier state, inventory, reservations,
// requests, and carrier-to-request mappings.
func (e *Executor) removeEntity(c RemoveEntity) Result {
	entity := e.entities.Get(c.EntityID)
	if entity == nil {
		return fail(simerr.ErrUnknownEntity)
	}

	switch entity.Type {
	case core.EntityBuilding:
		e.construction.Remove(c.EntityID)
		e.inventory.RemoveForBuilding(c.EntityID)
		e.areas.RemoveHub(c.EntityID)
		e.entities.Remove(c.EntityID)
		e.territory.Rebuild(e.entities)
		e.nav.Refresh(e.grid, e.entities)
		if e.dispatcher != nil {
			e.dispatcher.HandleBuildingDestroyed(c.EntityID)
		}
		e.bus.Emit(core.Event{Type: core.EvtBuildingRemoved, Payload: c.EntityID})
	case core.EntityUnit:
		e.movement.Cancel(c.EntityID)
		if e.carriers.Get(c.EntityID) != nil {
			e.carriers.Remove(c.EntityID)
		}
		e.entities.Remove(c.EntityID)
	default:
		delete(e.resourceAmounts, c.EntityID)
		e.entities.Remove(c.EntityID)
	}
	delete(e.selected, c.EntityID)

	return okResult(e, EntityRemoved{ID: c.EntityID})
}

// okResult builds a Result that always carries the current selection
// as a SelectionChanged effect alongside whatever else the command
// produced, so callers/replay consumers don't have to separately poll
// selection state after every command.
func okResult(e *Executor, effects ...Effect) Result {
	all := append(effects, SelectionChanged{Selected: e.Selected()})
	return ok(all...)
}
