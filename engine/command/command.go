// Package command implements the sole mutation entry point into the
// simulation: a closed sum of Commands, validated and applied by an
// Executor that reports back a CommandResult describing what changed.
package command

import (
	"github.com/brackwater/colonysim/engine/construction"
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/placement"
	"github.com/brackwater/colonysim/engine/logistics"
)

// Command is the closed sum of every mutation the simulation accepts.
// isCommand is unexported, so no type outside this package may
// implement it.
type Command interface {
	isCommand()
}

// PlaceBuilding places a new building of buildingType, anchored at
// (X, Y), owned by Player.
type PlaceBuilding struct {
	BuildingType string
	X, Y         int
	Player       int
}

// PlaceResource drops a stacked resource pile on a tile.
type PlaceResource struct {
	MaterialType string
	Amount       float64
	X, Y         int
}

// SpawnUnit creates a free-standing unit (not tied to a building's
// construction completion).
type SpawnUnit struct {
	UnitType string
	X, Y     int
	Player   int
}

// MoveUnit orders a single unit to path to a destination tile.
type MoveUnit struct {
	EntityID       core.EntityID
	TargetX, TargetY int
}

// MoveSelectedUnits orders every currently selected unit to a
// destination tile.
type MoveSelectedUnits struct {
	TargetX, TargetY int
}

// Select replaces the current selection with a single entity, or
// clears it if EntityID is nil.
type Select struct {
	EntityID *core.EntityID
}

// SelectAtTile selects whatever entity occupies (X, Y); Add appends to
// the existing selection instead of replacing it.
type SelectAtTile struct {
	X, Y int
	Add  bool
}

// ToggleSelection flips one entity's membership in the selection.
type ToggleSelection struct {
	EntityID core.EntityID
}

// SelectArea replaces the selection with every entity inside the axial
// bounding box [X1,Y1]-[X2,Y2].
type SelectArea struct {
	X1, Y1, X2, Y2 int
}

// RemoveEntity deletes an entity and cascades every side-state it
// owns.
type RemoveEntity struct {
	EntityID core.EntityID
}

func (PlaceBuilding) isCommand()     {}
func (PlaceResource) isCommand()     {}
func (SpawnUnit) isCommand()         {}
func (MoveUnit) isCommand()          {}
func (MoveSelectedUnits) isCommand() {}
func (Select) isCommand()            {}
func (SelectAtTile) isCommand()      {}
func (ToggleSelection) isCommand()   {}
func (SelectArea) isCommand()        {}
func (RemoveEntity) isCommand()      {}

// Effect describes one piece of state that changed as a result of a
// successful command, for logging, replay, and undo. isEffect is
// unexported for the same closed-set reason as Command.
type Effect interface {
	isEffect()
}

type EntityCreated struct {
	ID      core.EntityID
	Type    core.EntityType
	SubType string
	X, Y    int
}

type EntityRemoved struct {
	ID core.EntityID
}

type EntityMoved struct {
	ID   core.EntityID
	X, Y int
}

type SelectionChanged struct {
	Selected []core.EntityID
}

type BuildingPlaced struct {
	ID core.EntityID
}

type UnitSpawned struct {
	ID core.EntityID
}

func (EntityCreated) isEffect()    {}
func (EntityRemoved) isEffect()    {}
func (EntityMoved) isEffect()      {}
func (SelectionChanged) isEffect() {}
func (BuildingPlaced) isEffect()   {}
func (UnitSpawned) isEffect()      {}

// Result is what Execute returns: success/failure, the error on
// failure, and the effects a successful command produced.
type Result struct {
	Success bool
	Error   error
	Effects []Effect
}

func ok(effects ...Effect) Result {
	return Result{Success: true, Effects: effects}
}

func fail(err error) Result {
	return Result{Success: false, Error: err}
}

// BuildingDef is everything PlaceBuilding needs to know about one
// building type: its footprint, construction timing/spawn config, and
// inventory slot layout. IsHub buildings also get registered with the
// service-area index at their configured radius.
type BuildingDef struct {
	Footprint     placement.Footprint
	Construction  construction.Def
	Inventory     logistics.BuildingInventoryDef
	IsHub         bool
	ServiceRadius int
}
