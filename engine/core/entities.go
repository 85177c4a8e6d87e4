// Package core holds the entity table, event bus, scheduler, and
// configuration shared by every manager in the simulation.
package core

import (
	"github.com/brackwater/colonysim/engine/hexgrid"
)

// EntityID uniquely and monotonically identifies an entity for the
// lifetime of a simulation run, as a 32-bit id. IDs are never reused
// even after the entity is removed.
type EntityID uint32

// EntityType classifies what kind of thing an entity is. Everything
// the simulation tracks — buildings, units, stacked resources on the
// ground, inert map objects — goes through this one closed set rather
// than a per-kind struct hierarchy.
type EntityType uint8

const (
	EntityBuilding EntityType = iota
	EntityUnit
	EntityStackedResource
	EntityMapObject
)

// Entity is the single record every entity table row carries. Managers
// that need more than this (construction phase, inventory slots,
// carrier job state) keep their own side tables keyed by EntityID
// rather than growing this struct, so a building's construction state
// doesn't have to exist on a carrier.
type Entity struct {
	ID      EntityID
	Type    EntityType
	SubType string // building/unit/resource kind name, e.g. "sawmill"
	Pos     hexgrid.Coord
	Player  int // owning player index; -1 for unowned/neutral
}

// Table is the authoritative entity store: an append-only ID
// allocator, a row per live entity, and a tile occupancy index so
// "what's at (x,y)" is O(1) instead of a table scan.
type Table struct {
	nextID   EntityID
	entities map[EntityID]*Entity
	byTile   map[hexgrid.Coord]EntityID
}

// NewTable builds an empty entity table.
func NewTable() *Table {
	return &Table{
		entities: make(map[EntityID]*Entity),
		byTile:   make(map[hexgrid.Coord]EntityID),
	}
}

// Add allocates a fresh EntityID, inserts the row, and indexes it by
// tile. It does not check occupancy: if another entity is already
// indexed at pos, the tile index now points at the new entity instead.
// Callers check the tile (placement validation, GetAt) before Add.
func (t *Table) Add(typ EntityType, subType string, pos hexgrid.Coord, player int) *Entity {
	t.nextID++
	e := &Entity{
		ID:      t.nextID,
		Type:    typ,
		SubType: subType,
		Pos:     pos,
		Player:  player,
	}
	t.entities[e.ID] = e
	t.byTile[pos] = e.ID
	return e
}

// Remove deletes an entity and its tile index entry.
func (t *Table) Remove(id EntityID) {
	e, ok := t.entities[id]
	if !ok {
		return
	}
	if occupant, ok := t.byTile[e.Pos]; ok && occupant == id {
		delete(t.byTile, e.Pos)
	}
	delete(t.entities, id)
}

// Get returns the entity with the given ID, or nil if it doesn't
// exist (already removed, or never existed).
func (t *Table) Get(id EntityID) *Entity {
	return t.entities[id]
}

// GetAt returns the entity occupying a tile, or nil if empty.
func (t *Table) GetAt(pos hexgrid.Coord) *Entity {
	id, ok := t.byTile[pos]
	if !ok {
		return nil
	}
	return t.entities[id]
}

// UpdatePosition moves an entity to a new tile, maintaining the tile
// index. Used by the movement system as units step along their path.
func (t *Table) UpdatePosition(id EntityID, pos hexgrid.Coord) {
	e, ok := t.entities[id]
	if !ok {
		return
	}
	if occupant, ok := t.byTile[e.Pos]; ok && occupant == id {
		delete(t.byTile, e.Pos)
	}
	e.Pos = pos
	t.byTile[pos] = id
}

// EntitiesInRadius returns every entity within step-distance radius of
// center, used by service-area membership and construction-neighbor
// queries. Order is unspecified; callers that need determinism sort
// the result by EntityID themselves.
func (t *Table) EntitiesInRadius(center hexgrid.Coord, radius int) []*Entity {
	var out []*Entity
	for _, e := range t.entities {
		if hexgrid.StepDistance(center, e.Pos) <= radius {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of live entities.
func (t *Table) Count() int {
	return len(t.entities)
}

// All returns every live entity. Order is unspecified.
func (t *Table) All() []*Entity {
	out := make([]*Entity, 0, len(t.entities))
	for _, e := range t.entities {
		out = append(out, e)
	}
	return out
}
