// Package construction drives the building construction phase state
// machine: phased terrain leveling with capture/interpolate/restore,
// and the on-completion unit spawn.
package construction

import (
	"math"
	"sort"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/brackwater/colonysim/engine/maplib"
	"github.com/brackwater/colonysim/engine/placement"
	"github.com/brackwater/colonysim/internal/simlog"
	"github.com/sirupsen/logrus"
)

// Phase is a building's construction stage. Poles exists only for the
// visual-state mapping (the renderer query treats it identically to
// TerrainLeveling); construction always starts in TerrainLeveling
// directly, as soon as the placement command succeeds.
type Phase uint8

const (
	PhasePoles Phase = iota
	PhaseTerrainLeveling
	PhaseConstructionRising
	PhaseCompletedRising
	PhaseCompleted
)

// Cumulative phase-start fractions and per-phase duration fractions:
// phase fractions {0.20, 0.35, 0.45}.
const (
	terrainLevelingStart     = 0.0
	terrainLevelingDuration  = 0.20
	constructionRisingStart  = 0.20
	constructionRisingDur    = 0.35
	completedRisingStart     = 0.55
	completedRisingDur       = 0.45
)

// Def is a building type's construction configuration: its footprint,
// total build duration, and the units it spawns on completion.
type Def struct {
	Footprint     placement.Footprint
	TotalDuration float64 // seconds
	SpawnUnitType string  // empty means no spawn
	SpawnCount    int
}

// CapturedTile records a footprint or cardinal-neighbor tile's
// pre-construction terrain, for interpolation and restore.
type CapturedTile struct {
	Coord          hexgrid.Coord
	OriginalType   maplib.GroundType
	OriginalHeight uint8
	IsFootprint    bool
}

// State is one building's live construction record.
type State struct {
	BuildingID      core.EntityID
	TypeName        string
	Anchor          hexgrid.Coord
	FootprintTiles  []hexgrid.Coord
	TotalDuration   float64
	ElapsedTime     float64
	Phase           Phase
	PhaseProgress   float64
	TerrainModified bool
	Captured        []CapturedTile
	TargetHeight    int
}

// VisualState is the pure, renderer-facing projection of a
// construction State, for the renderer's visual state query.
type VisualState struct {
	UseConstructionSprite bool
	VerticalProgress      float64
	IsCompleted           bool
}

// Visual maps a State to its VisualState.
func Visual(s *State) VisualState {
	switch s.Phase {
	case PhasePoles, PhaseTerrainLeveling:
		return VisualState{UseConstructionSprite: true, VerticalProgress: 0}
	case PhaseConstructionRising:
		return VisualState{UseConstructionSprite: true, VerticalProgress: s.PhaseProgress}
	case PhaseCompletedRising:
		return VisualState{UseConstructionSprite: false, VerticalProgress: s.PhaseProgress}
	default: // Completed
		return VisualState{UseConstructionSprite: false, VerticalProgress: 1, IsCompleted: true}
	}
}

// Manager tracks construction state for every building and drives the
// per-tick phase machine.
type Manager struct {
	Defs     map[string]Def
	states   map[core.EntityID]*State
	grid     *maplib.TileGrid
	entities *core.Table
	bus      *core.EventBus
	log      *logrus.Entry
}

// NewManager wires the tile grid, entity table, and event bus the
// construction system mutates and reports through.
func NewManager(defs map[string]Def, grid *maplib.TileGrid, entities *core.Table, bus *core.EventBus, logger *logrus.Logger) *Manager {
	return &Manager{
		Defs:     defs,
		states:   make(map[core.EntityID]*State),
		grid:     grid,
		entities: entities,
		bus:      bus,
		log:      simlog.Or(logger).WithField("system", "construction"),
	}
}

// Start creates a construction record for a newly placed building,
// starting directly in TerrainLeveling.
func (m *Manager) Start(buildingID core.EntityID, typeName string, anchor hexgrid.Coord) *State {
	def := m.Defs[typeName]
	s := &State{
		BuildingID:     buildingID,
		TypeName:       typeName,
		Anchor:         anchor,
		FootprintTiles: def.Footprint.AbsoluteTiles(anchor),
		TotalDuration:  def.TotalDuration,
		Phase:          PhaseTerrainLeveling,
	}
	m.states[buildingID] = s
	return s
}

// Get returns the construction state for a building, or nil if it has
// none (never under construction, or dropped by Remove). Completed
// states are kept until Remove.
func (m *Manager) Get(id core.EntityID) *State {
	return m.states[id]
}

func phaseFor(elapsedFraction float64) Phase {
	switch {
	case elapsedFraction >= 1.0:
		return PhaseCompleted
	case elapsedFraction >= completedRisingStart:
		return PhaseCompletedRising
	case elapsedFraction >= constructionRisingStart:
		return PhaseConstructionRising
	default:
		return PhaseTerrainLeveling
	}
}

func progressFor(phase Phase, elapsedFraction float64) float64 {
	var start, dur float64
	switch phase {
	case PhaseTerrainLeveling:
		start, dur = terrainLevelingStart, terrainLevelingDuration
	case PhaseConstructionRising:
		start, dur = constructionRisingStart, constructionRisingDur
	case PhaseCompletedRising:
		start, dur = completedRisingStart, completedRisingDur
	default:
		return 1.0
	}
	p := (elapsedFraction - start) / dur
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// Update advances every non-Completed building's construction state
// by dt seconds, performing terrain capture/interpolation/finalize and
// completion unit spawning. Implements core.System.
//
// Buildings are processed in id-ascending order rather than map
// iteration order: two buildings can both reach Completed in the same
// tick, and completeBuilding spawns units (allocating new entity ids),
// so an unordered scan would make replay entity-id assignment
// nondeterministic.
func (m *Manager) Update(dt float64) {
	terrainMutated := false

	ids := make([]core.EntityID, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		s := m.states[id]
		if s.Phase == PhaseCompleted {
			continue
		}
		prevPhase := s.Phase

		s.ElapsedTime += dt
		elapsedFraction := s.ElapsedTime / s.TotalDuration
		if elapsedFraction > 1 {
			elapsedFraction = 1
		}

		newPhase := phaseFor(elapsedFraction)

		if newPhase == PhaseTerrainLeveling && len(s.Captured) == 0 {
			m.captureTerrain(s)
		}

		s.Phase = newPhase
		s.PhaseProgress = progressFor(newPhase, elapsedFraction)

		if s.Phase == PhaseTerrainLeveling {
			if m.interpolateTerrain(s) {
				terrainMutated = true
			}
		}

		if prevPhase == PhaseTerrainLeveling && newPhase != PhaseTerrainLeveling && !s.TerrainModified {
			m.finalizeTerrain(s)
			s.TerrainModified = true
			terrainMutated = true
		}

		if prevPhase != PhaseCompleted && newPhase == PhaseCompleted {
			m.completeBuilding(id, s)
		}
	}

	if terrainMutated {
		m.grid.NotifyTerrainModified()
		m.bus.Emit(core.Event{Type: core.EvtTerrainModified})
	}
}

// captureTerrain snapshots the footprint and its cardinal neighbors
// before any leveling mutates them, and computes the rounded mean
// target height.
func (m *Manager) captureTerrain(s *State) {
	seen := make(map[hexgrid.Coord]bool)
	var captured []CapturedTile

	for _, t := range s.FootprintTiles {
		seen[t] = true
		captured = append(captured, CapturedTile{
			Coord:          t,
			OriginalType:   m.grid.GroundTypeAt(t.X, t.Y),
			OriginalHeight: m.grid.HeightAt(t.X, t.Y),
			IsFootprint:    true,
		})
	}
	for _, t := range s.FootprintTiles {
		for _, d := range []hexgrid.Direction{hexgrid.NE, hexgrid.E, hexgrid.SE, hexgrid.SW, hexgrid.W, hexgrid.NW} {
			n := hexgrid.Neighbor(t, d)
			if seen[n] || !m.grid.InBounds(n.X, n.Y) {
				continue
			}
			seen[n] = true
			captured = append(captured, CapturedTile{
				Coord:          n,
				OriginalType:   m.grid.GroundTypeAt(n.X, n.Y),
				OriginalHeight: m.grid.HeightAt(n.X, n.Y),
				IsFootprint:    false,
			})
		}
	}

	sum := 0
	for _, c := range captured {
		sum += int(c.OriginalHeight)
	}
	target := 0
	if len(captured) > 0 {
		target = int(math.Round(float64(sum) / float64(len(captured))))
	}

	s.Captured = captured
	s.TargetHeight = target

	m.log.WithFields(logrus.Fields{
		"building": s.BuildingID,
		"type":     s.TypeName,
	}).Info("terrain capture started")
}

// interpolateTerrain lerps each captured tile's height toward the
// target by phase_progress and paints footprint tiles with the
// construction-site ground type once progress is positive. Returns
// whether it mutated any tile.
func (m *Manager) interpolateTerrain(s *State) bool {
	mutated := false
	for _, c := range s.Captured {
		h := float64(c.OriginalHeight) + (float64(s.TargetHeight)-float64(c.OriginalHeight))*s.PhaseProgress
		rounded := uint8(math.Round(h))
		if m.grid.HeightAt(c.Coord.X, c.Coord.Y) != rounded {
			m.grid.SetHeight(c.Coord.X, c.Coord.Y, rounded)
			mutated = true
		}
		if c.IsFootprint && s.PhaseProgress > 0 && m.grid.GroundTypeAt(c.Coord.X, c.Coord.Y) != maplib.ConstructionSiteGroundType {
			m.grid.SetGroundType(c.Coord.X, c.Coord.Y, maplib.ConstructionSiteGroundType)
			mutated = true
		}
	}
	return mutated
}

// finalizeTerrain applies leveling at fraction 1.0 on transition out
// of TerrainLeveling.
func (m *Manager) finalizeTerrain(s *State) {
	for _, c := range s.Captured {
		m.grid.SetHeight(c.Coord.X, c.Coord.Y, uint8(s.TargetHeight))
	}
}

// completeBuilding emits building:completed and spawns the type's
// configured units on the nearest valid adjacent ring tiles, scanning
// ring radii 1..4 in perimeter order.
func (m *Manager) completeBuilding(id core.EntityID, s *State) {
	m.bus.Emit(core.Event{Type: core.EvtBuildingCompleted, Payload: id})
	m.log.WithFields(logrus.Fields{
		"building": id,
		"type":     s.TypeName,
	}).Info("construction completed")

	def := m.Defs[s.TypeName]
	if def.SpawnUnitType == "" || def.SpawnCount <= 0 {
		return
	}

	building := m.entities.Get(id)
	if building == nil {
		return
	}

	spawned := 0
	for radius := 1; radius <= 4 && spawned < def.SpawnCount; radius++ {
		for _, t := range hexgrid.Ring(s.Anchor, radius) {
			if spawned >= def.SpawnCount {
				break
			}
			if !m.grid.InBounds(t.X, t.Y) || !maplib.IsPassable(m.grid.GroundTypeAt(t.X, t.Y)) {
				continue
			}
			if m.entities.GetAt(t) != nil {
				continue
			}
			unit := m.entities.Add(core.EntityUnit, def.SpawnUnitType, t, building.Player)
			m.bus.Emit(core.Event{Type: core.EvtUnitSpawned, Payload: unit.ID})
			spawned++
		}
	}
}

// Remove restores captured terrain (best-effort, only while still
// under construction — a fully Completed building's terrain is left
// finalized) and drops the construction record. The command executor
// calls it directly when removing a building, before it emits
// building:removed.
func (m *Manager) Remove(id core.EntityID) {
	s, ok := m.states[id]
	if !ok {
		return
	}
	if s.Phase != PhaseCompleted {
		for _, c := range s.Captured {
			m.grid.SetGroundType(c.Coord.X, c.Coord.Y, c.OriginalType)
			m.grid.SetHeight(c.Coord.X, c.Coord.Y, c.OriginalHeight)
		}
		m.grid.NotifyTerrainModified()
	}
	delete(m.states, id)
}
