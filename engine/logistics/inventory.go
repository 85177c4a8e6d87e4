package logistics

import (
	"math"
	"sort"

	"github.com/brackwater/colonysim/engine/core"
)

// SlotDef configures one material slot's capacity for a building type.
type SlotDef struct {
	Material string
	Capacity float64
}

// BuildingInventoryDef lists a building subtype's input and output
// slots.
type BuildingInventoryDef struct {
	Inputs  []SlotDef
	Outputs []SlotDef
}

type slot struct {
	capacity float64
	amount   float64
}

// Inventory holds one building's input and output slots.
type Inventory struct {
	inputs  map[string]*slot
	outputs map[string]*slot
}

// InventoryManager owns every building's slot state.
type InventoryManager struct {
	Defs   map[string]BuildingInventoryDef
	stores map[core.EntityID]*Inventory
}

// NewInventoryManager builds a manager keyed by building subtype defs.
func NewInventoryManager(defs map[string]BuildingInventoryDef) *InventoryManager {
	return &InventoryManager{Defs: defs, stores: make(map[core.EntityID]*Inventory)}
}

// CreateForBuilding allocates input/output slots for a newly placed
// building, per its type's def: placing a building additionally
// creates inventory slots per building type.
func (m *InventoryManager) CreateForBuilding(id core.EntityID, subType string) {
	def := m.Defs[subType]
	inv := &Inventory{inputs: make(map[string]*slot), outputs: make(map[string]*slot)}
	for _, d := range def.Inputs {
		inv.inputs[d.Material] = &slot{capacity: d.Capacity}
	}
	for _, d := range def.Outputs {
		inv.outputs[d.Material] = &slot{capacity: d.Capacity}
	}
	m.stores[id] = inv
}

// RemoveForBuilding drops a building's inventory entirely.
func (m *InventoryManager) RemoveForBuilding(id core.EntityID) {
	delete(m.stores, id)
}

func sanitize(n float64) float64 {
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	return n
}

// DepositInput adds up to n units of m to building b's input slot,
// returning the amount actually deposited (capped by remaining
// capacity; overflow is the caller's to handle).
func (m *InventoryManager) DepositInput(b core.EntityID, mat string, n float64) float64 {
	n = sanitize(n)
	inv, ok := m.stores[b]
	if !ok {
		return 0
	}
	s, ok := inv.inputs[mat]
	if !ok {
		return 0
	}
	room := s.capacity - s.amount
	if room <= 0 {
		return 0
	}
	deposited := math.Min(n, room)
	s.amount += deposited
	return deposited
}

// DepositOutput adds up to n units of m to building b's output slot,
// returning the amount actually deposited. Symmetric to DepositInput;
// used by whatever produces a building's output (harvesting, crafting)
// to hand goods off to the carrier network without reaching into
// inventory internals.
func (m *InventoryManager) DepositOutput(b core.EntityID, mat string, n float64) float64 {
	n = sanitize(n)
	inv, ok := m.stores[b]
	if !ok {
		return 0
	}
	s, ok := inv.outputs[mat]
	if !ok {
		return 0
	}
	room := s.capacity - s.amount
	if room <= 0 {
		return 0
	}
	deposited := math.Min(n, room)
	s.amount += deposited
	return deposited
}

// WithdrawOutput removes up to n units of m from building b's output
// slot, returning the amount actually withdrawn.
func (m *InventoryManager) WithdrawOutput(b core.EntityID, mat string, n float64) float64 {
	n = sanitize(n)
	inv, ok := m.stores[b]
	if !ok {
		return 0
	}
	s, ok := inv.outputs[mat]
	if !ok {
		return 0
	}
	withdrawn := math.Min(n, s.amount)
	s.amount -= withdrawn
	return withdrawn
}

// OutputAmount returns building b's current output amount of mat.
func (m *InventoryManager) OutputAmount(b core.EntityID, mat string) float64 {
	inv, ok := m.stores[b]
	if !ok {
		return 0
	}
	s, ok := inv.outputs[mat]
	if !ok {
		return 0
	}
	return s.amount
}

// InputAmount returns building b's current input amount of mat.
func (m *InventoryManager) InputAmount(b core.EntityID, mat string) float64 {
	inv, ok := m.stores[b]
	if !ok {
		return 0
	}
	s, ok := inv.inputs[mat]
	if !ok {
		return 0
	}
	return s.amount
}

// BuildingsWithOutput returns every building with at least min units
// of mat in its output slot, ordered by id ascending so callers that
// fold over the result (e.g. the matcher's nearest-source scan) see a
// deterministic candidate order.
func (m *InventoryManager) BuildingsWithOutput(mat string, min float64) []core.EntityID {
	var out []core.EntityID
	for id, inv := range m.stores {
		if s, ok := inv.outputs[mat]; ok && s.amount >= min {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
