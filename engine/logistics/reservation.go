package logistics

import (
	"math"

	"github.com/brackwater/colonysim/engine/core"
)

// Reservation is a soft hold against a building's output of one
// material, created at request assignment and released on fulfill,
// reset, cancel, or building destruction.
type Reservation struct {
	ID        int
	Building  core.EntityID
	Material  string
	Amount    float64
	RequestID int
}

type reservationKey struct {
	building core.EntityID
	material string
}

// ReservationManager tracks every active reservation, indexed both by
// id and by (building, material) for fast reserved-amount queries.
type ReservationManager struct {
	nextID int
	byID   map[int]*Reservation
	byKey  map[reservationKey][]int
}

// NewReservationManager builds an empty manager.
func NewReservationManager() *ReservationManager {
	return &ReservationManager{
		byID:  make(map[int]*Reservation),
		byKey: make(map[reservationKey][]int),
	}
}

// Create makes a new reservation and returns its id, or ok=false if
// amount is non-positive or NaN.
func (m *ReservationManager) Create(building core.EntityID, material string, amount float64, requestID int) (int, bool) {
	if math.IsNaN(amount) || amount <= 0 {
		return 0, false
	}
	m.nextID++
	id := m.nextID
	r := &Reservation{ID: id, Building: building, Material: material, Amount: amount, RequestID: requestID}
	m.byID[id] = r
	k := reservationKey{building, material}
	m.byKey[k] = append(m.byKey[k], id)
	return id, true
}

// Release removes a reservation by id. Idempotent: a second call on
// an already-released id is a no-op and returns false.
func (m *ReservationManager) Release(id int) bool {
	r, ok := m.byID[id]
	if !ok {
		return false
	}
	delete(m.byID, id)
	k := reservationKey{r.Building, r.Material}
	list := m.byKey[k]
	for i, rid := range list {
		if rid == id {
			m.byKey[k] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return true
}

// ReleaseForRequest releases every reservation tied to a request id,
// returning how many were released.
func (m *ReservationManager) ReleaseForRequest(requestID int) int {
	n := 0
	for id, r := range m.byID {
		if r.RequestID == requestID && m.Release(id) {
			n++
		}
	}
	return n
}

// ReleaseForBuilding releases every reservation at a building
// (source or destination holds are keyed only by building+material,
// so this matches holds where the building is the source), returning
// how many were released.
func (m *ReservationManager) ReleaseForBuilding(b core.EntityID) int {
	n := 0
	for id, r := range m.byID {
		if r.Building == b && m.Release(id) {
			n++
		}
	}
	return n
}

// ReservedAmount sums active reservations for (building, material).
func (m *ReservationManager) ReservedAmount(b core.EntityID, mat string) float64 {
	total := 0.0
	for _, id := range m.byKey[reservationKey{b, mat}] {
		total += m.byID[id].Amount
	}
	return total
}

// AvailableAmount returns max(0, actual - reserved).
func (m *ReservationManager) AvailableAmount(b core.EntityID, mat string, actual float64) float64 {
	avail := actual - m.ReservedAmount(b, mat)
	if avail < 0 {
		return 0
	}
	return avail
}
