package logistics

import (
	"sort"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
)

// FullSupplyDistanceFactor is the default tolerance (1.5x) by which a
// full-supply candidate may be farther than the nearest candidate and
// still be preferred, to avoid multi-trip deliveries.
const FullSupplyDistanceFactor = 1.5

// MatchOptions tunes the matcher's candidate filtering.
type MatchOptions struct {
	RequireServiceArea       bool
	FullSupplyDistanceFactor float64
}

// DefaultMatchOptions returns the default matching tuning constants.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{RequireServiceArea: true, FullSupplyDistanceFactor: FullSupplyDistanceFactor}
}

// Match is a candidate supply building chosen to (partially) fulfill
// a request.
type Match struct {
	Source   core.EntityID
	Amount   float64
	Distance float64
	Hubs     []core.EntityID
}

type candidate struct {
	building  core.EntityID
	effective float64
	distance  float64
	hubs      []core.EntityID
}

// FindMatch is a pure function over the given world views: enumerate
// supply buildings, filter by effective availability and service-area
// coverage, and pick the nearest — preferring a farther full-supply
// candidate within FullSupplyDistanceFactor of the nearest, to avoid
// a multi-trip delivery.
func FindMatch(
	req *Request,
	entities *core.Table,
	inv *InventoryManager,
	res *ReservationManager,
	areas *ServiceAreaIndex,
	opts MatchOptions,
) *Match {
	dest := entities.Get(req.Building)
	if dest == nil {
		return nil
	}

	var candidates []candidate
	for _, b := range inv.BuildingsWithOutput(req.Material, 1) {
		if b == req.Building {
			continue
		}
		source := entities.Get(b)
		if source == nil {
			continue
		}
		actual := inv.OutputAmount(b, req.Material)
		effective := actual
		if res != nil {
			effective = res.AvailableAmount(b, req.Material, actual)
		}
		if effective <= 0 {
			continue
		}
		hubs := areas.HubsServingBoth(source.Pos, dest.Pos)
		if opts.RequireServiceArea && len(hubs) == 0 {
			continue
		}
		candidates = append(candidates, candidate{
			building:  b,
			effective: effective,
			distance:  hexgrid.Distance(source.Pos, dest.Pos),
			hubs:      hubs,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].building < candidates[j].building
	})

	best := candidates[0]
	factor := opts.FullSupplyDistanceFactor
	if factor <= 0 {
		factor = FullSupplyDistanceFactor
	}
	for _, c := range candidates[1:] {
		if c.distance > best.distance*factor {
			break
		}
		if c.effective >= req.Amount && best.effective < req.Amount {
			best = c
		}
	}

	amount := req.Amount
	if best.effective < amount {
		amount = best.effective
	}
	return &Match{Source: best.building, Amount: amount, Distance: best.distance, Hubs: best.hubs}
}
