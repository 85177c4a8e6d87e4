package logistics

import (
	"testing"

	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/engine/hexgrid"
	"github.com/stretchr/testify/require"
)

func setupMatchWorld(t *testing.T) (*core.Table, *InventoryManager, *ReservationManager, *ServiceAreaIndex) {
	t.Helper()
	entities := core.NewTable()
	inv := NewInventoryManager(testDefs())
	res := NewReservationManager()
	areas := NewServiceAreaIndex()
	return entities, inv, res, areas
}

func TestFindMatchPrefersNearestSufficientSupply(t *testing.T) {
	entities, inv, res, areas := setupMatchWorld(t)
	dest := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 0, Y: 0}, 0)
	near := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 2, Y: 0}, 0)
	far := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 8, Y: 0}, 0)

	inv.CreateForBuilding(dest.ID, "sawmill")
	inv.CreateForBuilding(near.ID, "sawmill")
	inv.CreateForBuilding(far.ID, "sawmill")
	inv.stores[near.ID].outputs["planks"].amount = 10
	inv.stores[far.ID].outputs["planks"].amount = 10

	areas.RegisterHub(99, hexgrid.Coord{X: 0, Y: 0}, 20, 0)

	req := &Request{ID: 1, Building: dest.ID, Material: "planks", Amount: 5}

	match := FindMatch(req, entities, inv, res, areas, DefaultMatchOptions())

	require.NotNil(t, match)
	require.Equal(t, near.ID, match.Source)
	require.Equal(t, 5.0, match.Amount)
}

func TestFindMatchPrefersFartherFullSupplyOverCloserPartial(t *testing.T) {
	entities, inv, res, areas := setupMatchWorld(t)
	dest := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 0, Y: 0}, 0)
	closePartial := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 2, Y: 0}, 0)
	fartherFull := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 3, Y: 0}, 0)

	inv.CreateForBuilding(dest.ID, "sawmill")
	inv.CreateForBuilding(closePartial.ID, "sawmill")
	inv.CreateForBuilding(fartherFull.ID, "sawmill")
	inv.stores[closePartial.ID].outputs["planks"].amount = 2
	inv.stores[fartherFull.ID].outputs["planks"].amount = 10

	areas.RegisterHub(99, hexgrid.Coord{X: 0, Y: 0}, 20, 0)

	req := &Request{ID: 1, Building: dest.ID, Material: "planks", Amount: 10}

	match := FindMatch(req, entities, inv, res, areas, DefaultMatchOptions())

	require.NotNil(t, match)
	require.Equal(t, fartherFull.ID, match.Source)
	require.Equal(t, 10.0, match.Amount)
}

func TestFindMatchReturnsNilWithNoCandidates(t *testing.T) {
	entities, inv, res, areas := setupMatchWorld(t)
	dest := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 0, Y: 0}, 0)
	inv.CreateForBuilding(dest.ID, "sawmill")

	req := &Request{ID: 1, Building: dest.ID, Material: "planks", Amount: 5}

	require.Nil(t, FindMatch(req, entities, inv, res, areas, DefaultMatchOptions()))
}

func TestFindMatchExcludesBuildingsOutsideServiceArea(t *testing.T) {
	entities, inv, res, areas := setupMatchWorld(t)
	dest := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 0, Y: 0}, 0)
	source := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 2, Y: 0}, 0)
	inv.CreateForBuilding(dest.ID, "sawmill")
	inv.CreateForBuilding(source.ID, "sawmill")
	inv.stores[source.ID].outputs["planks"].amount = 10

	req := &Request{ID: 1, Building: dest.ID, Material: "planks", Amount: 5}

	require.Nil(t, FindMatch(req, entities, inv, res, areas, DefaultMatchOptions()))
}

func TestFindMatchRespectsExistingReservations(t *testing.T) {
	entities, inv, res, areas := setupMatchWorld(t)
	dest := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 0, Y: 0}, 0)
	source := entities.Add(core.EntityBuilding, "sawmill", hexgrid.Coord{X: 2, Y: 0}, 0)
	inv.CreateForBuilding(dest.ID, "sawmill")
	inv.CreateForBuilding(source.ID, "sawmill")
	inv.stores[source.ID].outputs["planks"].amount = 5
	res.Create(source.ID, "planks", 5, 1)

	areas.RegisterHub(99, hexgrid.Coord{X: 0, Y: 0}, 20, 0)

	req := &Request{ID: 2, Building: dest.ID, Material: "planks", Amount: 5}

	require.Nil(t, FindMatch(req, entities, inv, res, areas, DefaultMatchOptions()))
}
