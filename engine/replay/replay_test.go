package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brackwater/colonysim/engine/command"
	"github.com/brackwater/colonysim/engine/core"
	"github.com/stretchr/testify/require"
)

func TestWireRoundTripEveryCommandKind(t *testing.T) {
	id := core.EntityID(42)
	commands := []command.Command{
		command.PlaceBuilding{BuildingType: "sawmill", X: 3, Y: 4, Player: 1},
		command.PlaceResource{MaterialType: "stone", Amount: 12.5, X: 5, Y: 6},
		command.SpawnUnit{UnitType: "carrier", X: 1, Y: 2, Player: 0},
		command.MoveUnit{EntityID: id, TargetX: 9, TargetY: 9},
		command.MoveSelectedUnits{TargetX: 2, TargetY: 2},
		command.Select{EntityID: &id},
		command.Select{EntityID: nil},
		command.SelectAtTile{X: 1, Y: 1, Add: true},
		command.ToggleSelection{EntityID: id},
		command.SelectArea{X1: 0, Y1: 0, X2: 5, Y2: 5},
		command.RemoveEntity{EntityID: id},
	}

	for _, cmd := range commands {
		wc := ToWire(7, cmd)
		require.Equal(t, uint64(7), wc.Tick)
		require.Equal(t, cmd, wc.ToCommand())
	}
}

func TestRecorderWritesAndLoadsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.bin")

	rec, err := NewRecorder(path)
	require.NoError(t, err)

	require.NoError(t, rec.Record(1, command.SpawnUnit{UnitType: "settler", X: 1, Y: 1, Player: 0}))
	require.NoError(t, rec.Record(1, command.MoveUnit{EntityID: 1, TargetX: 4, TargetY: 4}))
	require.NoError(t, rec.Record(2, command.RemoveEntity{EntityID: 1}))
	require.NoError(t, rec.Close())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Commands, 3)

	tick1 := loaded.CommandsForTick(1)
	require.Len(t, tick1, 2)
	require.Equal(t, KindSpawnUnit, tick1[0].Kind)
	require.Equal(t, KindMoveUnit, tick1[1].Kind)

	tick2 := loaded.CommandsForTick(2)
	require.Len(t, tick2, 1)
	require.Equal(t, KindRemoveEntity, tick2[0].Kind)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}
