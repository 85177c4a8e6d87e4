package maplib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTileGridAllGrassZeroHeight(t *testing.T) {
	g := NewTileGrid(4, 3)

	require.Equal(t, 12, len(g.GroundType))
	require.Equal(t, 12, len(g.GroundHeight))
	for _, gt := range g.GroundType {
		require.Equal(t, GroundGrass, gt)
	}
	for _, h := range g.GroundHeight {
		require.Equal(t, uint8(0), h)
	}
}

func TestToIndexRowMajor(t *testing.T) {
	g := NewTileGrid(5, 5)
	require.Equal(t, 0, g.ToIndex(0, 0))
	require.Equal(t, 5, g.ToIndex(0, 1))
	require.Equal(t, 7, g.ToIndex(2, 1))
}

func TestGroundTypeAtOutOfBoundsIsWater(t *testing.T) {
	g := NewTileGrid(3, 3)
	require.Equal(t, GroundWater, g.GroundTypeAt(-1, 0))
	require.Equal(t, GroundWater, g.GroundTypeAt(3, 0))
	require.Equal(t, GroundWater, g.GroundTypeAt(0, 3))
}

func TestHeightAtOutOfBoundsIsZero(t *testing.T) {
	g := NewTileGrid(3, 3)
	g.SetHeight(1, 1, 9)
	require.Equal(t, uint8(0), g.HeightAt(-1, -1))
	require.Equal(t, uint8(9), g.HeightAt(1, 1))
}

func TestSetGroundTypeAndHeightNoOpOutOfBounds(t *testing.T) {
	g := NewTileGrid(2, 2)
	g.SetGroundType(5, 5, GroundRock)
	g.SetHeight(5, 5, 7)
	require.Equal(t, GroundWater, g.GroundTypeAt(5, 5))
	require.Equal(t, uint8(0), g.HeightAt(5, 5))
}

func TestSetGroundTypeAndHeightInBounds(t *testing.T) {
	g := NewTileGrid(3, 3)
	g.SetGroundType(1, 1, GroundSand)
	g.SetHeight(1, 1, 4)
	require.Equal(t, GroundSand, g.GroundTypeAt(1, 1))
	require.Equal(t, uint8(4), g.HeightAt(1, 1))
}

func TestNewTileGridFromArraysWrapsDirectly(t *testing.T) {
	types := []GroundType{GroundGrass, GroundWater, GroundRock, GroundSand}
	heights := []uint8{1, 2, 3, 4}
	g := NewTileGridFromArrays(2, 2, types, heights)

	require.Equal(t, GroundWater, g.GroundTypeAt(1, 0))
	require.Equal(t, uint8(4), g.HeightAt(1, 1))
}

func TestIsPassable(t *testing.T) {
	require.True(t, IsPassable(GroundGrass))
	require.True(t, IsPassable(GroundSwamp))
	require.False(t, IsPassable(GroundWater))
	require.False(t, IsPassable(GroundDeepWater))
	require.False(t, IsPassable(GroundMountain))
}

func TestIsBuildable(t *testing.T) {
	require.True(t, IsBuildable(GroundGrass))
	require.True(t, IsBuildable(GroundDirt))
	require.True(t, IsBuildable(GroundConstructionSite))
	require.False(t, IsBuildable(GroundSand))
	require.False(t, IsBuildable(GroundSwamp))
}

func TestOnTerrainModifiedInvokesLatestCallback(t *testing.T) {
	g := NewTileGrid(2, 2)
	var firstCalls, secondCalls int
	g.OnTerrainModified(func() { firstCalls++ })
	g.OnTerrainModified(func() { secondCalls++ })

	g.NotifyTerrainModified()
	g.NotifyTerrainModified()

	require.Equal(t, 0, firstCalls)
	require.Equal(t, 2, secondCalls)
}

func TestNotifyTerrainModifiedNoCallbackIsNoOp(t *testing.T) {
	g := NewTileGrid(2, 2)
	require.NotPanics(t, func() { g.NotifyTerrainModified() })
}
