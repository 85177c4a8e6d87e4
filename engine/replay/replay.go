// Package replay persists a game's command stream to disk and plays
// it back. Every command.Command the executor accepts is flattened to
// a fixed-shape WireCommand for encoding — fixed binary fields
// followed by one length-prefixed string parameter, written here to a
// file rather than a socket, since network transport itself is out of
// scope.
package replay

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/brackwater/colonysim/engine/command"
	"github.com/brackwater/colonysim/engine/core"
	"github.com/brackwater/colonysim/internal/simerr"
)

// Kind discriminates which command.Command variant a WireCommand holds.
type Kind uint8

const (
	KindPlaceBuilding Kind = iota
	KindPlaceResource
	KindSpawnUnit
	KindMoveUnit
	KindMoveSelectedUnits
	KindSelect
	KindSelectNone
	KindSelectAtTile
	KindToggleSelection
	KindSelectArea
	KindRemoveEntity
)

// WireCommand is the flat, fixed-field on-disk encoding of one
// command.Command plus the tick it was issued on. Not every field is
// meaningful for every Kind; unused fields are simply left zero.
type WireCommand struct {
	Tick     uint64
	Kind     Kind
	Player   int32
	EntityID uint32
	X, Y     int32
	X2, Y2   int32
	Amount   float64
	Add      bool
	Param    string // building/material/unit type name
}

// Encode writes one WireCommand to w in a fixed little-endian layout.
func (c *WireCommand) Encode(w io.Writer) error {
	fields := []interface{}{
		c.Tick, c.Kind, c.Player, c.EntityID,
		c.X, c.Y, c.X2, c.Y2, c.Amount, c.Add,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	paramBytes := []byte(c.Param)
	if err := binary.Write(w, binary.LittleEndian, uint16(len(paramBytes))); err != nil {
		return err
	}
	_, err := w.Write(paramBytes)
	return err
}

// Decode reads one WireCommand from r.
func (c *WireCommand) Decode(r io.Reader) error {
	fields := []interface{}{
		&c.Tick, &c.Kind, &c.Player, &c.EntityID,
		&c.X, &c.Y, &c.X2, &c.Y2, &c.Amount, &c.Add,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	var plen uint16
	if err := binary.Read(r, binary.LittleEndian, &plen); err != nil {
		return err
	}
	if plen > 0 {
		buf := make([]byte, plen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		c.Param = string(buf)
	}
	return nil
}

// ToWire flattens a command.Command into its wire form for recording.
func ToWire(tick uint64, cmd command.Command) WireCommand {
	switch c := cmd.(type) {
	case command.PlaceBuilding:
		return WireCommand{Tick: tick, Kind: KindPlaceBuilding, Player: int32(c.Player), X: int32(c.X), Y: int32(c.Y), Param: c.BuildingType}
	case command.PlaceResource:
		return WireCommand{Tick: tick, Kind: KindPlaceResource, X: int32(c.X), Y: int32(c.Y), Amount: c.Amount, Param: c.MaterialType}
	case command.SpawnUnit:
		return WireCommand{Tick: tick, Kind: KindSpawnUnit, Player: int32(c.Player), X: int32(c.X), Y: int32(c.Y), Param: c.UnitType}
	case command.MoveUnit:
		return WireCommand{Tick: tick, Kind: KindMoveUnit, EntityID: uint32(c.EntityID), X: int32(c.TargetX), Y: int32(c.TargetY)}
	case command.MoveSelectedUnits:
		return WireCommand{Tick: tick, Kind: KindMoveSelectedUnits, X: int32(c.TargetX), Y: int32(c.TargetY)}
	case command.Select:
		if c.EntityID == nil {
			return WireCommand{Tick: tick, Kind: KindSelectNone}
		}
		return WireCommand{Tick: tick, Kind: KindSelect, EntityID: uint32(*c.EntityID)}
	case command.SelectAtTile:
		return WireCommand{Tick: tick, Kind: KindSelectAtTile, X: int32(c.X), Y: int32(c.Y), Add: c.Add}
	case command.ToggleSelection:
		return WireCommand{Tick: tick, Kind: KindToggleSelection, EntityID: uint32(c.EntityID)}
	case command.SelectArea:
		return WireCommand{Tick: tick, Kind: KindSelectArea, X: int32(c.X1), Y: int32(c.Y1), X2: int32(c.X2), Y2: int32(c.Y2)}
	case command.RemoveEntity:
		return WireCommand{Tick: tick, Kind: KindRemoveEntity, EntityID: uint32(c.EntityID)}
	default:
		simerr.Raise("replay.ToWire", "unhandled command type %T", cmd)
		return WireCommand{}
	}
}

// ToCommand reconstructs the command.Command a WireCommand recorded.
func (c WireCommand) ToCommand() command.Command {
	switch c.Kind {
	case KindPlaceBuilding:
		return command.PlaceBuilding{BuildingType: c.Param, X: int(c.X), Y: int(c.Y), Player: int(c.Player)}
	case KindPlaceResource:
		return command.PlaceResource{MaterialType: c.Param, Amount: c.Amount, X: int(c.X), Y: int(c.Y)}
	case KindSpawnUnit:
		return command.SpawnUnit{UnitType: c.Param, X: int(c.X), Y: int(c.Y), Player: int(c.Player)}
	case KindMoveUnit:
		return command.MoveUnit{EntityID: core.EntityID(c.EntityID), TargetX: int(c.X), TargetY: int(c.Y)}
	case KindMoveSelectedUnits:
		return command.MoveSelectedUnits{TargetX: int(c.X), TargetY: int(c.Y)}
	case KindSelect:
		id := core.EntityID(c.EntityID)
		return command.Select{EntityID: &id}
	case KindSelectNone:
		return command.Select{EntityID: nil}
	case KindSelectAtTile:
		return command.SelectAtTile{X: int(c.X), Y: int(c.Y), Add: c.Add}
	case KindToggleSelection:
		return command.ToggleSelection{EntityID: core.EntityID(c.EntityID)}
	case KindSelectArea:
		return command.SelectArea{X1: int(c.X), Y1: int(c.Y), X2: int(c.X2), Y2: int(c.Y2)}
	case KindRemoveEntity:
		return command.RemoveEntity{EntityID: core.EntityID(c.EntityID)}
	default:
		simerr.Raise("replay.ToCommand", "unknown wire kind %d", c.Kind)
		return nil
	}
}

// Recorder appends every issued command to a file as it happens, and
// also keeps the full in-memory stream so CommandsForTick can serve a
// live scenario's deterministic-replay checks without a re-read.
type Recorder struct {
	Commands []WireCommand
	file     *os.File
	writer   *bufio.Writer
}

// NewRecorder creates (or truncates) a replay file for recording.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Recorder{file: f, writer: bufio.NewWriter(f)}, nil
}

// Record flattens and appends one command at the given tick.
func (r *Recorder) Record(tick uint64, cmd command.Command) error {
	wc := ToWire(tick, cmd)
	r.Commands = append(r.Commands, wc)
	return wc.Encode(r.writer)
}

// Close flushes and closes the underlying file.
func (r *Recorder) Close() error {
	if r.writer != nil {
		if err := r.writer.Flush(); err != nil {
			return err
		}
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Load reads every recorded command from a replay file.
func Load(path string) (*Recorder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := &Recorder{}
	reader := bufio.NewReader(f)
	for {
		var wc WireCommand
		if err := wc.Decode(reader); err != nil {
			break
		}
		r.Commands = append(r.Commands, wc)
	}
	return r, nil
}

// CommandsForTick returns every command recorded at the given tick, in
// recorded order.
func (r *Recorder) CommandsForTick(tick uint64) []WireCommand {
	var out []WireCommand
	for _, c := range r.Commands {
		if c.Tick == tick {
			out = append(out, c)
		}
	}
	return out
}
