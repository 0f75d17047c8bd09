package ui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/breach-planner/internal/editor"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// toolKeys selects a tool.
var toolKeys = []struct {
	key  ebiten.Key
	tool scenario.Tool
}{
	{ebiten.Key1, scenario.ToolPlayer},
	{ebiten.Key2, scenario.ToolDefender},
	{ebiten.Key3, scenario.ToolWall},
	{ebiten.Key4, scenario.ToolEraser},
	{ebiten.Key5, scenario.ToolRouter},
}

// paramKey nudges one parameter. Holding Shift targets the defenders.
type paramKey struct {
	key   ebiten.Key
	field scenario.ParamField
	steps int
}

var paramKeys = []paramKey{
	{ebiten.KeyQ, scenario.FieldVisionRange, +1},
	{ebiten.KeyA, scenario.FieldVisionRange, -1},
	{ebiten.KeyW, scenario.FieldSoundRadius, +1},
	{ebiten.KeyS, scenario.FieldSoundRadius, -1},
	{ebiten.KeyE, scenario.FieldReaction, +1},
	{ebiten.KeyD, scenario.FieldReaction, -1},
}

// dimKeys grow or shrink the grid.
var dimKeys = []struct {
	key        ebiten.Key
	drow, dcol int
}{
	{ebiten.KeyBracketLeft, -1, 0},
	{ebiten.KeyBracketRight, +1, 0},
	{ebiten.KeyComma, 0, -1},
	{ebiten.KeyPeriod, 0, +1},
}

// helpLines is the key legend shown by H.
var helpLines = []string{
	"1-5 tool (player defender wall eraser router)",
	"[ ] rows   , . cols   G scatter walls",
	"Q/A vision  W/S sound  E/D reaction  (Shift = defender)",
	"Enter simulate   T instruct assistant   C copy payload",
	"playback: <- -> step  Home/End  Space play  Tab summary",
	"          A advise routes   Esc close   H help",
}

func factionFor(shift bool) editor.Faction {
	if shift {
		return editor.FactionDefender
	}
	return editor.FactionAttacker
}

// repeatPressed is edge-triggered on press, then repeats while held.
func repeatPressed(d int) bool {
	const delay, interval = 18, 3
	return d == 1 || (d >= delay && (d-delay)%interval == 0)
}
