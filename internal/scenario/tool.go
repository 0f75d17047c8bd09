package scenario

import "fmt"

// Tool is the active paint mode.
type Tool uint8

const (
	ToolPlayer Tool = iota
	ToolDefender
	ToolWall
	ToolEraser
	ToolRouter
	toolCount // sentinel
)

// Tools lists every tool in toolbar order.
var Tools = [toolCount]Tool{ToolPlayer, ToolDefender, ToolWall, ToolEraser, ToolRouter}

func (t Tool) String() string {
	switch t {
	case ToolPlayer:
		return "player"
	case ToolDefender:
		return "defender"
	case ToolWall:
		return "wall"
	case ToolEraser:
		return "eraser"
	case ToolRouter:
		return "router"
	default:
		return "unknown"
	}
}

// ParseTool maps a tool name to its value.
func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if t.String() == s {
			return t, nil
		}
	}
	return ToolPlayer, fmt.Errorf("unknown tool %q", s)
}

// paintKind returns the cell kind a painting tool produces. ok is false for
// eraser and router, which never create cells.
func (t Tool) paintKind() (CellKind, bool) {
	switch t {
	case ToolPlayer:
		return CellPlayer, true
	case ToolDefender:
		return CellDefender, true
	case ToolWall:
		return CellWall, true
	default:
		return CellEmpty, false
	}
}
