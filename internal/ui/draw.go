package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/breach-planner/internal/editor"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

const (
	lineH = 14 // basicfont 7x13 plus a pixel of leading
	charW = 7
)

var (
	colGround   = color.RGBA{R: 30, G: 38, B: 30, A: 255}
	colGridLine = color.RGBA{R: 45, G: 58, B: 45, A: 255}
	colWall     = color.RGBA{R: 92, G: 92, B: 86, A: 255}
	colAttacker = color.RGBA{R: 210, G: 70, B: 70, A: 255}
	colDefender = color.RGBA{R: 70, G: 110, B: 210, A: 255}
	colDead     = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	colRoute    = color.RGBA{R: 230, G: 200, B: 60, A: 220}
	colStale    = color.RGBA{R: 150, G: 130, B: 60, A: 120}
	colPreview  = color.RGBA{R: 230, G: 200, B: 60, A: 110}
	colAdvice   = color.RGBA{R: 80, G: 220, B: 120, A: 220}
	colHover    = color.RGBA{R: 255, G: 255, B: 255, A: 60}
	colText     = color.RGBA{R: 220, G: 230, B: 220, A: 255}
	colDimText  = color.RGBA{R: 140, G: 160, B: 140, A: 255}
	colBox      = color.RGBA{R: 6, G: 10, B: 6, A: 225}
	colBoxEdge  = color.RGBA{R: 60, G: 100, B: 60, A: 180}
)

func (g *Game) drawText(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, g.face, op)
}

// drawBox draws a framed panel sized to lines and prints them.
func (g *Game) drawBox(dst *ebiten.Image, x, y int, lines []string) {
	const padX, padY = 6, 5
	maxLen := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > maxLen {
			maxLen = n
		}
	}
	w := float32(maxLen*charW + 2*padX)
	h := float32(len(lines)*lineH + 2*padY)
	vector.FillRect(dst, float32(x), float32(y), w, h, colBox, false)
	vector.StrokeRect(dst, float32(x), float32(y), w, h, 1, colBoxEdge, false)
	for i, l := range lines {
		g.drawText(dst, l, x+padX, y+padY+i*lineH, colText)
	}
}

func (g *Game) drawFrame(screen *ebiten.Image) {
	l := g.layout
	ox, oy := float32(l.offX), float32(l.offY)
	w, h := float32(l.width()), float32(l.height())
	vector.StrokeRect(screen, ox-1, oy-1, w+2, h+2, 2, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)
	vector.StrokeRect(screen, ox-3, oy-3, w+6, h+6, 1, color.RGBA{R: 40, G: 65, B: 40, A: 100}, false)
}

func (g *Game) drawGridLines(screen *ebiten.Image) {
	l := g.layout
	ox, oy := float32(l.offX), float32(l.offY)
	for c := 0; c <= l.cols; c++ {
		x := ox + float32(c*l.cell)
		vector.StrokeLine(screen, x, oy, x, oy+float32(l.height()), 1, colGridLine, false)
	}
	for r := 0; r <= l.rows; r++ {
		y := oy + float32(r*l.cell)
		vector.StrokeLine(screen, ox, y, ox+float32(l.width()), y, 1, colGridLine, false)
	}
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	l := g.layout
	grid := g.ctl.Grid()
	vector.FillRect(screen, float32(l.offX), float32(l.offY), float32(l.width()), float32(l.height()), colGround, false)
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			at := scenario.Coord{Row: r, Col: c}
			cell := grid.At(r, c)
			switch cell.Kind {
			case scenario.CellWall:
				x, y := l.origin(at)
				vector.FillRect(screen, x, y, float32(l.cell), float32(l.cell), colWall, false)
			case scenario.CellPlayer:
				g.drawActor(screen, at, cell.Orientation, colAttacker)
			case scenario.CellDefender:
				g.drawActor(screen, at, cell.Orientation, colDefender)
			}
		}
	}
	g.drawGridLines(screen)
	if g.hoverOK && g.mode == modeEdit {
		x, y := l.origin(g.hover)
		vector.FillRect(screen, x, y, float32(l.cell), float32(l.cell), colHover, false)
	}
}

// drawActor is a disc with a heading tick. Orientation 0 faces +x and
// π/2 faces down the screen.
func (g *Game) drawActor(screen *ebiten.Image, at scenario.Coord, orientation float64, c color.RGBA) {
	cx, cy := g.layout.center(at)
	r := float32(g.layout.cell) * 0.35
	vector.FillCircle(screen, cx, cy, r, c, true)
	hx := cx + float32(math.Cos(orientation))*r*1.4
	hy := cy + float32(math.Sin(orientation))*r*1.4
	vector.StrokeLine(screen, cx, cy, hx, hy, 2, color.RGBA{R: 240, G: 240, B: 240, A: 255}, true)
}

func (g *Game) drawDead(screen *ebiten.Image, at scenario.Coord) {
	x, y := g.layout.origin(at)
	in := float32(g.layout.cell) * 0.25
	s := float32(g.layout.cell)
	vector.StrokeLine(screen, x+in, y+in, x+s-in, y+s-in, 2, colDead, true)
	vector.StrokeLine(screen, x+s-in, y+in, x+in, y+s-in, 2, colDead, true)
}

// drawPath strokes origin → waypoints and marks each waypoint.
func (g *Game) drawPath(screen *ebiten.Image, origin scenario.Coord, wps []scenario.Coord, c color.RGBA) (float32, float32) {
	px, py := g.layout.center(origin)
	for i, wp := range wps {
		x, y := g.layout.center(wp)
		vector.StrokeLine(screen, px, py, x, y, 2, c, true)
		vector.FillCircle(screen, x, y, float32(g.layout.cell)*0.12, c, true)
		if g.layout.cell >= 16 {
			g.drawText(screen, fmt.Sprint(i+1), int(x)+3, int(y)-lineH, c)
		}
		px, py = x, y
	}
	return px, py
}

func (g *Game) drawRoutes(screen *ebiten.Image) {
	routes := g.ctl.Routes()
	grid := g.ctl.Grid()
	state := g.ctl.RoutingState()
	active, recording := state.Origin()

	for _, origin := range routes.Origins() {
		wps, _ := routes.Get(origin)
		c := colRoute
		if grid.At(origin.Row, origin.Col).Kind != scenario.CellPlayer {
			c = colStale
		}
		g.drawPath(screen, origin, wps, c)
	}

	if !recording {
		return
	}
	ox, oy := g.layout.origin(active)
	vector.StrokeRect(screen, ox, oy, float32(g.layout.cell), float32(g.layout.cell), 2, colRoute, false)
	if !g.hoverOK {
		return
	}
	// The active entry may have been erased; preview from the last point we know.
	from := active
	if last, ok := state.LastWaypoint(); ok {
		from = last
	}
	fx, fy := g.layout.center(from)
	tx, ty := g.layout.center(g.hover)
	vector.StrokeLine(screen, fx, fy, tx, ty, 1, colPreview, true)
}

func (g *Game) drawPlayback(screen *ebiten.Image) {
	l := g.layout
	view, ok := g.ctl.View()
	if !ok {
		return
	}
	vector.FillRect(screen, float32(l.offX), float32(l.offY), float32(l.width()), float32(l.height()), colGround, false)
	for r := 0; r < view.Rows(); r++ {
		for c := 0; c < view.Cols(); c++ {
			at := scenario.Coord{Row: r, Col: c}
			cv := view.At(r, c)
			if cv.Wall {
				x, y := l.origin(at)
				vector.FillRect(screen, x, y, float32(l.cell), float32(l.cell), colWall, false)
				continue
			}
			g.drawOccupants(screen, at, cv)
		}
	}
	g.drawGridLines(screen)

	for _, key := range g.ctl.Advice().Keys() {
		origin, err := scenario.ParseKey(key)
		if err != nil {
			continue
		}
		g.drawPath(screen, origin, g.ctl.Advice()[key], colAdvice)
	}
	g.drawTimeline(screen)
}

func (g *Game) drawOccupants(screen *ebiten.Image, at scenario.Coord, cv playback.CellView) {
	n := len(cv.Attackers) + len(cv.Defenders)
	if n == 0 {
		return
	}
	drawn := false
	for _, group := range []struct {
		es []playback.Entity
		c  color.RGBA
	}{{cv.Attackers, colAttacker}, {cv.Defenders, colDefender}} {
		for _, e := range group.es {
			if e.Alive && !drawn {
				g.drawActor(screen, at, e.Orientation, group.c)
				drawn = true
			}
		}
	}
	if !drawn {
		g.drawDead(screen, at)
	}
	if n > 1 && g.layout.cell >= 14 {
		x, y := g.layout.origin(at)
		g.drawText(screen, fmt.Sprint(n), int(x)+2, int(y), colText)
	}
}

// timelineRect is the scrub bar under the grid.
func (g *Game) timelineRect() (x, y, w, h int) {
	return g.layout.offX, g.layout.offY + g.layout.height() + 10, g.layout.width(), 10
}

// timelineIndex maps a click on the scrub bar to a tick index.
func (g *Game) timelineIndex(mx, my, n int) (int, bool) {
	x, y, w, h := g.timelineRect()
	if n == 0 || w <= 0 || mx < x || mx >= x+w || my < y || my >= y+h {
		return 0, false
	}
	return (mx - x) * n / w, true
}

func (g *Game) drawTimeline(screen *ebiten.Image) {
	cur := g.ctl.Cursor()
	if cur == nil || cur.Len() == 0 {
		return
	}
	x, y, w, h := g.timelineRect()
	vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), colBox, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, colBoxEdge, false)
	frac := 1.0
	if cur.Len() > 1 {
		frac = float64(cur.Index()) / float64(cur.Len()-1)
	}
	px := float32(x) + float32(frac)*float32(w)
	vector.FillRect(screen, float32(x), float32(y), px-float32(x), float32(h), color.RGBA{R: 60, G: 110, B: 60, A: 200}, false)
	vector.StrokeLine(screen, px, float32(y-3), px, float32(y+h+3), 2, colText, false)
}

func (g *Game) drawStatusBar(screen *ebiten.Image) {
	x := g.layout.offX
	y := g.height - hudHeight + 8
	atk := g.ctl.Params(editor.FactionAttacker)
	def := g.ctl.Params(editor.FactionDefender)

	var first string
	if g.mode == modePlayback {
		first = g.playbackStatus()
	} else {
		grid := g.ctl.Grid()
		first = fmt.Sprintf("tool %-8s grid %dx%d   routes %d", g.ctl.Tool(), grid.Rows(), grid.Cols(), g.ctl.Routes().Len())
		if g.ctl.RoutingState().Recording() {
			first += "   [recording]"
		}
	}
	if g.ctl.Busy() {
		first += fmt.Sprintf("   waiting on %s...", g.ctl.Pending())
	}
	g.drawText(screen, first, x, y, colText)
	g.drawText(screen, fmt.Sprintf("attacker V%.1f S%.1f R%.1f   defender V%.1f S%.1f R%.1f",
		atk.VisionRange, atk.SoundRadius, atk.Reaction, def.VisionRange, def.SoundRadius, def.Reaction),
		x, y+lineH, colDimText)
	g.drawText(screen, g.ctl.Status(), x, y+2*lineH, colDimText)
}

func (g *Game) playbackStatus() string {
	cur := g.ctl.Cursor()
	if cur == nil {
		return ""
	}
	snap, _ := g.ctl.Playback().Snapshot(cur.Index())
	alive := func(es []playback.Entity) int {
		n := 0
		for _, e := range es {
			if e.Alive {
				n++
			}
		}
		return n
	}
	s := fmt.Sprintf("tick %d/%d   attackers %d/%d   defenders %d/%d",
		cur.Index(), cur.Len()-1, alive(snap.Attackers), len(snap.Attackers), alive(snap.Defenders), len(snap.Defenders))
	if g.playing {
		s += "   [playing]"
	}
	return s
}

func (g *Game) drawActivityPanel(screen *ebiten.Image, panelX int) {
	panelH := g.height
	vector.FillRect(screen, float32(panelX), 0, float32(panelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)
	vector.FillRect(screen, float32(panelX), 0, float32(panelWidth), 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	g.drawText(screen, "ACTIVITY", panelX+8, 2, colText)

	entries := g.ctl.Activity().Recent()
	maxVisible := (panelH - 26) / lineH
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	maxChars := (panelWidth - 20) / charW
	y := 22
	for i, e := range entries {
		if i >= len(entries)-3 {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(panelWidth-4), lineH, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, severityColor(e.Severity), false)
		line := fmt.Sprintf("%s %s", e.At.Format("15:04:05"), e.Message)
		if r := []rune(line); len(r) > maxChars {
			line = string(r[:maxChars-1]) + "…"
		}
		g.drawText(screen, line, panelX+12, y, colText)
		y += lineH
	}
}

func severityColor(s editor.Severity) color.RGBA {
	switch s {
	case editor.SevError:
		return color.RGBA{R: 230, G: 60, B: 60, A: 255}
	case editor.SevWarn:
		return color.RGBA{R: 230, G: 180, B: 40, A: 255}
	default:
		return color.RGBA{R: 80, G: 170, B: 80, A: 255}
	}
}

func (g *Game) drawHelp(screen *ebiten.Image) {
	y := g.layout.offY + g.layout.height() - len(helpLines)*lineH - 16
	g.drawBox(screen, g.layout.offX+6, y, helpLines)
}

func (g *Game) drawInstructBox(screen *ebiten.Image) {
	lines := []string{
		"Instruction for the assistant (Enter send, Esc cancel):",
		"> " + string(g.draft) + "_",
	}
	g.drawBox(screen, g.layout.offX+20, g.layout.offY+20, lines)
}

func (g *Game) drawSummary(screen *ebiten.Image) {
	s, ok := g.ctl.Summary()
	if !ok {
		return
	}
	lines := []string{"SUMMARY", ""}
	for _, row := range s.Rows() {
		lines = append(lines, fmt.Sprintf("%-20s %s", row[0], row[1]))
	}
	g.drawBox(screen, g.layout.offX+g.layout.width()/2-110, g.layout.offY+g.layout.height()/2-60, lines)
}
