package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/breach-planner/internal/editor"
)

func (g *Game) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.ctl.Activity().Add("ui", editor.SevWarn, msg)
	g.log.Warn(msg)
}

// handleMouse forwards press, drag and release to the controller.
func (g *Game) handleMouse() {
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		if g.hoverOK {
			g.ctl.PointerDown(g.hover.Row, g.hover.Col)
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if g.hoverOK {
			g.ctl.PointerEnter(g.hover.Row, g.hover.Col)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.ctl.PointerUp()
	}
}

func (g *Game) handleEditInput() {
	g.handleMouse()

	for _, k := range toolKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			g.ctl.SelectTool(k.tool)
		}
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for _, k := range paramKeys {
		if repeatPressed(inpututil.KeyPressDuration(k.key)) {
			g.ctl.NudgeParam(factionFor(shift), k.field, k.steps)
		}
	}

	for _, k := range dimKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			grid := g.ctl.Grid()
			g.ctl.SetDimensions(grid.Rows()+k.drow, grid.Cols()+k.dcol)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.scatterSeed++
		g.ctl.ScatterWalls(g.scatterSeed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyPayload()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.submitSimulation()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		if g.svc.Instructor == nil {
			g.warn("no assistant configured")
		} else {
			g.mode = modeInstruct
			g.draft = g.draft[:0]
		}
	}
}

func (g *Game) copyPayload() {
	b, err := g.ctl.PayloadJSON()
	if err == nil {
		err = clipboard.WriteAll(string(b))
	}
	if err != nil {
		g.warn("copy failed: %v", err)
		return
	}
	g.ctl.Activity().Add("ui", editor.SevInfo, fmt.Sprintf("payload copied (%d bytes)", len(b)))
}

func (g *Game) submitSimulation() {
	if g.svc.Simulator == nil {
		g.warn("no simulator configured")
		return
	}
	if err := g.ctl.SubmitSimulation(g.ctx, g.svc.Simulator); errors.Is(err, editor.ErrBusy) {
		g.warn("still waiting on %s", g.ctl.Pending())
	}
}

func (g *Game) handleInstructInput() {
	g.draft = ebiten.AppendInputChars(g.draft)
	if repeatPressed(inpututil.KeyPressDuration(ebiten.KeyBackspace)) && len(g.draft) > 0 {
		g.draft = g.draft[:len(g.draft)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.mode = modeEdit
		return
	}
	if !inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		return
	}
	instruction := strings.TrimSpace(string(g.draft))
	g.mode = modeEdit
	if instruction == "" {
		return
	}
	if err := g.ctl.SubmitInstruction(g.ctx, g.svc.Instructor, instruction); errors.Is(err, editor.ErrBusy) {
		g.warn("still waiting on %s", g.ctl.Pending())
	}
}

func (g *Game) handlePlaybackInput() {
	cur := g.ctl.Cursor()
	if cur == nil {
		g.mode = modeEdit
		return
	}

	if repeatPressed(inpututil.KeyPressDuration(ebiten.KeyArrowRight)) {
		g.ctl.StepTick(1)
		g.playing = false
	}
	if repeatPressed(inpututil.KeyPressDuration(ebiten.KeyArrowLeft)) {
		g.ctl.StepTick(-1)
		g.playing = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		cur.First()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnd) {
		cur.Last()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if cur.AtEnd() {
			cur.First()
		}
		g.playing = !g.playing
	}
	if g.playing {
		g.playAccum++
		if g.playAccum >= playFrames {
			g.playAccum = 0
			g.ctl.StepTick(1)
			if cur.AtEnd() {
				g.playing = false
			}
		}
	}

	// Scrub by clicking along the timeline.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if i, ok := g.timelineIndex(x, y, cur.Len()); ok {
			g.ctl.SeekTick(i)
			g.playing = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showSummary = !g.showSummary
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.requestAdvice()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.closePlayback()
	}
}

func (g *Game) requestAdvice() {
	if g.svc.Advisor == nil {
		g.warn("no route advisor configured")
		return
	}
	switch err := g.ctl.RequestAdvice(g.ctx, g.svc.Advisor); {
	case errors.Is(err, editor.ErrBusy):
		g.warn("still waiting on %s", g.ctl.Pending())
	case err != nil:
		g.warn("advice unavailable: %v", err)
	}
}
