// Package ui is the ebiten front end of the planner: grid editing, route
// drawing, collaborator calls and the playback overlay.
package ui

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/editor"
	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/playback"
	"github.com/Garsondee/breach-planner/internal/scenario"
)

// Services are the collaborators the planner may call. Nil members
// disable the matching key.
type Services struct {
	Simulator  collab.Simulator
	Instructor editor.Instructor
	Advisor    editor.RouteAdvisor
}

type mode uint8

const (
	modeEdit mode = iota
	modeInstruct
	modePlayback
)

// playFrames is how many frames autoplay holds each tick.
const playFrames = 6

type Game struct {
	ctx  context.Context
	ctl  *editor.Controller
	svc  Services
	face text.Face
	log  *logrus.Entry

	width  int
	height int
	layout gridLayout

	mode        mode
	draft       []rune // instruction being typed
	hover       scenario.Coord
	hoverOK     bool
	showHelp    bool
	showSummary bool
	playing     bool
	playAccum   int
	scatterSeed int64

	// shown is the result currently open in the overlay, so a new one can
	// be detected after Poll.
	shown *playback.Result
}

// New builds a planner window of width×height around ctl.
func New(ctx context.Context, ctl *editor.Controller, svc Services, width, height int, seed int64) *Game {
	g := &Game{
		ctx:         ctx,
		ctl:         ctl,
		svc:         svc,
		face:        text.NewGoXFace(basicfont.Face7x13),
		log:         logger.Component("ui"),
		width:       width,
		height:      height,
		showHelp:    true,
		scatterSeed: seed,
	}
	g.relayout()
	return g
}

// relayout refits the grid when its dimensions change. The playback
// overlay is sized to the result's map, which may differ from the grid.
func (g *Game) relayout() {
	rows, cols := g.ctl.Grid().Rows(), g.ctl.Grid().Cols()
	if p := g.ctl.Playback(); p != nil && g.mode == modePlayback {
		rows, cols = p.Rows(), p.Cols()
	}
	if g.layout.rows == rows && g.layout.cols == cols && g.layout.cell != 0 {
		return
	}
	g.layout = fitLayout(rows, cols, g.width, g.height)
}

func (g *Game) Update() error {
	if g.ctl.Poll() {
		g.onTaskDone()
	}
	g.relayout()

	x, y := ebiten.CursorPosition()
	g.hover, g.hoverOK = g.layout.cellAt(x, y)

	switch g.mode {
	case modeInstruct:
		g.handleInstructInput()
	case modePlayback:
		g.handlePlaybackInput()
	default:
		g.handleEditInput()
	}
	return nil
}

// onTaskDone opens the overlay when a fresh result arrives.
func (g *Game) onTaskDone() {
	if p := g.ctl.Playback(); p != nil && p != g.shown {
		g.shown = p
		g.mode = modePlayback
		g.playing = false
		g.showSummary = false
		g.log.WithField("ticks", len(p.States)).Debug("playback opened")
	}
}

func (g *Game) closePlayback() {
	g.ctl.ClosePlayback()
	g.shown = nil
	g.playing = false
	g.mode = modeEdit
	g.relayout()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})
	if g.mode == modePlayback {
		g.drawPlayback(screen)
	} else {
		g.drawGrid(screen)
		g.drawRoutes(screen)
	}
	g.drawFrame(screen)
	g.drawStatusBar(screen)
	g.drawActivityPanel(screen, g.width-panelWidth)
	if g.showHelp {
		g.drawHelp(screen)
	}
	if g.mode == modeInstruct {
		g.drawInstructBox(screen)
	}
	if g.mode == modePlayback && g.showSummary {
		g.drawSummary(screen)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
