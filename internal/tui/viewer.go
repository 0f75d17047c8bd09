// Package tui scrubs a simulation result in the terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/breach-planner/internal/playback"
)

const (
	gridTop  = 2 // header line plus a blank
	gridLeft = 1
	frameMs  = 50
	// playEvery is how many frames autoplay holds each tick.
	playEvery = 4
)

var (
	styleText     = tcell.StyleDefault
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWall     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(150, 150, 140))
	styleAttacker = tcell.StyleDefault.Foreground(tcell.NewRGBColor(220, 80, 80)).Bold(true)
	styleDefender = tcell.StyleDefault.Foreground(tcell.NewRGBColor(90, 130, 230)).Bold(true)
	styleDead     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(110, 110, 110))
	styleHeader   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

// Viewer owns the screen while a result is being inspected.
type Viewer struct {
	screen      tcell.Screen
	result      *playback.Result
	cursor      *playback.Cursor
	summary     playback.Summary
	showSummary bool
	playing     bool
	frame       int
}

// NewViewer wraps an initialised screen.
func NewViewer(screen tcell.Screen, r *playback.Result) *Viewer {
	return &Viewer{
		screen:      screen,
		result:      r,
		cursor:      playback.NewCursor(r),
		summary:     playback.ComputeSummary(r),
		showSummary: true,
	}
}

// Index returns the displayed tick index.
func (v *Viewer) Index() int { return v.cursor.Index() }

// HandleEvent applies one input event. It returns false when the viewer
// should exit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRight:
			v.step(1)
		case tcell.KeyLeft:
			v.step(-1)
		case tcell.KeyPgDn:
			v.step(10)
		case tcell.KeyPgUp:
			v.step(-10)
		case tcell.KeyHome:
			v.cursor.First()
		case tcell.KeyEnd:
			v.cursor.Last()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'l':
				v.step(1)
			case 'h':
				v.step(-1)
			case 'g':
				v.cursor.First()
			case 'G':
				v.cursor.Last()
			case 's':
				v.showSummary = !v.showSummary
			case ' ':
				if v.cursor.AtEnd() {
					v.cursor.First()
				}
				v.playing = !v.playing
				v.frame = 0
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) step(delta int) {
	v.cursor.Step(delta)
	v.playing = false
}

// Tick advances autoplay by one frame.
func (v *Viewer) Tick() {
	if !v.playing {
		return
	}
	v.frame++
	if v.frame < playEvery {
		return
	}
	v.frame = 0
	v.cursor.Step(1)
	if v.cursor.AtEnd() {
		v.playing = false
	}
}

// Draw renders the current tick.
func (v *Viewer) Draw() {
	v.screen.Clear()
	view := v.cursor.View()
	snap, _ := v.result.Snapshot(view.Index)

	header := fmt.Sprintf("tick %d/%d   attackers %d/%d   defenders %d/%d",
		view.Index, v.cursor.Len()-1,
		alive(snap.Attackers), len(snap.Attackers), alive(snap.Defenders), len(snap.Defenders))
	if v.playing {
		header += "   [playing]"
	}
	v.puts(gridLeft, 0, header, styleHeader)

	for r := 0; r < view.Rows(); r++ {
		for c := 0; c < view.Cols(); c++ {
			cv := view.At(r, c)
			v.screen.SetContent(gridLeft+c*2, gridTop+r, cv.Glyph(), nil, cellStyle(cv))
		}
	}

	if v.showSummary {
		x := gridLeft + view.Cols()*2 + 3
		v.puts(x, gridTop, "SUMMARY", styleHeader)
		for i, row := range v.summary.Rows() {
			v.puts(x, gridTop+2+i, fmt.Sprintf("%-20s %s", row[0], row[1]), styleText)
		}
	}

	footer := gridTop + view.Rows() + 1
	v.puts(gridLeft, footer, "<-/-> h/l step  PgUp/PgDn x10  g/G ends  space play  s summary  q quit", styleDim)
	v.screen.Show()
}

func (v *Viewer) puts(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Run draws and handles input until the user quits or ctx ends. The
// caller still owns the screen and must Fini it.
func (v *Viewer) Run(ctx context.Context) {
	ticker := time.NewTicker(frameMs * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || !v.HandleEvent(ev) {
				return
			}
			v.Draw()
		case <-ticker.C:
			if v.playing {
				v.Tick()
				v.Draw()
			}
		}
	}
}

func cellStyle(cv playback.CellView) tcell.Style {
	if cv.Wall {
		return styleWall
	}
	for _, e := range cv.Attackers {
		if e.Alive {
			return styleAttacker
		}
	}
	for _, e := range cv.Defenders {
		if e.Alive {
			return styleDefender
		}
	}
	if !cv.Empty() {
		return styleDead
	}
	return styleDim
}

func alive(es []playback.Entity) int {
	n := 0
	for _, e := range es {
		if e.Alive {
			n++
		}
	}
	return n
}
