package playback

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
)

func openMap(rows, cols int) [][]int {
	m := make([][]int, rows)
	for i := range m {
		m[i] = make([]int, cols)
	}
	return m
}

func TestReconstructTick_PlacesInBounds(t *testing.T) {
	r := &Result{
		Map: openMap(5, 5),
		States: []TickSnapshot{{
			Attackers: []Entity{
				{ID: 1, X: 1, Y: 1, Alive: true},
				{ID: 2, X: -1, Y: 1, Alive: true},
			},
			Defenders: []Entity{},
		}},
	}
	g := ReconstructTick(r, 0)

	placed := 0
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			placed += len(g.At(row, col).Attackers)
		}
	}
	if placed != 1 {
		t.Fatalf("placed %d attackers, want 1", placed)
	}
	if got := g.At(1, 1).Attackers; len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("cell (1,1) attackers=%v", got)
	}
}

func TestReconstructTick_ClampsIndex(t *testing.T) {
	r := &Result{
		Map: openMap(5, 5),
		States: []TickSnapshot{
			{Attackers: []Entity{{X: 0, Y: 0, Alive: true}}},
			{Attackers: []Entity{{X: 4, Y: 4, Alive: true}}},
		},
	}
	if g := ReconstructTick(r, 99); g.Index != 1 || len(g.At(4, 4).Attackers) != 1 {
		t.Fatalf("index 99 should clamp to the last tick, got %d", g.Index)
	}
	if g := ReconstructTick(r, -5); g.Index != 0 || len(g.At(0, 0).Attackers) != 1 {
		t.Fatalf("negative index should clamp to 0, got %d", g.Index)
	}
}

func TestReconstructTick_NoStates(t *testing.T) {
	r := &Result{Map: openMap(6, 7)}
	g := ReconstructTick(r, 3)
	if g.Index != 0 || g.Rows() != 6 || g.Cols() != 7 {
		t.Fatalf("empty result: index=%d dims=%dx%d", g.Index, g.Rows(), g.Cols())
	}
}

func TestReconstructTick_WallPrecedence(t *testing.T) {
	m := openMap(5, 5)
	m[2][3] = 1
	r := &Result{Map: m, States: []TickSnapshot{{
		Defenders: []Entity{{X: 3, Y: 2, Alive: true, Orientation: math.Pi}},
	}}}
	c := ReconstructTick(r, 0).At(2, 3)
	if !c.Wall || c.Glyph() != '#' {
		t.Fatalf("wall cell rendered as %q", c.Glyph())
	}
	if len(c.Defenders) != 1 {
		t.Fatal("entity on a wall is still recorded, only hidden by the glyph")
	}
}

func TestReconstructTick_Idempotent(t *testing.T) {
	r := &Result{Map: openMap(5, 5), States: []TickSnapshot{{
		Attackers: []Entity{{ID: 0, X: 2, Y: 2, Alive: true}},
		Defenders: []Entity{{ID: 0, X: 2, Y: 2, Alive: false}},
	}}}
	a := ReconstructTick(r, 0)
	b := ReconstructTick(r, 0)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated reconstruction differs")
	}
	a.Cells[2][2].Attackers[0].X = 9
	if r.States[0].Attackers[0].X != 2 {
		t.Fatal("reconstruction aliases the result")
	}
}

func TestCellView_Glyph(t *testing.T) {
	cases := []struct {
		name string
		cell CellView
		want rune
	}{
		{"empty", CellView{}, '.'},
		{"dead only", CellView{Attackers: []Entity{{Alive: false}}}, 'x'},
		{"live east", CellView{Attackers: []Entity{{Alive: true}}}, '→'},
		{"live south", CellView{Defenders: []Entity{{Alive: true, Orientation: math.Pi / 2}}}, '↓'},
		{"live over dead", CellView{
			Attackers: []Entity{{Alive: false}},
			Defenders: []Entity{{Alive: true, Orientation: math.Pi}},
		}, '←'},
	}
	for _, tc := range cases {
		if got := tc.cell.Glyph(); got != tc.want {
			t.Fatalf("%s: glyph %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestHeadingArrow_Wraps(t *testing.T) {
	if HeadingArrow(-math.Pi/2) != '↑' {
		t.Fatal("-π/2 should point up")
	}
	if HeadingArrow(2*math.Pi-0.01) != '→' {
		t.Fatal("just under 2π should round to east")
	}
	if HeadingArrow(math.NaN()) != '→' {
		t.Fatal("NaN should fall back to east")
	}
}

func TestComputeSummary_TwoTicks(t *testing.T) {
	r := &Result{
		Map: openMap(5, 5),
		States: []TickSnapshot{
			{
				Attackers: []Entity{{ID: 0, Alive: true}, {ID: 1, Alive: true}, {ID: 2, Alive: true}},
				Defenders: []Entity{{ID: 0, Alive: true}, {ID: 1, Alive: true}},
			},
			{
				Attackers: []Entity{{ID: 0, Alive: true}, {ID: 1, Alive: false}, {ID: 2, Alive: true}},
				Defenders: []Entity{{ID: 0, Alive: true}, {ID: 1, Alive: true}},
			},
		},
	}
	s := ComputeSummary(r)
	want := Summary{TotalTicks: 2, InitialAttackers: 3, InitialDefenders: 2, SurvivingAttackers: 2, SurvivingDefenders: 2}
	if s != want {
		t.Fatalf("summary=%+v, want %+v", s, want)
	}
	if s.Outcome() != "Defenders Win" {
		t.Fatalf("outcome label %q", s.Outcome())
	}
}

func TestComputeSummary_Empty(t *testing.T) {
	s := ComputeSummary(&Result{Outcome: Outcome{AttackersWin: true}})
	if s != (Summary{AttackersWin: true}) {
		t.Fatalf("empty summary=%+v", s)
	}
}

func TestSummary_Format(t *testing.T) {
	out := Summary{TotalTicks: 7, AttackersWin: true, InitialAttackers: 1}.Format()
	for _, want := range []string{"Total Ticks          7", "Outcome              Attackers Win", "Surviving Defenders  0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("format missing %q:\n%s", want, out)
		}
	}
}

func TestCursor_Clamps(t *testing.T) {
	r := &Result{Map: openMap(5, 5), States: make([]TickSnapshot, 4)}
	c := NewCursor(r)
	if c.Step(-1) != 0 {
		t.Fatal("step below 0 should clamp")
	}
	if c.Step(10) != 3 || !c.AtEnd() {
		t.Fatal("step past end should clamp to last")
	}
	if c.First() != 0 || c.Last() != 3 || c.Set(2) != 2 {
		t.Fatal("first/last/set misbehave")
	}
	if c.View().Index != 2 {
		t.Fatal("view should follow the cursor")
	}

	empty := NewCursor(&Result{Map: openMap(5, 5)})
	if empty.Last() != 0 || empty.Step(1) != 0 {
		t.Fatal("empty cursor must stay at 0")
	}
}

func TestResult_DecodesBackendShape(t *testing.T) {
	raw := `{"map":[[0,1],[0,0]],"states":[{"tick":0,"attackers":[{"id":0,"x":0,"y":1,"alive":true,"score":3,"orientation":1.5}],"defenders":[]}],"outcome":{"attackers_win":false}}`
	var r Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatal(err)
	}
	if !r.IsWall(0, 1) || r.States[0].Attackers[0].Score != 3 {
		t.Fatalf("decoded %+v", r)
	}
}
