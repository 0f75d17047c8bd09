package scenario

import (
	perlin "github.com/aquilax/go-perlin"
)

// Noise field parameters for ScatterWalls.
const (
	scatterAlpha = 2.0
	scatterBeta  = 2.0
	scatterOcts  = 3
	scatterScale = 0.18 // grid cells → noise space
)

// DefaultScatterThreshold leaves roughly a fifth of the grid as wall.
const DefaultScatterThreshold = 0.18

// ScatterWalls paints walls on Empty cells where a seeded Perlin field
// exceeds threshold. Actors and existing walls are never touched, so routes
// stay valid. Returns the number of walls placed.
func (g *Grid) ScatterWalls(seed int64, threshold float64) int {
	p := perlin.NewPerlin(scatterAlpha, scatterBeta, scatterOcts, seed)
	placed := 0
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.At(r, c).Kind != CellEmpty {
				continue
			}
			v := p.Noise2D(float64(c)*scatterScale, float64(r)*scatterScale)
			if v > threshold {
				g.Set(r, c, Cell{Kind: CellWall})
				placed++
			}
		}
	}
	return placed
}
