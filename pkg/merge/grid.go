package merge

import "math"

// minCellSize is the floor for the grid cell size, guarding against a
// zero or negative epsilon configuration dividing by zero.
const minCellSize = 1e-9

// grid is a uniform spatial hash bucketing vertices by cell. It supports
// the proximity queries behind endpoint welding and intersection-vertex
// deduplication. Cells are never removed; the grid lives for one
// normalization call.
//
// A radius-r query is answered by the 3x3 block around the query cell,
// which is exhaustive as long as r <= cell. The registry sizes the cell
// to the largest configured epsilon, so every query it issues is bounded.
type grid struct {
	cell  float64
	cells map[[2]int][]*vertex
}

func newGrid(cell float64) *grid {
	if cell < minCellSize {
		cell = minCellSize
	}
	return &grid{cell: cell, cells: make(map[[2]int][]*vertex)}
}

func (g *grid) cellOf(x, y float64) [2]int {
	return [2]int{int(math.Floor(x / g.cell)), int(math.Floor(y / g.cell))}
}

func (g *grid) add(v *vertex) {
	c := g.cellOf(v.x, v.y)
	g.cells[c] = append(g.cells[c], v)
}

// nearby returns every vertex in the 3x3 block of cells around (x, y),
// in insertion order per cell.
func (g *grid) nearby(x, y float64) []*vertex {
	c := g.cellOf(x, y)
	var out []*vertex
	for i := c[0] - 1; i <= c[0]+1; i++ {
		for j := c[1] - 1; j <= c[1]+1; j++ {
			out = append(out, g.cells[[2]int{i, j}]...)
		}
	}
	return out
}
