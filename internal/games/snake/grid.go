package snake

import (
	"fmt"

	"github.com/vovakirdan/snake-env/internal/core"
)

// Cell is the occupancy code of one board cell. The values are the ones
// exposed in observations.
type Cell int16

const (
	CellEmpty Cell = 0
	CellBody  Cell = 1
	CellHead  Cell = 2
	CellFood  Cell = 3
)

// MaxCell is the largest code that can appear in an observation.
const MaxCell = CellFood

// IsSnake reports whether the cell belongs to the snake.
func (c Cell) IsSnake() bool {
	return c == CellBody || c == CellHead
}

func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellBody:
		return "body"
	case CellHead:
		return "head"
	case CellFood:
		return "food"
	default:
		return fmt.Sprintf("Cell(%d)", int16(c))
	}
}

// GridView is the read-only side of a Grid.
type GridView interface {
	Size() int
	InBounds(p core.Position) bool
	Get(p core.Position) Cell
	Count(code Cell) int
}

// Grid is a fixed N×N board stored row-major in a flat slice.
type Grid struct {
	n     int
	cells []Cell
}

// NewGrid allocates an empty n×n grid.
func NewGrid(n int) *Grid {
	return &Grid{
		n:     n,
		cells: make([]Cell, n*n),
	}
}

// Size returns the side length N.
func (g *Grid) Size() int {
	return g.n
}

// InBounds reports whether p lies on the board.
func (g *Grid) InBounds(p core.Position) bool {
	return p.Row >= 0 && p.Row < g.n && p.Col >= 0 && p.Col < g.n
}

func (g *Grid) index(p core.Position) int {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("snake: position %v outside %dx%d grid", p, g.n, g.n))
	}
	return p.Row*g.n + p.Col
}

// Get returns the code at p. Panics if p is off the board.
func (g *Grid) Get(p core.Position) Cell {
	return g.cells[g.index(p)]
}

// Set writes the code at p. Panics if p is off the board.
func (g *Grid) Set(p core.Position, c Cell) {
	g.cells[g.index(p)] = c
}

// Fill writes the same code to every cell.
func (g *Grid) Fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// CellsWithCode appends every position holding code to dst, in row-major
// order, and returns the extended slice.
func (g *Grid) CellsWithCode(code Cell, dst []core.Position) []core.Position {
	for i, c := range g.cells {
		if c == code {
			dst = append(dst, core.Position{Row: i / g.n, Col: i % g.n})
		}
	}
	return dst
}

// Count returns how many cells hold code.
func (g *Grid) Count(code Cell) int {
	n := 0
	for _, c := range g.cells {
		if c == code {
			n++
		}
	}
	return n
}

// Flatten appends the row-major cell codes to dst.
func (g *Grid) Flatten(dst []int16) []int16 {
	for _, c := range g.cells {
		dst = append(dst, int16(c))
	}
	return dst
}
