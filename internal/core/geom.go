// Package core provides fundamental types and utilities for the snake environment.
// It contains no external dependencies (especially no Bubble Tea) to keep the
// simulation pure and testable.
package core

import "fmt"

// Position is a cell coordinate on the board. Row grows downwards, Col grows
// to the right.
type Position struct {
	Row, Col int
}

// NoPosition marks an empty slot or a missing cell.
var NoPosition = Position{Row: -1, Col: -1}

// Pos is shorthand for building a Position.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// Add returns the position shifted by the given offset.
func (p Position) Add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

// Valid reports whether p is not the NoPosition sentinel.
func (p Position) Valid() bool {
	return p != NoPosition
}

// Manhattan returns the taxicab distance between two positions.
func (p Position) Manhattan(q Position) int {
	return Abs(p.Row-q.Row) + Abs(p.Col-q.Col)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is a heading on the board. The numeric values match the action
// codes for the four moves.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// directionOffsets is indexed by Direction.
var directionOffsets = [...]Position{
	DirUp:    {Row: -1, Col: 0},
	DirDown:  {Row: 1, Col: 0},
	DirLeft:  {Row: 0, Col: -1},
	DirRight: {Row: 0, Col: 1},
}

// Directions lists all headings in action-code order.
var Directions = [...]Direction{DirUp, DirDown, DirLeft, DirRight}

// Offset returns the one-cell step for this direction.
func (d Direction) Offset() Position {
	return directionOffsets[d]
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// Action returns the action that steers in this direction.
func (d Direction) Action() Action {
	return Action(d)
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
