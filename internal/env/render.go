package env

import (
	"fmt"

	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/games/snake"
)

const (
	hudRows   = 1
	maxCellW  = 2
	emptyRune = '·'
	fillRune  = '█'
)

// cellWidth picks how many columns one board cell occupies.
func cellWidth(screenW, n int) int {
	return core.Clamp((screenW-2)/n, 1, maxCellW)
}

// MinScreen returns the smallest screen that fits an n×n board.
func MinScreen(n int) (w, h int) {
	return n + 2, n + hudRows + 2
}

// Render draws the HUD and the board into dst.
func (e *Env) Render(dst *core.Screen) {
	dst.Clear()

	n := e.engine.Size()
	e.renderHUD(dst)

	minW, minH := MinScreen(n)
	if dst.Width() < minW || dst.Height() < minH {
		dst.DrawTextCentered(dst.Height()/2, "Window too small")
		return
	}

	cw := cellWidth(dst.Width(), n)
	boardW := n*cw + 2
	ox := (dst.Width() - boardW) / 2
	oy := hudRows

	dst.DrawBox(ox, oy, boardW, n+2, core.ColorGray)

	grid := e.engine.Grid()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			ch, color := cellGlyph(grid.Get(core.Pos(r, c)))
			for k := 0; k < cw; k++ {
				dst.SetColored(ox+1+c*cw+k, oy+1+r, ch, color)
			}
		}
	}

	if e.engine.State() == snake.StateTerminated {
		msg := "Game Over"
		if e.engine.Cause() == snake.CauseBoardFull {
			msg = "You Win!"
		}
		dst.DrawTextCentered(oy+1+n/2, msg)
	}
}

func cellGlyph(c snake.Cell) (rune, core.Color) {
	switch c {
	case snake.CellBody:
		return fillRune, core.ColorGreen
	case snake.CellHead:
		return fillRune, core.ColorBrightGreen
	case snake.CellFood:
		return fillRune, core.ColorRed
	default:
		return emptyRune, core.ColorGray
	}
}

func (e *Env) renderHUD(dst *core.Screen) {
	s := e.engine.Snapshot()
	hud := fmt.Sprintf(" %s  Reward: %d  Steps: %d  Length: %d", e.title, s.Reward, s.Steps, s.Len)
	dst.DrawText(0, 0, hud)
}
