package snake

import (
	"errors"
	"testing"

	"github.com/vovakirdan/snake-env/internal/core"
)

func newTestEngine(t *testing.T, size int, seed int64) *Engine {
	t.Helper()
	e, err := NewEngine(Config{Size: size, Rewards: DefaultRewards(), Seed: seed})
	if err != nil {
		t.Fatalf("NewEngine(%d) failed: %v", size, err)
	}
	return e
}

// layBody replaces the board with a snake along body (tail first, head last)
// and food at the given cell (NoPosition for none).
func layBody(e *Engine, body []core.Position, food core.Position) {
	e.grid.Fill(CellEmpty)
	e.path.Reset(body[0])
	for _, p := range body[1:] {
		e.path.Advance(p, true)
	}
	for _, p := range body {
		e.grid.Set(p, CellBody)
	}
	e.grid.Set(body[len(body)-1], CellHead)
	if food.Valid() {
		e.grid.Set(food, CellFood)
	}
	e.food = food
}

// checkInvariants verifies the board and the body agree.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	g := e.grid
	snakeCells := g.Count(CellBody) + g.Count(CellHead)
	if snakeCells != e.Len() {
		t.Fatalf("%d snake cells on the board, body length %d\n%s", snakeCells, e.Len(), e.DebugState())
	}
	if g.Count(CellHead) != 1 {
		t.Fatalf("Expected exactly one head cell, got %d\n%s", g.Count(CellHead), e.DebugState())
	}
	if g.Get(e.Head()) != CellHead {
		t.Fatalf("Head %v holds %v\n%s", e.Head(), g.Get(e.Head()), e.DebugState())
	}
	for _, p := range e.Body(nil) {
		if !g.Get(p).IsSnake() {
			t.Fatalf("Body segment %v holds %v\n%s", p, g.Get(p), e.DebugState())
		}
	}
	if e.State() == StateActive && snakeCells < g.Size()*g.Size() && g.Count(CellFood) != 1 {
		t.Fatalf("Active episode should have exactly one food cell, got %d\n%s", g.Count(CellFood), e.DebugState())
	}
}

func TestNewEngineRejectsTinyGrid(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		_, err := NewEngine(Config{Size: size, Rewards: DefaultRewards()})
		if !errors.Is(err, ErrGridTooSmall) {
			t.Errorf("NewEngine(size=%d) error = %v, expected ErrGridTooSmall", size, err)
		}
	}
}

func TestResetState(t *testing.T) {
	e := newTestEngine(t, 32, 1)

	for round := 0; round < 2; round++ {
		// Dirty the episode before resetting
		e.Step(core.ActionLeft)
		e.Step(core.ActionLeft)
		e.Reset()

		snap := e.Snapshot()
		if snap.Len != 1 {
			t.Errorf("round %d: Len = %d, expected 1", round, snap.Len)
		}
		if snap.Head != core.Pos(16, 16) {
			t.Errorf("round %d: Head = %v, expected (16,16)", round, snap.Head)
		}
		if snap.Steps != 0 || snap.Reward != 0 {
			t.Errorf("round %d: counters not zeroed: steps=%d reward=%d", round, snap.Steps, snap.Reward)
		}
		if snap.Heading != core.DirUp {
			t.Errorf("round %d: Heading = %v, expected up", round, snap.Heading)
		}
		if snap.State != StateActive || snap.Cause != CauseNone {
			t.Errorf("round %d: State = %v/%v, expected active/none", round, snap.State, snap.Cause)
		}
		if e.Grid().Count(CellFood) != 1 {
			t.Errorf("round %d: expected one food cell", round)
		}
		if e.Grid().Get(snap.Food) != CellFood {
			t.Errorf("round %d: Food() %v does not hold food", round, snap.Food)
		}
		checkInvariants(t, e)
	}
}

func TestResetCenterOddAndEven(t *testing.T) {
	tests := []struct {
		size   int
		center core.Position
	}{
		{2, core.Pos(1, 1)},
		{3, core.Pos(1, 1)},
		{8, core.Pos(4, 4)},
		{9, core.Pos(4, 4)},
	}

	for _, tc := range tests {
		e := newTestEngine(t, tc.size, 3)
		if e.Head() != tc.center {
			t.Errorf("size %d: head %v, expected %v", tc.size, e.Head(), tc.center)
		}
	}
}

func TestDeterminism(t *testing.T) {
	// Two engines with the same seed and inputs must stay identical
	e1 := newTestEngine(t, 16, 12345)
	e2 := newTestEngine(t, 16, 12345)

	actions := []core.Action{
		core.ActionNone, core.ActionLeft, core.ActionNone, core.ActionDown,
		core.ActionDown, core.ActionRight, core.ActionRight, core.ActionUp,
	}
	for i := 0; i < 60; i++ {
		a := actions[i%len(actions)]
		r1 := e1.Step(a)
		r2 := e2.Step(a)
		if r1.Reward != r2.Reward || r1.Terminated != r2.Terminated {
			t.Fatalf("step %d: results differ: %+v vs %+v", i, r1, r2)
		}
		if r1.Terminated {
			e1.Reset()
			e2.Reset()
		}
	}

	if e1.Snapshot() != e2.Snapshot() {
		t.Errorf("Snapshots differ:\n%+v\n%+v", e1.Snapshot(), e2.Snapshot())
	}
	o1 := e1.Observation(nil)
	o2 := e2.Observation(nil)
	for i := range o1 {
		if o1[i] != o2[i] {
			t.Fatalf("Observation differs at %d", i)
		}
	}
}

func TestNoneKeepsHeading(t *testing.T) {
	e := newTestEngine(t, 16, 5)
	layBody(e, []core.Position{core.Pos(8, 8)}, core.Pos(0, 0))

	e.Step(core.ActionLeft)
	e.Step(core.ActionNone)
	e.Step(core.ActionNone)

	if e.Heading() != core.DirLeft {
		t.Errorf("Heading = %v, expected left", e.Heading())
	}
	if e.Head() != core.Pos(8, 5) {
		t.Errorf("Head = %v, expected (8,5)", e.Head())
	}
}

func TestDefaultHeadingIsUp(t *testing.T) {
	e := newTestEngine(t, 8, 9)
	layBody(e, []core.Position{core.Pos(4, 4)}, core.Pos(7, 7))

	e.Step(core.ActionNone)
	if e.Head() != core.Pos(3, 4) {
		t.Errorf("Head after None from reset = %v, expected (3,4)", e.Head())
	}
}

func TestBoundaryCollision(t *testing.T) {
	const n = 32

	// Top row, action up, several columns
	for _, c := range []int{0, 1, 15, 16, 31} {
		e := newTestEngine(t, n, int64(c))
		layBody(e, []core.Position{core.Pos(0, c)}, core.Pos(n-1, n-1))

		res := e.Step(core.ActionUp)
		if !res.Terminated || res.Reward != -1 {
			t.Errorf("col %d: Step(Up) = %+v, expected termination with -1", c, res)
		}
		if e.State() != StateTerminated || res.Cause != CauseWall {
			t.Errorf("col %d: state %v cause %v, expected terminated/wall", c, e.State(), res.Cause)
		}
	}

	tests := []struct {
		name   string
		head   core.Position
		action core.Action
	}{
		{"bottom", core.Pos(n-1, 4), core.ActionDown},
		{"left", core.Pos(4, 0), core.ActionLeft},
		{"right", core.Pos(4, n-1), core.ActionRight},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, n, 1)
			layBody(e, []core.Position{tc.head}, core.Pos(10, 10))

			res := e.Step(tc.action)
			if !res.Terminated || res.Reward != -1 || res.Cause != CauseWall {
				t.Errorf("Step(%v) at %v = %+v, expected wall collision", tc.action, tc.head, res)
			}
		})
	}
}

func TestSelfCollision(t *testing.T) {
	// Tail (3,4) -> (4,4) -> (4,5) -> (5,5) -> head (5,4).
	// Up from the head lands on (4,4), two cells behind the neck.
	body := []core.Position{core.Pos(3, 4), core.Pos(4, 4), core.Pos(4, 5), core.Pos(5, 5), core.Pos(5, 4)}

	e := newTestEngine(t, 32, 11)
	layBody(e, body, core.Pos(20, 20))
	checkInvariants(t, e)

	res := e.Step(core.ActionUp)
	if !res.Terminated || res.Reward != -1 || res.Cause != CauseSelf {
		t.Fatalf("Step(Up) = %+v, expected self collision with -1", res)
	}
	if res.Summary == nil || res.Summary.Reward != -1 || res.Summary.Steps != 1 {
		t.Errorf("Summary = %+v, expected reward -1 over 1 step", res.Summary)
	}
	// The rejected move leaves the board untouched
	if e.Len() != len(body) || e.Head() != core.Pos(5, 4) {
		t.Errorf("Rejected move changed the body: len=%d head=%v", e.Len(), e.Head())
	}
	checkInvariants(t, e)
}

func TestSteeringIntoNeckCollides(t *testing.T) {
	e := newTestEngine(t, 16, 2)
	// Heading left with the neck to the right of the head
	layBody(e, []core.Position{core.Pos(5, 7), core.Pos(5, 6), core.Pos(5, 5)}, core.Pos(0, 0))

	res := e.Step(core.ActionRight)
	if !res.Terminated || res.Cause != CauseSelf || res.Reward != -1 {
		t.Errorf("Reversing into the neck = %+v, expected self collision", res)
	}
}

func TestMovingIntoTailCellCollides(t *testing.T) {
	e := newTestEngine(t, 8, 2)
	// A 2x2 loop: up from the head lands on the tail cell.
	layBody(e, []core.Position{core.Pos(2, 2), core.Pos(2, 3), core.Pos(3, 3), core.Pos(3, 2)}, core.Pos(0, 0))

	res := e.Step(core.ActionUp)
	if !res.Terminated || res.Cause != CauseSelf {
		t.Errorf("Moving into the tail cell = %+v, expected self collision", res)
	}
}

func TestPlainMoveChangesOnlyThreeCells(t *testing.T) {
	e := newTestEngine(t, 10, 4)
	body := []core.Position{core.Pos(5, 2), core.Pos(5, 3), core.Pos(5, 4)}
	layBody(e, body, core.Pos(0, 9))

	before := e.Observation(nil)
	res := e.Step(core.ActionRight)
	after := e.Observation(nil)

	if res.Terminated || res.Reward != 0 {
		t.Fatalf("Plain move = %+v, expected reward 0 and active", res)
	}

	idx := func(p core.Position) int { return p.Row*10 + p.Col }
	tail, oldHead, newHead := core.Pos(5, 2), core.Pos(5, 4), core.Pos(5, 5)

	if after[idx(tail)] != int16(CellEmpty) {
		t.Errorf("Vacated tail holds %d, expected empty", after[idx(tail)])
	}
	if after[idx(oldHead)] != int16(CellBody) {
		t.Errorf("Previous head holds %d, expected body", after[idx(oldHead)])
	}
	if after[idx(newHead)] != int16(CellHead) {
		t.Errorf("New head holds %d, expected head", after[idx(newHead)])
	}

	changed := 0
	for i := range before {
		if before[i] != after[i] {
			changed++
			if i != idx(tail) && i != idx(oldHead) && i != idx(newHead) {
				t.Errorf("Unexpected change at index %d: %d -> %d", i, before[i], after[i])
			}
		}
	}
	if changed != 3 {
		t.Errorf("Expected 3 changed cells, got %d", changed)
	}
	checkInvariants(t, e)
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name          string
		scoreOnGrowth bool
		reward        int
	}{
		{"reference reward", false, 0},
		{"score on growth", true, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rewards := DefaultRewards()
			rewards.ScoreOnGrowth = tc.scoreOnGrowth
			e, err := NewEngine(Config{Size: 12, Rewards: rewards, Seed: 222})
			if err != nil {
				t.Fatal(err)
			}
			layBody(e, []core.Position{core.Pos(7, 6), core.Pos(6, 6)}, core.Pos(5, 6))

			snakeBefore := e.Grid().Count(CellBody) + e.Grid().Count(CellHead)
			res := e.Step(core.ActionUp)

			if res.Terminated {
				t.Fatalf("Eating food should not terminate: %+v", res)
			}
			if res.Reward != tc.reward {
				t.Errorf("Reward = %d, expected %d", res.Reward, tc.reward)
			}
			if e.Len() != 3 {
				t.Errorf("Len = %d, expected 3", e.Len())
			}
			snakeAfter := e.Grid().Count(CellBody) + e.Grid().Count(CellHead)
			if snakeAfter != snakeBefore+1 {
				t.Errorf("Snake cells %d -> %d, expected +1", snakeBefore, snakeAfter)
			}
			if e.Grid().Get(core.Pos(7, 6)) != CellBody {
				t.Error("Tail should stay in place on a growth step")
			}
			food := e.Food()
			if food == core.Pos(5, 6) || e.Grid().Get(food) != CellFood {
				t.Errorf("New food %v should be a fresh food cell", food)
			}
			checkInvariants(t, e)
		})
	}
}

// cycleAction walks the 2x2 board clockwise.
func cycleAction(head core.Position) core.Action {
	switch head {
	case core.Pos(1, 1):
		return core.ActionUp
	case core.Pos(0, 1):
		return core.ActionLeft
	case core.Pos(0, 0):
		return core.ActionDown
	default:
		return core.ActionRight
	}
}

func TestWinOnSmallBoard(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		e := newTestEngine(t, 2, seed)

		var res StepResult
		for i := 0; i < 50 && !res.Terminated; i++ {
			res = e.Step(cycleAction(e.Head()))
			if !res.Terminated {
				checkInvariants(t, e)
			}
		}

		if !res.Terminated {
			t.Fatalf("seed %d: episode did not end", seed)
		}
		if res.Cause != CauseBoardFull || res.Reward != 10 {
			t.Fatalf("seed %d: final step = %+v, expected win with +10", seed, res)
		}
		if e.Len() != 4 || e.Grid().Count(CellEmpty) != 0 {
			t.Errorf("seed %d: len=%d empty=%d, expected a full board", seed, e.Len(), e.Grid().Count(CellEmpty))
		}
		if e.Food() != core.NoPosition {
			t.Errorf("seed %d: Food() = %v, expected NoPosition", seed, e.Food())
		}
		if res.Summary == nil || res.Summary.Reward != 10 {
			t.Errorf("seed %d: summary %+v, expected cumulative reward 10", seed, res.Summary)
		}
		checkInvariants(t, e)
	}
}

func TestStepAfterTermination(t *testing.T) {
	e := newTestEngine(t, 8, 6)
	layBody(e, []core.Position{core.Pos(0, 3)}, core.Pos(5, 5))

	first := e.Step(core.ActionUp)
	if !first.Terminated {
		t.Fatal("Expected termination")
	}
	snap := e.Snapshot()

	again := e.Step(core.ActionDown)
	if !again.Terminated || again.Reward != 0 || again.Cause != CauseWall {
		t.Errorf("Step after termination = %+v, expected terminated no-op", again)
	}
	if e.Snapshot() != snap {
		t.Error("Step after termination must not change the state")
	}
	if *again.Summary != *first.Summary {
		t.Errorf("Summary changed: %+v vs %+v", again.Summary, first.Summary)
	}

	e.Reset()
	if e.State() != StateActive {
		t.Error("Reset should bring the engine back to active")
	}
}

func TestInvalidActionPanics(t *testing.T) {
	e := newTestEngine(t, 8, 1)

	for _, a := range []core.Action{-1, 5, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Step(%d) should panic", int(a))
				}
			}()
			e.Step(a)
		}()
	}
}

// perimeterAction walks the border of a 4x4 board clockwise.
func perimeterAction(head core.Position) core.Action {
	switch {
	case head.Row == 0 && head.Col < 3:
		return core.ActionRight
	case head.Col == 3 && head.Row < 3:
		return core.ActionDown
	case head.Row == 3 && head.Col > 0:
		return core.ActionLeft
	default:
		return core.ActionUp
	}
}

func TestRingWrapAround(t *testing.T) {
	e := newTestEngine(t, 4, 8)
	// Food sits inside the loop and is never reached.
	layBody(e, []core.Position{core.Pos(0, 0), core.Pos(0, 1), core.Pos(0, 2)}, core.Pos(1, 1))

	for i := 0; i < 100; i++ {
		res := e.Step(perimeterAction(e.Head()))
		if res.Terminated {
			t.Fatalf("step %d: unexpected termination %+v\n%s", i, res, e.DebugState())
		}
		checkInvariants(t, e)
		if e.Len() != 3 {
			t.Fatalf("step %d: len %d, expected 3", i, e.Len())
		}
	}

	if e.path.HeadIndex() <= 2*e.path.Cap() {
		t.Errorf("Ring index %d did not pass twice the capacity %d", e.path.HeadIndex(), e.path.Cap())
	}
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	e := newTestEngine(t, 6, 77)
	actions := []core.Action{core.ActionUp, core.ActionRight, core.ActionDown, core.ActionLeft, core.ActionNone}

	// Deterministic pseudo-random action stream
	x := uint32(1)
	episodes := 0
	for i := 0; i < 5000; i++ {
		x = x*1664525 + 1013904223
		res := e.Step(actions[(x>>16)%uint32(len(actions))])
		checkInvariants(t, e)
		if res.Terminated {
			if res.Summary == nil || res.Summary.Steps != e.Snapshot().Steps {
				t.Fatalf("Summary %+v does not match snapshot", res.Summary)
			}
			episodes++
			e.Reset()
		}
	}
	if episodes == 0 {
		t.Error("Expected at least one finished episode")
	}
}

func TestObservationBounds(t *testing.T) {
	e := newTestEngine(t, 32, 3)
	obs := e.Observation(nil)

	if len(obs) != 32*32 {
		t.Fatalf("Observation length %d, expected %d", len(obs), 32*32)
	}
	for i, v := range obs {
		if v < 0 || v > int16(MaxCell) {
			t.Fatalf("Observation[%d] = %d out of [0,3]", i, v)
		}
	}

	// Reusing a buffer does not reallocate
	buf := make([]int16, 0, 32*32)
	out := e.Observation(buf)
	if &out[0] != &buf[:1][0] {
		t.Error("Observation should append into the provided buffer")
	}
}
