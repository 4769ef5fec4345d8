package board

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oddColumns 5x5，奇数列全部是雷
func oddColumns(t *testing.T) *Board {
	t.Helper()
	layout := make([][]bool, 5)
	for y := range layout {
		layout[y] = make([]bool, 5)
		for x := range layout[y] {
			layout[y][x] = x%2 == 1
		}
	}
	b, err := FromLayout(layout)
	require.NoError(t, err)
	return b
}

func allHidden(n int) Rendering {
	r := make(Rendering, n)
	for i := range r {
		r[i] = "- - - - -"
	}
	return r
}

func minePositions(b *Board) map[Point]bool {
	out := map[Point]bool{}
	for y, row := range b.Snapshot() {
		for x, c := range row {
			if c.HasMine() {
				out[Point{x, y}] = true
			}
		}
	}
	return out
}

func TestNewRejectsBadSize(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		_, err := New(n)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "size %d", n)
	}
}

func TestNewRandomBoard(t *testing.T) {
	b, err := NewRandom(20, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 20, b.Size())
	assert.Len(t, b.Render(), 20)

	mines := len(minePositions(b))
	assert.Greater(t, mines, 0)
	assert.Less(t, mines, 400)
	for _, row := range b.Snapshot() {
		for _, c := range row {
			assert.Contains(t, []CellState{Untouched, Mine}, c)
		}
	}
}

func TestFromLayoutRejectsMalformed(t *testing.T) {
	cases := map[string][][]bool{
		"empty":      {},
		"nil row":    {nil},
		"too wide":   {{false, false, true}, {false, false, false}},
		"too tall":   {{false, true}, {false, false}, {true, true}},
		"ragged":     {{false, false}, {false}},
		"wide first": {{true, true}},
	}
	for name, layout := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := FromLayout(layout)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Nil(t, b)
		})
	}
}

func TestFromLayoutRendersHidden(t *testing.T) {
	b := oddColumns(t)
	assert.Equal(t, allHidden(5), b.Render())
	assert.Equal(t, "- - - - -\n- - - - -\n- - - - -\n- - - - -\n- - - - -\n", b.Render().String())
}

func TestFlagThenReveal(t *testing.T) {
	b := oddColumns(t)
	want := allHidden(5)

	want[2] = "- - F - -"
	assert.Equal(t, want, b.Flag(2, 2))

	want[2] = "- - F F -"
	assert.Equal(t, want, b.Flag(3, 2))

	r, boom := b.Reveal(0, 0)
	assert.False(t, boom)
	want[0] = "2 - - - -"
	assert.Equal(t, want, r)
}

func TestRevealMineDetonates(t *testing.T) {
	b := oddColumns(t)
	_, boom := b.Reveal(1, 0)
	assert.True(t, boom)
	assert.Equal(t, Revealed, b.Snapshot()[0][1])

	// 周围只有 (1,1) 一颗雷
	row := b.Render()[0]
	assert.Equal(t, "- 1 - - -", row)

	// 已翻开的格子再次翻开不会再引爆
	_, boom = b.Reveal(1, 0)
	assert.False(t, boom)
}

func TestFlagRevealedIsNoop(t *testing.T) {
	b := oddColumns(t)
	b.Reveal(0, 0)
	before := b.Render()
	after := b.Flag(0, 0)
	assert.Equal(t, before, after)
	assert.Equal(t, Revealed, b.Snapshot()[0][0])
}

func TestUnflagOtherStatesIsNoop(t *testing.T) {
	b := oddColumns(t)
	assert.Equal(t, allHidden(5), b.Unflag(2, 2))
	assert.Equal(t, allHidden(5), b.Unflag(1, 1))

	b.Reveal(0, 0)
	want := allHidden(5)
	want[0] = "2 - - - -"
	assert.Equal(t, want, b.Unflag(0, 0))
}

func TestFlagUnflagRestoresState(t *testing.T) {
	b := oddColumns(t)
	orig := b.Snapshot()
	pts := []Point{{0, 0}, {1, 2}, {3, 2}, {4, 3}}
	for _, p := range pts {
		b.Flag(p.X, p.Y)
	}
	snap := b.Snapshot()
	assert.Equal(t, Flagged, snap[0][0])
	assert.Equal(t, FlaggedMine, snap[2][1])
	for _, p := range pts {
		b.Unflag(p.X, p.Y)
	}
	assert.Equal(t, orig, b.Snapshot())
	assert.Equal(t, allHidden(5), b.Render())
}

func TestFlaggedCellCannotBeRevealed(t *testing.T) {
	b := oddColumns(t)
	b.Flag(1, 1)
	_, boom := b.Reveal(1, 1)
	assert.False(t, boom)
	assert.Equal(t, FlaggedMine, b.Snapshot()[1][1])
}

func TestOutOfBoundsIsNoop(t *testing.T) {
	b := oddColumns(t)
	orig := b.Snapshot()
	for _, p := range []Point{{-1, 0}, {0, -1}, {5, 4}, {4, 5}, {6, 6}, {-7, -7}} {
		r, boom := b.Reveal(p.X, p.Y)
		assert.False(t, boom)
		assert.Equal(t, allHidden(5), r)
		assert.Equal(t, allHidden(5), b.Flag(p.X, p.Y))
		assert.Equal(t, allHidden(5), b.Unflag(p.X, p.Y))
	}
	assert.Equal(t, orig, b.Snapshot())
}

func TestCascadeStopsAtNumbers(t *testing.T) {
	// 唯一的雷在右下角
	layout := make([][]bool, 4)
	for y := range layout {
		layout[y] = make([]bool, 4)
	}
	layout[3][3] = true
	b, err := FromLayout(layout)
	require.NoError(t, err)

	r, boom := b.Reveal(0, 0)
	assert.False(t, boom)
	assert.Equal(t, Rendering{
		"       ",
		"       ",
		"    1 1",
		"    1 -",
	}, r)
}

func TestCascadeDoesNotCrossFlags(t *testing.T) {
	layout := make([][]bool, 3)
	for y := range layout {
		layout[y] = make([]bool, 3)
	}
	b, err := FromLayout(layout)
	require.NoError(t, err)

	b.Flag(2, 2)
	r, _ := b.Reveal(0, 0)
	assert.Equal(t, Rendering{
		"     ",
		"     ",
		"    F",
	}, r)
	assert.Equal(t, Flagged, b.Snapshot()[2][2])
}

func TestCascadeRegionMatchesZeroComponent(t *testing.T) {
	b, err := NewRandom(30, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	start := b.Snapshot()

	// 找一个周围没有雷的安全格
	var origin *Point
	for y := 0; y < 30 && origin == nil; y++ {
		for x := 0; x < 30; x++ {
			if start[y][x] == Untouched && b.countLocked(x, y) == 0 {
				origin = &Point{x, y}
				break
			}
		}
	}
	require.NotNil(t, origin, "seed produced no zero cell")

	b.Reveal(origin.X, origin.Y)
	after := b.Snapshot()

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			if after[y][x] != Revealed {
				continue
			}
			assert.False(t, start[y][x].HasMine(), "mine revealed at %d,%d", x, y)
			if b.countLocked(x, y) != 0 {
				continue
			}
			// 0 格的所有邻居都必须已翻开
			b.eachNeighbor(x, y, func(nx, ny int) {
				assert.Equal(t, Revealed, after[ny][nx], "neighbor %d,%d of zero cell %d,%d", nx, ny, x, y)
			})
		}
	}
}

func TestRevealedIsTerminal(t *testing.T) {
	b, err := NewRandom(8, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(8))

	revealed := map[Point]bool{}
	for i := 0; i < 500; i++ {
		x, y := rnd.Intn(10)-1, rnd.Intn(10)-1
		switch rnd.Intn(3) {
		case 0:
			b.Reveal(x, y)
		case 1:
			b.Flag(x, y)
		case 2:
			b.Unflag(x, y)
		}
		snap := b.Snapshot()
		for p := range revealed {
			assert.Equal(t, Revealed, snap[p.Y][p.X])
		}
		for y, row := range snap {
			for x, c := range row {
				if c == Revealed {
					revealed[Point{x, y}] = true
				}
			}
		}
	}
}

func TestFlagOpsConserveMines(t *testing.T) {
	b, err := NewRandom(10, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	mines := minePositions(b)
	rnd := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		x, y := rnd.Intn(12)-1, rnd.Intn(12)-1
		if rnd.Intn(2) == 0 {
			b.Flag(x, y)
		} else {
			b.Unflag(x, y)
		}
	}
	assert.Equal(t, mines, minePositions(b))
}

func TestRenderIsStable(t *testing.T) {
	b, err := NewRandom(12, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b.Reveal(6, 6)
	b.Flag(0, 0)
	assert.Equal(t, b.Render(), b.Render())
}

func TestPlayerCounter(t *testing.T) {
	b := oddColumns(t)
	assert.Equal(t, 1, b.PlayerJoin())
	assert.Equal(t, 2, b.PlayerJoin())
	b.PlayerLeave()
	assert.Equal(t, 1, b.PlayerCount())
	b.PlayerLeave()
	b.PlayerLeave()
	assert.Equal(t, 0, b.PlayerCount())
}

func TestConcurrentOperations(t *testing.T) {
	b, err := NewRandom(16, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	mines := minePositions(b)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 300; i++ {
				x, y := rnd.Intn(16), rnd.Intn(16)
				switch rnd.Intn(5) {
				case 0:
					b.Reveal(x, y)
				case 1:
					b.Flag(x, y)
				case 2:
					b.Unflag(x, y)
				case 3:
					assert.Len(t, b.Render(), 16)
				case 4:
					b.PlayerJoin()
					b.PlayerLeave()
				}
			}
		}(int64(g))
	}
	wg.Wait()

	assert.Equal(t, 0, b.PlayerCount())
	// 只有被引爆的雷会从集合中消失
	after := minePositions(b)
	snap := b.Snapshot()
	for p := range mines {
		if !after[p] {
			assert.Equal(t, Revealed, snap[p.Y][p.X])
		}
	}
	for p := range after {
		assert.True(t, mines[p], "mine appeared at %v", p)
	}
}
