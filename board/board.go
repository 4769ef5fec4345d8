package board

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrInvalidConfiguration 棋盘尺寸或布局非法
var ErrInvalidConfiguration = errors.New("invalid board configuration")

// MineProbability 随机棋盘中每格为雷的概率
const MineProbability = 0.25

// Board 共享棋盘：所有公开方法持有同一把互斥锁完成整个操作。
// 公开方法之间互不调用，持锁期间只调用 *Locked 私有方法。
type Board struct {
	mu      sync.Mutex
	size    int
	cells   [][]CellState // cells[y][x]
	players int
}

// Point 棋盘坐标，X 为列，Y 为行
type Point struct {
	X, Y int
}

// Rendering 整个棋盘的文本表示，每行一个元素
type Rendering []string

// String 每行以换行结尾，无额外分隔
func (r Rendering) String() string {
	var sb strings.Builder
	for _, row := range r {
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// New 生成 size*size 的随机棋盘
func New(size int) (*Board, error) {
	return NewRandom(size, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRandom 使用给定随机源生成棋盘，便于复现
func NewRandom(size int, rnd *rand.Rand) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size %d, need at least 1", ErrInvalidConfiguration, size)
	}
	cells := make([][]CellState, size)
	for y := range cells {
		cells[y] = make([]CellState, size)
		for x := range cells[y] {
			if rnd.Float64() < MineProbability {
				cells[y][x] = Mine
			} else {
				cells[y][x] = Untouched
			}
		}
	}
	return &Board{size: size, cells: cells}, nil
}

// FromLayout 按布尔矩阵构建棋盘，layout[y][x] 为 true 表示有雷
func FromLayout(layout [][]bool) (*Board, error) {
	n := len(layout)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidConfiguration)
	}
	for y, row := range layout {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidConfiguration, y, len(row), n)
		}
	}
	cells := make([][]CellState, n)
	for y, row := range layout {
		cells[y] = make([]CellState, n)
		for x, mine := range row {
			if mine {
				cells[y][x] = Mine
			}
		}
	}
	return &Board{size: n, cells: cells}, nil
}

// Size 边长，构造后不变
func (b *Board) Size() int {
	return b.size
}

// Reveal 翻开 (x, y)。踩雷时 boom 为 true，此时该格已变为 Revealed。
// 越界或格子已插旗/已翻开时不做任何修改。
func (b *Board) Reveal(x, y int) (r Rendering, boom bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inBounds(x, y) {
		switch b.cells[y][x] {
		case Mine:
			b.cells[y][x] = Revealed
			boom = true
		case Untouched:
			b.floodLocked(x, y)
		}
	}
	return b.renderLocked(), boom
}

// Flag 插旗：Untouched -> Flagged，Mine -> FlaggedMine
func (b *Board) Flag(x, y int) Rendering {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inBounds(x, y) {
		switch b.cells[y][x] {
		case Untouched:
			b.cells[y][x] = Flagged
		case Mine:
			b.cells[y][x] = FlaggedMine
		}
	}
	return b.renderLocked()
}

// Unflag 拔旗：Flagged -> Untouched，FlaggedMine -> Mine
func (b *Board) Unflag(x, y int) Rendering {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inBounds(x, y) {
		switch b.cells[y][x] {
		case Flagged:
			b.cells[y][x] = Untouched
		case FlaggedMine:
			b.cells[y][x] = Mine
		}
	}
	return b.renderLocked()
}

// Render 只读，但同样持锁，避免读到一半的翻开结果
func (b *Board) Render() Rendering {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderLocked()
}

// Snapshot 返回所有格子状态的副本
func (b *Board) Snapshot() [][]CellState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]CellState, b.size)
	for y := range b.cells {
		out[y] = append([]CellState(nil), b.cells[y]...)
	}
	return out
}

// PlayerJoin 在线人数加一，返回包含自己在内的人数
func (b *Board) PlayerJoin() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.players++
	return b.players
}

// PlayerLeave 在线人数减一
func (b *Board) PlayerLeave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.players > 0 {
		b.players--
	}
}

// PlayerCount 当前在线人数
func (b *Board) PlayerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.players
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.size && y >= 0 && y < b.size
}

// floodLocked 用显式栈做 0 连锁展开。入栈前先标记 Revealed，
// 每格最多入栈一次，因此必然终止。
func (b *Board) floodLocked(x, y int) {
	b.cells[y][x] = Revealed
	stack := []Point{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b.countLocked(p.X, p.Y) != 0 {
			continue
		}
		b.eachNeighbor(p.X, p.Y, func(nx, ny int) {
			if b.cells[ny][nx] == Untouched {
				b.cells[ny][nx] = Revealed
				stack = append(stack, Point{nx, ny})
			}
		})
	}
}

// countLocked 周围 8 格中的雷数（Mine 与 FlaggedMine）
func (b *Board) countLocked(x, y int) int {
	n := 0
	b.eachNeighbor(x, y, func(nx, ny int) {
		if b.cells[ny][nx].HasMine() {
			n++
		}
	})
	return n
}

func (b *Board) eachNeighbor(x, y int, fn func(nx, ny int)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if b.inBounds(x+dx, y+dy) {
				fn(x+dx, y+dy)
			}
		}
	}
}

func (b *Board) renderLocked() Rendering {
	rows := make(Rendering, b.size)
	tokens := make([]string, b.size)
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			switch b.cells[y][x] {
			case Revealed:
				if n := b.countLocked(x, y); n > 0 {
					tokens[x] = strconv.Itoa(n)
				} else {
					tokens[x] = TokenEmpty
				}
			case Flagged, FlaggedMine:
				tokens[x] = TokenFlag
			default:
				tokens[x] = TokenHidden
			}
		}
		rows[y] = strings.Join(tokens, " ")
	}
	return rows
}
