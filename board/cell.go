package board

// CellState 单元格状态（五种之一）
type CellState int

const (
	Untouched   CellState = iota // 未操作，无雷
	Flagged                      // 插旗，下方无雷
	FlaggedMine                  // 插旗，下方有雷
	Mine                         // 未插旗、未翻开，有雷
	Revealed                     // 已翻开（终态）
)

func (s CellState) String() string {
	switch s {
	case Untouched:
		return "untouched"
	case Flagged:
		return "flagged"
	case FlaggedMine:
		return "flagged-mine"
	case Mine:
		return "mine"
	case Revealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// HasMine 该状态下是否有雷
func (s CellState) HasMine() bool {
	return s == Mine || s == FlaggedMine
}

// 渲染符号
const (
	TokenHidden = "-"
	TokenFlag   = "F"
	TokenEmpty  = " "
)
