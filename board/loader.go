package board

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseLayout 解析棋盘文件：
//
//	FILE    := LINE+
//	LINE    := (VAL " ")* VAL NEWLINE
//	VAL     := "0" | "1"
//	NEWLINE := "\r?\n"
//
// 返回的布局保证非空且为正方形。
func ParseLayout(r io.Reader) ([][]bool, error) {
	var layout [][]bool
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if text == "" {
			return nil, fmt.Errorf("%w: line %d is empty", ErrInvalidConfiguration, line)
		}
		vals := strings.Split(text, " ")
		row := make([]bool, len(vals))
		for i, v := range vals {
			switch v {
			case "0":
			case "1":
				row[i] = true
			default:
				return nil, fmt.Errorf("%w: line %d: bad value %q", ErrInvalidConfiguration, line, v)
			}
		}
		layout = append(layout, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	if len(layout) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidConfiguration)
	}
	for i, row := range layout {
		if len(row) != len(layout) {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrInvalidConfiguration, i+1, len(row), len(layout))
		}
	}
	return layout, nil
}

// LoadFile 从文件读取布局并构建棋盘
func LoadFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open board file: %w", err)
	}
	defer f.Close()
	layout, err := ParseLayout(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromLayout(layout)
}
