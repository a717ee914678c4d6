package layout

import (
	"math"

	"github.com/1broseidon/wintile/internal/platform"
)

// GridDimensions returns the column and row count used for n windows.
// columns <= 0 selects floor(sqrt(n))+1.
func GridDimensions(n, columns int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = columns
	if cols <= 0 {
		cols = int(math.Sqrt(float64(n))) + 1
	}
	rows = (n + cols - 1) / cols
	return cols, rows
}

func computeGrid(windows []platform.Window, screen platform.Rect, opts Options) map[platform.WindowID]platform.Rect {
	positions := make(map[platform.WindowID]platform.Rect, len(windows))
	cols, rows := GridDimensions(len(windows), opts.Grid.Columns)
	if cols == 0 {
		return positions
	}

	pad := opts.Grid.Padding
	cellWidth := floorDiv(screen.Width()-pad*(cols+1), cols)
	cellHeight := floorDiv(screen.Height()-pad*(rows+1), rows)

	for i, w := range windows {
		row := i / cols
		col := i % cols

		positions[w.ID] = platform.RectXYWH(
			screen.Left+pad+col*(cellWidth+pad),
			screen.Top+pad+row*(cellHeight+pad),
			cellWidth,
			cellHeight,
		)
	}
	return positions
}

// floorDiv divides rounding toward negative infinity. b must be positive.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
