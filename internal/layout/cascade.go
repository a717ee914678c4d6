package layout

import "github.com/1broseidon/wintile/internal/platform"

const cascadeSizePercent = 70

// computeCascade offsets each window diagonally from the screen origin.
// An axis that would overflow the screen edge starts over at the origin.
func computeCascade(windows []platform.Window, screen platform.Rect, opts Options) map[platform.WindowID]platform.Rect {
	width := screen.Width() * cascadeSizePercent / 100
	height := screen.Height() * cascadeSizePercent / 100

	positions := make(map[platform.WindowID]platform.Rect, len(windows))
	for i, w := range windows {
		x := screen.Left + i*opts.Cascade.OffsetX
		y := screen.Top + i*opts.Cascade.OffsetY

		if x+width > screen.Right {
			x = screen.Left
		}
		if y+height > screen.Bottom {
			y = screen.Top
		}

		positions[w.ID] = platform.RectXYWH(x, y, width, height)
	}
	return positions
}
