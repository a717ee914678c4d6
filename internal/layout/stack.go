package layout

import "github.com/1broseidon/wintile/internal/platform"

const (
	stackSizePercent = 80
	stackEdgeMargin  = 50
)

// StackRect returns the rectangle shared by every stacked window.
func StackRect(screen platform.Rect, opts StackOptions) platform.Rect {
	width := opts.Width.Resolve(screen.Width(), stackSizePercent)
	height := opts.Height.Resolve(screen.Height(), stackSizePercent)

	var x, y int
	switch opts.Position {
	case AnchorCenter:
		x = screen.Left + floorDiv(screen.Width()-width, 2)
		y = screen.Top + floorDiv(screen.Height()-height, 2)
	case AnchorRight:
		x = screen.Right - width - stackEdgeMargin
		y = screen.Top + stackEdgeMargin
	default:
		x = screen.Left + stackEdgeMargin
		y = screen.Top + stackEdgeMargin
	}
	return platform.RectXYWH(x, y, width, height)
}

func computeStack(windows []platform.Window, screen platform.Rect, opts Options) map[platform.WindowID]platform.Rect {
	rect := StackRect(screen, opts.Stack)

	positions := make(map[platform.WindowID]platform.Rect, len(windows))
	for _, w := range windows {
		positions[w.ID] = rect
	}
	return positions
}
