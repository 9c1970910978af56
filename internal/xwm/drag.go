package xwm

import "github.com/jezek/xgb/xproto"

// MinFrameSize is the smallest width or height a resize produces. The server
// rejects zero-sized windows.
const MinFrameSize = 1

// DragSession is an in-progress move or resize gesture.
type DragSession struct {
	Client     xproto.Window
	StartRoot  Point
	StartFrame Geometry
}

func (d DragSession) delta(root Point) Point {
	return Point{
		X: root.X - d.StartRoot.X,
		Y: root.Y - d.StartRoot.Y,
	}
}

// Move returns the frame position for the pointer at root.
func (d DragSession) Move(root Point) (x, y int16) {
	delta := d.delta(root)
	return int16(int(d.StartFrame.X) + delta.X), int16(int(d.StartFrame.Y) + delta.Y)
}

// Resize returns the frame size for the pointer at root. The size never
// shrinks below MinFrameSize.
func (d DragSession) Resize(root Point) (width, height uint16) {
	delta := d.delta(root)
	return resizeDim(d.StartFrame.Width, delta.X), resizeDim(d.StartFrame.Height, delta.Y)
}

func resizeDim(start uint16, delta int) uint16 {
	delta = max(delta, -int(start))
	return uint16(max(int(start)+delta, MinFrameSize))
}
