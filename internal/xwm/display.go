package xwm

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Display is the part of the X protocol the manager drives. Session
// implements it against a live server.
type Display interface {
	Root() xproto.Window

	WaitForEvent() (xgb.Event, xgb.Error)
	PollForEvent() (xgb.Event, xgb.Error)
	Wake() error
	Close()

	SelectInput(w xproto.Window, mask uint32) error
	ChangeAttributes(w xproto.Window, mask uint32, values []uint32)
	Sync()
	WithServerGrab(fn func() error) error
	TopLevelWindows() ([]xproto.Window, error)

	Attributes(w xproto.Window) (*xproto.GetWindowAttributesReply, error)
	Geometry(w xproto.Window) (Geometry, error)
	CreateFrame(g Geometry, borderWidth uint16, borderColor, background uint32) (xproto.Window, error)
	DestroyWindow(w xproto.Window)
	MapWindow(w xproto.Window)
	UnmapWindow(w xproto.Window)
	Reparent(w, parent xproto.Window, x, y int16)
	ChangeSaveSet(w xproto.Window, mode byte)
	Configure(w xproto.Window, mask uint16, values []uint32)

	CreateCursor(glyph uint16) (xproto.Cursor, error)
	GrabButton(w xproto.Window, button xproto.Button, mods uint16, cursor xproto.Cursor)
	GrabKey(w xproto.Window, key xproto.Keycode, mods uint16)
	Keycodes(keysym string) []xproto.Keycode

	Protocols(w xproto.Window) ([]string, error)
	SendProtocol(w xproto.Window, protocol string) error
	KillClient(w xproto.Window)
	Focus(w xproto.Window)

	Announce(name string) error
	SetActiveWindow(w xproto.Window) error
}

type Point struct {
	X int
	Y int
}

type Geometry struct {
	X      int16
	Y      int16
	Width  uint16
	Height uint16
}
