package xwm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ItsNotGoodName/x-framewm/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
	"github.com/jezek/xgbutil/keybind"
	"github.com/jezek/xgbutil/xevent"
	"github.com/jezek/xgbutil/xprop"
	"github.com/jezek/xgbutil/xwindow"
)

var ErrConnection = errors.New("failed to open X display")

const (
	AtomWMProtocols    = "WM_PROTOCOLS"
	AtomWMDeleteWindow = "WM_DELETE_WINDOW"
	AtomWake           = "_X_FRAMEWM_WAKE"
)

var _ Display = (*Session)(nil)

// Session is a live connection to an X server.
type Session struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window

	// support is an unmapped window owned by the manager. It is the EWMH
	// supporting window and the target of wake messages. It is created on
	// first use so a session that finds another manager running creates nothing.
	support     xproto.Window
	supportErr  error
	supportOnce sync.Once

	wmProtocols xproto.Atom
	wake        xproto.Atom

	closeOnce sync.Once
}

// OpenSession connects to display, or to $DISPLAY when display is empty.
func OpenSession(display string) (*Session, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrConnection, display, err)
	}

	s := &Session{
		xu:     xu,
		conn:   xu.Conn(),
		screen: xu.Screen(),
		root:   xu.RootWin(),
	}

	// xprop caches interned atoms, so closing a window later costs no round
	// trip for them.
	s.wmProtocols, err = xprop.Atm(xu, AtomWMProtocols)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to intern %s: %w", AtomWMProtocols, err)
	}
	if _, err := xprop.Atm(xu, AtomWMDeleteWindow); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to intern %s: %w", AtomWMDeleteWindow, err)
	}
	s.wake, err = xprop.Atm(xu, AtomWake)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to intern %s: %w", AtomWake, err)
	}

	keybind.Initialize(xu)

	return s, nil
}

func (s *Session) Root() xproto.Window {
	return s.root
}

func (s *Session) WaitForEvent() (xgb.Event, xgb.Error) {
	return s.conn.WaitForEvent()
}

func (s *Session) PollForEvent() (xgb.Event, xgb.Error) {
	return s.conn.PollForEvent()
}

// Wake makes a blocked WaitForEvent return by sending a client message to
// the supporting window. It may be called from any goroutine.
func (s *Session) Wake() error {
	support, err := s.supportWindow()
	if err != nil {
		return err
	}

	cm, err := xevent.NewClientMessage(32, support, s.wake)
	if err != nil {
		return err
	}

	// Events sent with an empty mask go to the window's creator, which is us.
	return xproto.SendEventChecked(s.conn, false, support, xproto.EventMaskNoEvent, string(cm.Bytes())).Check()
}

// Close disconnects from the server. Only the first call has an effect.
func (s *Session) Close() {
	s.closeOnce.Do(s.conn.Close)
}

func (s *Session) SelectInput(w xproto.Window, mask uint32) error {
	return xproto.ChangeWindowAttributesChecked(s.conn, w, xproto.CwEventMask, []uint32{mask}).Check()
}

func (s *Session) ChangeAttributes(w xproto.Window, mask uint32, values []uint32) {
	xproto.ChangeWindowAttributes(s.conn, w, mask, values)
}

func (s *Session) Sync() {
	s.xu.Sync()
}

// WithServerGrab runs fn while holding a server grab. The grab is released on
// every return path, panics included.
func (s *Session) WithServerGrab(fn func() error) error {
	if err := xproto.GrabServerChecked(s.conn).Check(); err != nil {
		return fmt.Errorf("failed to grab server: %w", err)
	}
	defer xproto.UngrabServer(s.conn)

	return fn()
}

func (s *Session) TopLevelWindows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(s.conn, s.root).Reply()
	if err != nil {
		return nil, err
	}
	return tree.Children, nil
}

func (s *Session) Attributes(w xproto.Window) (*xproto.GetWindowAttributesReply, error) {
	return xproto.GetWindowAttributes(s.conn, w).Reply()
}

func (s *Session) Geometry(w xproto.Window) (Geometry, error) {
	reply, err := xproto.GetGeometry(s.conn, xproto.Drawable(w)).Reply()
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		X:      reply.X,
		Y:      reply.Y,
		Width:  reply.Width,
		Height: reply.Height,
	}, nil
}

func (s *Session) CreateFrame(g Geometry, borderWidth uint16, borderColor, background uint32) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(s.conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.CreateWindowChecked(s.conn, s.screen.RootDepth,
		wid, s.root,
		g.X, g.Y, g.Width, g.Height, borderWidth,
		xproto.WindowClassInputOutput, s.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwBorderPixel, // 1, 2
		[]uint32{
			background,  // 1
			borderColor, // 2
		}).Check(); err != nil {
		return 0, err
	}

	return wid, nil
}

func (s *Session) DestroyWindow(w xproto.Window) {
	xproto.DestroyWindow(s.conn, w)
}

func (s *Session) MapWindow(w xproto.Window) {
	xproto.MapWindow(s.conn, w)
}

func (s *Session) UnmapWindow(w xproto.Window) {
	xproto.UnmapWindow(s.conn, w)
}

func (s *Session) Reparent(w, parent xproto.Window, x, y int16) {
	xproto.ReparentWindow(s.conn, w, parent, x, y)
}

func (s *Session) ChangeSaveSet(w xproto.Window, mode byte) {
	xproto.ChangeSaveSet(s.conn, mode, w)
}

func (s *Session) Configure(w xproto.Window, mask uint16, values []uint32) {
	xproto.ConfigureWindow(s.conn, w, mask, values)
}

func (s *Session) CreateCursor(glyph uint16) (xproto.Cursor, error) {
	return xcursor.CreateCursor(s.conn, glyph)
}

func (s *Session) GrabButton(w xproto.Window, button xproto.Button, mods uint16, cursor xproto.Cursor) {
	xproto.GrabButton(s.conn, false, w,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskButtonMotion,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
		xproto.WindowNone, cursor, byte(button), mods)
}

func (s *Session) GrabKey(w xproto.Window, key xproto.Keycode, mods uint16) {
	xproto.GrabKey(s.conn, true, w, mods, key, xproto.GrabModeAsync, xproto.GrabModeAsync)
}

func (s *Session) Keycodes(keysym string) []xproto.Keycode {
	return keybind.StrToKeycodes(s.xu, keysym)
}

func (s *Session) Protocols(w xproto.Window) ([]string, error) {
	return icccm.WmProtocolsGet(s.xu, w)
}

// SendProtocol sends a WM_PROTOCOLS client message carrying the atom named
// protocol, e.g. WM_DELETE_WINDOW.
func (s *Session) SendProtocol(w xproto.Window, protocol string) error {
	atom, err := xprop.Atm(s.xu, protocol)
	if err != nil {
		return err
	}

	cm, err := xevent.NewClientMessage(32, w, s.wmProtocols, int(atom), int(xproto.TimeCurrentTime))
	if err != nil {
		return err
	}

	return xproto.SendEventChecked(s.conn, false, w, xproto.EventMaskNoEvent, string(cm.Bytes())).Check()
}

func (s *Session) KillClient(w xproto.Window) {
	xproto.KillClient(s.conn, uint32(w))
}

func (s *Session) Focus(w xproto.Window) {
	xproto.SetInputFocus(s.conn, xproto.InputFocusPointerRoot, w, xproto.TimeCurrentTime)
}

// Announce publishes the EWMH supporting window so clients can tell a
// manager is running.
func (s *Session) Announce(name string) error {
	support, err := s.supportWindow()
	if err != nil {
		return err
	}

	if err := ewmh.SupportingWmCheckSet(s.xu, s.root, support); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(s.xu, support, support); err != nil {
		return err
	}
	return ewmh.WmNameSet(s.xu, support, name)
}

func (s *Session) supportWindow() (xproto.Window, error) {
	s.supportOnce.Do(func() {
		win, err := xwindow.Create(s.xu, s.root)
		if err != nil {
			s.supportErr = fmt.Errorf("failed to create supporting window: %w", err)
			return
		}
		s.support = win.Id
	})
	return s.support, s.supportErr
}

func (s *Session) SetActiveWindow(w xproto.Window) error {
	return ewmh.ActiveWindowSet(s.xu, w)
}
