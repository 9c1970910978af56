package xwm

import (
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-framewm/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const Name = "x-framewm"

// Decoration.
const (
	BorderWidth     = 3
	BorderColor     = 0xff0000
	BackgroundColor = 0x0000ff
)

// Shortcuts.
const (
	ModPrimary   = xproto.ModMask1
	MoveButton   = xproto.ButtonIndex1
	ResizeButton = xproto.ButtonIndex3
	CloseKey     = "F4"
	CycleKey     = "Tab"
)

// ignoredMods are lock modifiers that must not stop a shortcut from firing.
var ignoredMods = []uint16{
	0,
	xproto.ModMaskLock,
	xproto.ModMask2,
	xproto.ModMaskLock | xproto.ModMask2,
}

type cursors struct {
	normal xproto.Cursor
	move   xproto.Cursor
	resize xproto.Cursor
}

type eventOrError struct {
	ev  xgb.Event
	err xgb.Error
}

// Manager frames top-level windows and handles their events. It is not safe
// for concurrent use; everything runs on the event loop.
type Manager struct {
	x       Display
	clients *Registry
	drag    *DragSession
	pending *eventOrError

	cursors   cursors
	closeKeys []xproto.Keycode
	cycleKeys []xproto.Keycode
}

func NewManager(x Display) *Manager {
	return &Manager{
		x:       x,
		clients: NewRegistry(),
	}
}

func (m *Manager) String() string {
	return "xwm.Manager"
}

// Clients returns the managed clients in cycling order.
func (m *Manager) Clients() []xproto.Window {
	return m.clients.Clients()
}

// Setup takes over the display: it fails with ErrOtherWM if another manager
// is running, then frames every visible top-level window under a server
// grab.
func (m *Manager) Setup() error {
	if err := DetectOtherWM(m.x); err != nil {
		return err
	}

	m.cursors = cursors{
		normal: m.createCursor(xcursor.LeftPtr),
		move:   m.createCursor(xcursor.Fleur),
		resize: m.createCursor(xcursor.BottomRightCorner),
	}
	if m.cursors.normal != xproto.CursorNone {
		m.x.ChangeAttributes(m.x.Root(), xproto.CwCursor, []uint32{uint32(m.cursors.normal)})
	}

	m.closeKeys = m.keycodes(CloseKey)
	m.cycleKeys = m.keycodes(CycleKey)

	if err := m.x.WithServerGrab(m.frameExisting); err != nil {
		return fmt.Errorf("failed to frame existing windows: %w", err)
	}

	if err := m.x.Announce(Name); err != nil {
		slog.Warn("Failed to announce window manager", "error", err)
	}

	return nil
}

func (m *Manager) frameExisting() error {
	windows, err := m.x.TopLevelWindows()
	if err != nil {
		return err
	}

	for _, w := range windows {
		if err := m.Frame(w, true); err != nil {
			slog.Warn("Failed to frame existing window", "window", w, "error", err)
		}
	}

	slog.Info("Framed existing windows", "count", m.clients.Len(), "top-level", len(windows))

	return nil
}

func (m *Manager) createCursor(glyph uint16) xproto.Cursor {
	cursor, err := m.x.CreateCursor(glyph)
	if err != nil {
		slog.Warn("Failed to create cursor", "glyph", glyph, "error", err)
		return xproto.CursorNone
	}
	return cursor
}

func (m *Manager) keycodes(keysym string) []xproto.Keycode {
	keycodes := m.x.Keycodes(keysym)
	if len(keycodes) == 0 {
		slog.Warn("Key is not on the keyboard, shortcut disabled", "keysym", keysym)
	}
	return keycodes
}
