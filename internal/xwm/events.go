package xwm

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/ItsNotGoodName/x-framewm/internal/xdebug"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/thejerf/suture/v4"
)

var ErrConnectionClosed = errors.New("X connection closed")

// frameConfigMask is the part of a ConfigureRequest that is mirrored onto the
// client's frame.
const frameConfigMask = xproto.ConfigWindowX |
	xproto.ConfigWindowY |
	xproto.ConfigWindowWidth |
	xproto.ConfigWindowHeight |
	xproto.ConfigWindowStackMode

// Serve runs the event loop until ctx is cancelled or the connection closes.
// On cancellation every client is unframed before Serve returns.
func (m *Manager) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		if err := m.x.Wake(); err != nil {
			slog.Error("Failed to wake event loop", "error", err)
		}
	})
	defer stop()

	for {
		ev, xerr := m.next()
		if ev == nil && xerr == nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			return errors.Join(ErrConnectionClosed, suture.ErrTerminateSupervisorTree)
		}

		if err := ctx.Err(); err != nil {
			m.Teardown()
			return err
		}

		if xerr != nil {
			LogXError(xerr)
			continue
		}

		if motion, ok := ev.(xproto.MotionNotifyEvent); ok {
			ev = m.latestMotion(motion)
		}

		slog.Debug("Received event", "event", xdebug.Event(ev))

		m.Handle(ev)
	}
}

func (m *Manager) next() (xgb.Event, xgb.Error) {
	if p := m.pending; p != nil {
		m.pending = nil
		return p.ev, p.err
	}
	return m.x.WaitForEvent()
}

// latestMotion drains queued MotionNotify events for the same window and
// returns the newest. The first event that does not match is kept for the
// next iteration.
func (m *Manager) latestMotion(ev xproto.MotionNotifyEvent) xproto.MotionNotifyEvent {
	for {
		next, xerr := m.x.PollForEvent()
		if next == nil && xerr == nil {
			return ev
		}

		if motion, ok := next.(xproto.MotionNotifyEvent); ok && xerr == nil && motion.Event == ev.Event {
			ev = motion
			continue
		}

		m.pending = &eventOrError{ev: next, err: xerr}
		return ev
	}
}

// Handle dispatches a single event.
func (m *Manager) Handle(ev xgb.Event) {
	switch ev := ev.(type) {
	case xproto.MapRequestEvent:
		m.onMapRequest(ev)
	case xproto.ConfigureRequestEvent:
		m.onConfigureRequest(ev)
	case xproto.UnmapNotifyEvent:
		m.onUnmapNotify(ev)
	case xproto.ButtonPressEvent:
		m.onButtonPress(ev)
	case xproto.ButtonReleaseEvent:
		m.drag = nil
	case xproto.MotionNotifyEvent:
		m.onMotionNotify(ev)
	case xproto.KeyPressEvent:
		m.onKeyPress(ev)
	default:
		slog.Debug("Ignored event", "event", xdebug.Dump(ev))
	}
}

func (m *Manager) onMapRequest(ev xproto.MapRequestEvent) {
	if err := m.Frame(ev.Window, false); err != nil {
		slog.Error("Failed to frame window", "window", xdebug.Window(ev.Window), "error", err)
	}
	m.x.MapWindow(ev.Window)
}

func (m *Manager) onConfigureRequest(ev xproto.ConfigureRequestEvent) {
	if frame, ok := m.clients.Lookup(ev.Window); ok {
		mask := ev.ValueMask & frameConfigMask
		if mask != 0 {
			m.x.Configure(frame, mask, configureValues(ev, mask))
		}
	}

	m.x.Configure(ev.Window, ev.ValueMask, configureValues(ev, ev.ValueMask))
}

// configureValues lists the fields of ev selected by mask in the order
// ConfigureWindow expects them.
func configureValues(ev xproto.ConfigureRequestEvent, mask uint16) []uint32 {
	var values []uint32
	if mask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(ev.X))
	}
	if mask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(ev.Y))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(ev.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	return values
}

func (m *Manager) onUnmapNotify(ev xproto.UnmapNotifyEvent) {
	if !m.clients.Contains(ev.Window) {
		return
	}

	// Reparenting a mapped window at startup unmaps it, and that notification
	// is reported on the root. Only an unmap seen through the frame comes
	// from the client.
	if ev.Event == m.x.Root() {
		slog.Debug("Ignored unmap of reparented window", "window", xdebug.Window(ev.Window))
		return
	}

	m.Unframe(ev.Window)
}

func (m *Manager) onButtonPress(ev xproto.ButtonPressEvent) {
	if ev.Detail != MoveButton && ev.Detail != ResizeButton {
		return
	}

	frame, ok := m.clients.Lookup(ev.Event)
	if !ok {
		return
	}

	geom, err := m.x.Geometry(frame)
	if err != nil {
		slog.Error("Failed to get frame geometry", "frame", xdebug.Window(frame), "error", err)
		return
	}

	m.drag = &DragSession{
		Client:     ev.Event,
		StartRoot:  Point{X: int(ev.RootX), Y: int(ev.RootY)},
		StartFrame: geom,
	}

	m.raise(frame)
}

func (m *Manager) onMotionNotify(ev xproto.MotionNotifyEvent) {
	if m.drag == nil || m.drag.Client != ev.Event {
		return
	}

	frame, ok := m.clients.Lookup(ev.Event)
	if !ok {
		return
	}

	root := Point{X: int(ev.RootX), Y: int(ev.RootY)}
	switch {
	case ev.State&xproto.ButtonMask1 != 0:
		x, y := m.drag.Move(root)
		m.x.Configure(frame, xproto.ConfigWindowX|xproto.ConfigWindowY, []uint32{uint32(x), uint32(y)})
	case ev.State&xproto.ButtonMask3 != 0:
		w, h := m.drag.Resize(root)
		mask := uint16(xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
		values := []uint32{uint32(w), uint32(h)}
		m.x.Configure(frame, mask, values)
		m.x.Configure(ev.Event, mask, values)
	}
}

func (m *Manager) onKeyPress(ev xproto.KeyPressEvent) {
	if ev.State&ModPrimary == 0 {
		return
	}

	switch {
	case slices.Contains(m.closeKeys, ev.Detail):
		m.close(ev.Event)
	case slices.Contains(m.cycleKeys, ev.Detail):
		m.cycle(ev.Event)
	}
}

// close asks client to close itself when it speaks WM_DELETE_WINDOW and
// kills its connection otherwise.
func (m *Manager) close(client xproto.Window) {
	protocols, err := m.x.Protocols(client)
	if err == nil && slices.Contains(protocols, AtomWMDeleteWindow) {
		slog.Info("Closing window", "window", xdebug.Window(client))
		if err := m.x.SendProtocol(client, AtomWMDeleteWindow); err != nil {
			slog.Error("Failed to send close request", "window", xdebug.Window(client), "error", err)
		}
		return
	}

	slog.Info("Killing window", "window", xdebug.Window(client))
	m.x.KillClient(client)
}

func (m *Manager) cycle(from xproto.Window) {
	next, ok := m.clients.Next(from)
	if !ok {
		return
	}
	frame, _ := m.clients.Lookup(next)

	m.raise(frame)
	m.x.Focus(next)
	if err := m.x.SetActiveWindow(next); err != nil {
		slog.Warn("Failed to set active window", "window", xdebug.Window(next), "error", err)
	}
}

func (m *Manager) raise(frame xproto.Window) {
	m.x.Configure(frame, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}
