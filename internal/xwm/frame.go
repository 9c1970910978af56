package xwm

import (
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-framewm/internal/xdebug"
	"github.com/jezek/xgb/xproto"
)

// Frame wraps client in a new decoration frame. Framing a managed client does
// nothing. A preExisting client, one that was mapped before the manager
// started, is only framed when it is viewable and not override-redirect.
func (m *Manager) Frame(client xproto.Window, preExisting bool) error {
	if m.clients.Contains(client) {
		return nil
	}

	attrs, err := m.x.Attributes(client)
	if err != nil {
		return fmt.Errorf("failed to get window attributes: %w", err)
	}

	if preExisting && (attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable) {
		return nil
	}

	geom, err := m.x.Geometry(client)
	if err != nil {
		return fmt.Errorf("failed to get window geometry: %w", err)
	}

	frame, err := m.x.CreateFrame(geom, BorderWidth, BorderColor, BackgroundColor)
	if err != nil {
		return fmt.Errorf("failed to create frame: %w", err)
	}
	m.x.ChangeAttributes(frame, xproto.CwEventMask, []uint32{rootEventMask})

	// The server reparents save-set members back to the root if we die, so
	// clients never stay hidden inside an orphaned frame.
	m.x.ChangeSaveSet(client, xproto.SetModeInsert)
	m.x.Reparent(client, frame, 0, 0)
	m.x.MapWindow(frame)
	m.clients.Insert(client, frame)

	m.grab(client)

	slog.Info("Framed window", "window", xdebug.Window(client), "frame", xdebug.Window(frame))

	return nil
}

// Unframe reverses Frame. It does nothing for unmanaged clients.
func (m *Manager) Unframe(client xproto.Window) {
	frame, ok := m.clients.Lookup(client)
	if !ok {
		return
	}

	m.x.UnmapWindow(frame)
	m.x.Reparent(client, m.x.Root(), 0, 0)
	m.x.ChangeSaveSet(client, xproto.SetModeDelete)
	m.x.DestroyWindow(frame)
	m.clients.Remove(client)

	if m.drag != nil && m.drag.Client == client {
		m.drag = nil
	}

	slog.Info("Unframed window", "window", xdebug.Window(client), "frame", xdebug.Window(frame))
}

// Teardown unframes every client, leaving them where the user put them.
func (m *Manager) Teardown() {
	for _, client := range m.clients.Clients() {
		frame, _ := m.clients.Lookup(client)
		geom, err := m.x.Geometry(frame)

		m.Unframe(client)

		if err == nil {
			m.x.Configure(client, xproto.ConfigWindowX|xproto.ConfigWindowY, []uint32{uint32(geom.X), uint32(geom.Y)})
		}
	}
	m.x.Sync()

	slog.Info("Released all windows")
}

// grab installs the passive grabs for every shortcut. Grabs are asynchronous
// so input to other windows is never frozen.
func (m *Manager) grab(client xproto.Window) {
	for _, ignored := range ignoredMods {
		mods := uint16(ModPrimary) | ignored

		m.x.GrabButton(client, MoveButton, mods, m.cursors.move)
		m.x.GrabButton(client, ResizeButton, mods, m.cursors.resize)

		for _, key := range m.closeKeys {
			m.x.GrabKey(client, key, mods)
		}
		for _, key := range m.cycleKeys {
			m.x.GrabKey(client, key, mods)
		}
	}
}
