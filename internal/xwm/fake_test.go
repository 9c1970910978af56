package xwm

import (
	"errors"
	"slices"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const fakeRoot xproto.Window = 1

var errBadWindow = errors.New("BadWindow")

type fakeWindow struct {
	parent           xproto.Window
	geom             Geometry
	mapped           bool
	overrideRedirect bool
	protocols        []string
}

type configureCall struct {
	w      xproto.Window
	mask   uint16
	values []uint32
}

type buttonGrab struct {
	w      xproto.Window
	button xproto.Button
	mods   uint16
	cursor xproto.Cursor
}

type keyGrab struct {
	w    xproto.Window
	key  xproto.Keycode
	mods uint16
}

type sentProtocol struct {
	w        xproto.Window
	protocol string
}

// fakeDisplay is an in-memory X server that is just smart enough for the
// manager: a window tree, save-set, and an event queue.
type fakeDisplay struct {
	windows map[xproto.Window]*fakeWindow
	order   []xproto.Window
	nextID  xproto.Window

	saveSet    map[xproto.Window]bool
	configures []configureCall
	buttons    []buttonGrab
	keys       []keyGrab
	focus      xproto.Window
	active     xproto.Window
	sent       []sentProtocol
	killed     []xproto.Window
	destroyed  []xproto.Window
	announced  string

	mu    sync.Mutex
	queue []eventOrError
	wakes int

	selectErr     error
	geometryErr   map[xproto.Window]error
	geometryCalls []xproto.Window
	grabbed       bool
	grabs         int
	synced        bool
	closed        int
	rootCursor    uint32
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		windows: map[xproto.Window]*fakeWindow{
			fakeRoot: {geom: Geometry{Width: 1920, Height: 1080}, mapped: true},
		},
		nextID:  0x100,
		saveSet: make(map[xproto.Window]bool),
	}
}

// addClient creates a top-level client window.
func (f *fakeDisplay) addClient(geom Geometry, mapped bool) xproto.Window {
	f.nextID++
	w := f.nextID
	f.windows[w] = &fakeWindow{parent: fakeRoot, geom: geom, mapped: mapped}
	f.order = append(f.order, w)
	return w
}

func (f *fakeDisplay) push(events ...xgb.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range events {
		f.queue = append(f.queue, eventOrError{ev: ev})
	}
}

func (f *fakeDisplay) pushError(err xgb.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, eventOrError{err: err})
}

func (f *fakeDisplay) parentOf(w xproto.Window) xproto.Window {
	return f.windows[w].parent
}

func (f *fakeDisplay) geometryOf(w xproto.Window) Geometry {
	return f.windows[w].geom
}

func (f *fakeDisplay) configuresOf(w xproto.Window) []configureCall {
	var calls []configureCall
	for _, c := range f.configures {
		if c.w == w {
			calls = append(calls, c)
		}
	}
	return calls
}

func (f *fakeDisplay) Root() xproto.Window {
	return fakeRoot
}

func (f *fakeDisplay) pop() (xgb.Event, xgb.Error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, nil
	}
	e := f.queue[0]
	f.queue = f.queue[1:]
	return e.ev, e.err
}

func (f *fakeDisplay) WaitForEvent() (xgb.Event, xgb.Error) {
	return f.pop()
}

func (f *fakeDisplay) PollForEvent() (xgb.Event, xgb.Error) {
	return f.pop()
}

func (f *fakeDisplay) Wake() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wakes++
	f.queue = append(f.queue, eventOrError{ev: xproto.ClientMessageEvent{Format: 32}})
	return nil
}

func (f *fakeDisplay) Close() {
	f.closed++
}

func (f *fakeDisplay) SelectInput(w xproto.Window, mask uint32) error {
	return f.selectErr
}

func (f *fakeDisplay) ChangeAttributes(w xproto.Window, mask uint32, values []uint32) {
	if w == fakeRoot && mask == xproto.CwCursor {
		f.rootCursor = values[0]
	}
}

func (f *fakeDisplay) Sync() {
	f.synced = true
}

func (f *fakeDisplay) WithServerGrab(fn func() error) error {
	f.grabbed = true
	f.grabs++
	defer func() { f.grabbed = false }()
	return fn()
}

func (f *fakeDisplay) TopLevelWindows() ([]xproto.Window, error) {
	var children []xproto.Window
	for _, w := range f.order {
		if f.windows[w].parent == fakeRoot {
			children = append(children, w)
		}
	}
	return children, nil
}

func (f *fakeDisplay) Attributes(w xproto.Window) (*xproto.GetWindowAttributesReply, error) {
	win, ok := f.windows[w]
	if !ok {
		return nil, errBadWindow
	}
	reply := &xproto.GetWindowAttributesReply{
		MapState:         xproto.MapStateUnmapped,
		OverrideRedirect: win.overrideRedirect,
	}
	if win.mapped {
		reply.MapState = xproto.MapStateViewable
	}
	return reply, nil
}

func (f *fakeDisplay) Geometry(w xproto.Window) (Geometry, error) {
	f.geometryCalls = append(f.geometryCalls, w)
	if err := f.geometryErr[w]; err != nil {
		return Geometry{}, err
	}
	win, ok := f.windows[w]
	if !ok {
		return Geometry{}, errBadWindow
	}
	return win.geom, nil
}

func (f *fakeDisplay) CreateFrame(g Geometry, borderWidth uint16, borderColor, background uint32) (xproto.Window, error) {
	f.nextID++
	w := f.nextID
	f.windows[w] = &fakeWindow{parent: fakeRoot, geom: g}
	f.order = append(f.order, w)
	return w, nil
}

func (f *fakeDisplay) DestroyWindow(w xproto.Window) {
	delete(f.windows, w)
	f.order = slices.DeleteFunc(f.order, func(o xproto.Window) bool { return o == w })
	f.destroyed = append(f.destroyed, w)
}

func (f *fakeDisplay) MapWindow(w xproto.Window) {
	if win, ok := f.windows[w]; ok {
		win.mapped = true
	}
}

func (f *fakeDisplay) UnmapWindow(w xproto.Window) {
	if win, ok := f.windows[w]; ok {
		win.mapped = false
	}
}

func (f *fakeDisplay) Reparent(w, parent xproto.Window, x, y int16) {
	if win, ok := f.windows[w]; ok {
		win.parent = parent
		win.geom.X = x
		win.geom.Y = y
	}
}

func (f *fakeDisplay) ChangeSaveSet(w xproto.Window, mode byte) {
	if mode == xproto.SetModeInsert {
		f.saveSet[w] = true
	} else {
		delete(f.saveSet, w)
	}
}

func (f *fakeDisplay) Configure(w xproto.Window, mask uint16, values []uint32) {
	f.configures = append(f.configures, configureCall{w: w, mask: mask, values: values})

	win, ok := f.windows[w]
	if !ok {
		return
	}
	i := 0
	next := func() uint32 {
		v := values[i]
		i++
		return v
	}
	if mask&xproto.ConfigWindowX != 0 {
		win.geom.X = int16(next())
	}
	if mask&xproto.ConfigWindowY != 0 {
		win.geom.Y = int16(next())
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		win.geom.Width = uint16(next())
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		win.geom.Height = uint16(next())
	}
}

func (f *fakeDisplay) CreateCursor(glyph uint16) (xproto.Cursor, error) {
	return xproto.Cursor(0x1000 + glyph), nil
}

func (f *fakeDisplay) GrabButton(w xproto.Window, button xproto.Button, mods uint16, cursor xproto.Cursor) {
	f.buttons = append(f.buttons, buttonGrab{w: w, button: button, mods: mods, cursor: cursor})
}

func (f *fakeDisplay) GrabKey(w xproto.Window, key xproto.Keycode, mods uint16) {
	f.keys = append(f.keys, keyGrab{w: w, key: key, mods: mods})
}

const (
	keycodeF4  xproto.Keycode = 70
	keycodeTab xproto.Keycode = 23
	keycodeA   xproto.Keycode = 38
)

func (f *fakeDisplay) Keycodes(keysym string) []xproto.Keycode {
	switch keysym {
	case "F4":
		return []xproto.Keycode{keycodeF4}
	case "Tab":
		return []xproto.Keycode{keycodeTab}
	}
	return nil
}

func (f *fakeDisplay) Protocols(w xproto.Window) ([]string, error) {
	win, ok := f.windows[w]
	if !ok {
		return nil, errBadWindow
	}
	if win.protocols == nil {
		return nil, errors.New("property WM_PROTOCOLS not found")
	}
	return win.protocols, nil
}

func (f *fakeDisplay) SendProtocol(w xproto.Window, protocol string) error {
	f.sent = append(f.sent, sentProtocol{w: w, protocol: protocol})
	return nil
}

func (f *fakeDisplay) KillClient(w xproto.Window) {
	f.killed = append(f.killed, w)
}

func (f *fakeDisplay) Focus(w xproto.Window) {
	f.focus = w
}

func (f *fakeDisplay) Announce(name string) error {
	f.announced = name
	return nil
}

func (f *fakeDisplay) SetActiveWindow(w xproto.Window) error {
	f.active = w
	return nil
}

var _ Display = (*fakeDisplay)(nil)
