// Package xdebug formats X events and errors for diagnostics.
package xdebug

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/k0kubun/pp"
)

func init() {
	pp.ColoringEnabled = false
}

// field is one name/value pair of a formatted event.
type field struct {
	name  string
	value any
}

// Window formats a window id the way xwininfo does.
func Window(w xproto.Window) string {
	return fmt.Sprintf("0x%x", uint32(w))
}

// Event returns a single line naming the event kind and its salient fields.
func Event(ev xgb.Event) string {
	name := Name(ev)

	var fields []field
	switch ev := ev.(type) {
	case xproto.CreateNotifyEvent:
		fields = []field{
			{"window", Window(ev.Window)},
			{"parent", Window(ev.Parent)},
			{"size", size(ev.Width, ev.Height)},
			{"position", position(ev.X, ev.Y)},
			{"border_width", ev.BorderWidth},
			{"override_redirect", ev.OverrideRedirect},
		}
	case xproto.DestroyNotifyEvent:
		fields = []field{{"window", Window(ev.Window)}}
	case xproto.MapNotifyEvent:
		fields = []field{
			{"window", Window(ev.Window)},
			{"event", Window(ev.Event)},
			{"override_redirect", ev.OverrideRedirect},
		}
	case xproto.UnmapNotifyEvent:
		fields = []field{
			{"window", Window(ev.Window)},
			{"event", Window(ev.Event)},
			{"from_configure", ev.FromConfigure},
		}
	case xproto.ConfigureNotifyEvent:
		fields = []field{
			{"window", Window(ev.Window)},
			{"size", size(ev.Width, ev.Height)},
			{"position", position(ev.X, ev.Y)},
			{"border_width", ev.BorderWidth},
			{"override_redirect", ev.OverrideRedirect},
		}
	case xproto.ReparentNotifyEvent:
		fields = []field{
			{"window", Window(ev.Window)},
			{"parent", Window(ev.Parent)},
			{"position", position(ev.X, ev.Y)},
			{"override_redirect", ev.OverrideRedirect},
		}
	case xproto.MapRequestEvent:
		fields = []field{
			{"window", Window(ev.Window)},
			{"parent", Window(ev.Parent)},
		}
	case xproto.ConfigureRequestEvent:
		fields = []field{
			{"window", Window(ev.Window)},
			{"parent", Window(ev.Parent)},
			{"value_mask", ConfigMask(ev.ValueMask)},
			{"position", position(ev.X, ev.Y)},
			{"size", size(ev.Width, ev.Height)},
			{"border_width", ev.BorderWidth},
		}
	case xproto.ButtonPressEvent:
		fields = pointer(ev.Event, ev.RootX, ev.RootY, ev.State, int(ev.Detail))
	case xproto.ButtonReleaseEvent:
		fields = pointer(ev.Event, ev.RootX, ev.RootY, ev.State, int(ev.Detail))
	case xproto.MotionNotifyEvent:
		fields = []field{
			{"window", Window(ev.Event)},
			{"root", position(ev.RootX, ev.RootY)},
			{"state", fmt.Sprintf("0x%x", ev.State)},
			{"time", ev.Time},
		}
	case xproto.KeyPressEvent:
		fields = key(ev.Event, ev.State, ev.Detail)
	case xproto.KeyReleaseEvent:
		fields = key(ev.Event, ev.State, ev.Detail)
	default:
		return name
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" { ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", f.name, f.value)
	}
	b.WriteString(" }")
	return b.String()
}

// Name returns the event kind, e.g. "MapRequest".
func Name(ev xgb.Event) string {
	if ev == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(ev)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.TrimSuffix(t.Name(), "Event")
}

// Dump pretty prints v over multiple lines.
func Dump(v any) string {
	return pp.Sprint(v)
}

// ConfigMask lists the fields set in a ConfigureWindow value mask.
func ConfigMask(mask uint16) string {
	names := []struct {
		bit  uint16
		name string
	}{
		{xproto.ConfigWindowX, "X"},
		{xproto.ConfigWindowY, "Y"},
		{xproto.ConfigWindowWidth, "Width"},
		{xproto.ConfigWindowHeight, "Height"},
		{xproto.ConfigWindowBorderWidth, "BorderWidth"},
		{xproto.ConfigWindowSibling, "Sibling"},
		{xproto.ConfigWindowStackMode, "StackMode"},
	}

	var set []string
	for _, n := range names {
		if mask&n.bit != 0 {
			set = append(set, n.name)
		}
	}
	return "[" + strings.Join(set, "|") + "]"
}

func size(width, height uint16) string {
	return fmt.Sprintf("%dx%d", width, height)
}

func position(x, y int16) string {
	return fmt.Sprintf("(%d, %d)", x, y)
}

func pointer(w xproto.Window, rootX, rootY int16, state uint16, button int) []field {
	return []field{
		{"window", Window(w)},
		{"button", button},
		{"root", position(rootX, rootY)},
		{"state", fmt.Sprintf("0x%x", state)},
	}
}

func key(w xproto.Window, state uint16, keycode xproto.Keycode) []field {
	return []field{
		{"window", Window(w)},
		{"keycode", keycode},
		{"state", fmt.Sprintf("0x%x", state)},
	}
}
