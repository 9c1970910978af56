package xwm

import (
	"slices"

	"github.com/jezek/xgb/xproto"
)

// Registry maps managed clients to their frames. Insertion order is the
// cycling order.
type Registry struct {
	frames map[xproto.Window]xproto.Window
	order  []xproto.Window
}

func NewRegistry() *Registry {
	return &Registry{
		frames: make(map[xproto.Window]xproto.Window),
	}
}

// Insert records frame for client. It does nothing if client is already
// present.
func (r *Registry) Insert(client, frame xproto.Window) {
	if _, ok := r.frames[client]; ok {
		return
	}
	r.frames[client] = frame
	r.order = append(r.order, client)
}

func (r *Registry) Remove(client xproto.Window) (xproto.Window, bool) {
	frame, ok := r.frames[client]
	if !ok {
		return 0, false
	}
	delete(r.frames, client)
	r.order = slices.DeleteFunc(r.order, func(w xproto.Window) bool { return w == client })
	return frame, true
}

func (r *Registry) Lookup(client xproto.Window) (xproto.Window, bool) {
	frame, ok := r.frames[client]
	return frame, ok
}

func (r *Registry) Contains(client xproto.Window) bool {
	_, ok := r.frames[client]
	return ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Clients returns the managed clients in insertion order.
func (r *Registry) Clients() []xproto.Window {
	return slices.Clone(r.order)
}

// Next returns the client after client in insertion order, wrapping to the
// first. It returns false when client is not managed.
func (r *Registry) Next(client xproto.Window) (xproto.Window, bool) {
	idx := slices.Index(r.order, client)
	if idx == -1 {
		return 0, false
	}
	return r.order[(idx+1)%len(r.order)], true
}
