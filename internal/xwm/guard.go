package xwm

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb/xproto"
)

var ErrOtherWM = errors.New("another window manager is already running")

const rootEventMask = xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify

// wmDetector sees the result of the checked substructure redirection request.
// It lives only for one DetectOtherWM call.
type wmDetector struct {
	detected bool
}

// intercept returns err unless it is the BadAccess a rival manager causes.
func (d *wmDetector) intercept(err error) error {
	var access xproto.AccessError
	if errors.As(err, &access) {
		d.detected = true
		return nil
	}
	return err
}

// DetectOtherWM asks for substructure redirection on the root window and
// reports ErrOtherWM if another client already holds it. Nothing else is
// touched when it fails.
func DetectOtherWM(d Display) error {
	var detector wmDetector

	if err := detector.intercept(d.SelectInput(d.Root(), rootEventMask)); err != nil {
		return fmt.Errorf("failed to select input on root window: %w", err)
	}
	d.Sync()

	if detector.detected {
		return ErrOtherWM
	}

	return nil
}
