package xdebug

import (
	"reflect"
	"strconv"

	"github.com/jezek/xgb"
)

// Core protocol request names indexed by major opcode.
var requestNames = [...]string{
	1: "CreateWindow", "ChangeWindowAttributes", "GetWindowAttributes",
	"DestroyWindow", "DestroySubwindows", "ChangeSaveSet", "ReparentWindow",
	"MapWindow", "MapSubwindows", "UnmapWindow", "UnmapSubwindows",
	"ConfigureWindow", "CirculateWindow", "GetGeometry", "QueryTree",
	"InternAtom", "GetAtomName", "ChangeProperty", "DeleteProperty",
	"GetProperty", "ListProperties", "SetSelectionOwner", "GetSelectionOwner",
	"ConvertSelection", "SendEvent", "GrabPointer", "UngrabPointer",
	"GrabButton", "UngrabButton", "ChangeActivePointerGrab", "GrabKeyboard",
	"UngrabKeyboard", "GrabKey", "UngrabKey", "AllowEvents", "GrabServer",
	"UngrabServer", "QueryPointer", "GetMotionEvents", "TranslateCoordinates",
	"WarpPointer", "SetInputFocus", "GetInputFocus", "QueryKeymap", "OpenFont",
	"CloseFont", "QueryFont", "QueryTextExtents", "ListFonts",
	"ListFontsWithInfo", "SetFontPath", "GetFontPath", "CreatePixmap",
	"FreePixmap", "CreateGC", "ChangeGC", "CopyGC", "SetDashes",
	"SetClipRectangles", "FreeGC", "ClearArea", "CopyArea", "CopyPlane",
	"PolyPoint", "PolyLine", "PolySegment", "PolyRectangle", "PolyArc",
	"FillPoly", "PolyFillRectangle", "PolyFillArc", "PutImage", "GetImage",
	"PolyText8", "PolyText16", "ImageText8", "ImageText16", "CreateColormap",
	"FreeColormap", "CopyColormapAndFree", "InstallColormap",
	"UninstallColormap", "ListInstalledColormaps", "AllocColor",
	"AllocNamedColor", "AllocColorCells", "AllocColorPlanes", "FreeColors",
	"StoreColors", "StoreNamedColor", "QueryColors", "LookupColor",
	"CreateCursor", "CreateGlyphCursor", "FreeCursor", "RecolorCursor",
	"QueryBestSize", "QueryExtension", "ListExtensions",
	"ChangeKeyboardMapping", "GetKeyboardMapping", "ChangeKeyboardControl",
	"GetKeyboardControl", "Bell", "ChangePointerControl", "GetPointerControl",
	"SetScreenSaver", "GetScreenSaver", "ChangeHosts", "ListHosts",
	"SetAccessControl", "SetCloseDownMode", "KillClient", "RotateProperties",
	"ForceScreenSaver", "SetPointerMapping", "GetPointerMapping",
	"SetModifierMapping", "GetModifierMapping",
	127: "NoOperation",
}

// RequestName returns the name of a core request, or a placeholder for
// extension and unknown opcodes.
func RequestName(major byte) string {
	if int(major) < len(requestNames) && requestNames[major] != "" {
		return requestNames[major]
	}
	if major >= 128 {
		return "Extension(" + strconv.Itoa(int(major)) + ")"
	}
	return "Unknown(" + strconv.Itoa(int(major)) + ")"
}

// ErrorInfo is what an X error says about the request that caused it.
type ErrorInfo struct {
	Class       string
	MajorOpcode byte
	MinorOpcode uint16
	Resource    uint32
	Sequence    uint16
}

// Inspect extracts ErrorInfo from err. Every xproto error type is a struct
// with the same field names but a distinct type, so fields are read by name.
func Inspect(err xgb.Error) ErrorInfo {
	info := ErrorInfo{
		Resource: err.BadId(),
		Sequence: err.SequenceId(),
	}

	v := reflect.Indirect(reflect.ValueOf(err))
	if v.Kind() != reflect.Struct {
		return info
	}

	if f := v.FieldByName("NiceName"); f.Kind() == reflect.String {
		info.Class = f.String()
	}
	if f := v.FieldByName("MajorOpcode"); f.Kind() == reflect.Uint8 {
		info.MajorOpcode = byte(f.Uint())
	}
	if f := v.FieldByName("MinorOpcode"); f.Kind() == reflect.Uint16 {
		info.MinorOpcode = uint16(f.Uint())
	}

	return info
}
