package xwm

import (
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-framewm/internal/xdebug"
	"github.com/jezek/xgb"
)

// LogXError reports an asynchronous protocol error. X errors are never fatal
// to the manager and the failed request is not retried.
func LogXError(err xgb.Error) {
	info := xdebug.Inspect(err)
	slog.Error("Received X error",
		"request", xdebug.RequestName(info.MajorOpcode),
		"major", info.MajorOpcode,
		"minor", info.MinorOpcode,
		"error", info.Class,
		"resource", fmt.Sprintf("0x%x", info.Resource),
		"sequence", info.Sequence,
	)
}
