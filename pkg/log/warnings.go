package log

import (
	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// InstallWarningBridge routes pkg/errors warnings through the default
// logger as structured warn-level records. Called once at startup.
func InstallWarningBridge() {
	errors.SetZerologWarnFunc(func(warning error) {
		GetLogger().Warn("pipeline warning", "warning", warning)
	})
}
