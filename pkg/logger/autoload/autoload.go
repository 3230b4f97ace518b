// Package autoload initializes the global zerolog logger from LOG_* env vars
// on import, so binaries only need a blank import.
package autoload

import (
	configx "github.com/suratin/leadpilot/pkg/config"
	logx "github.com/suratin/leadpilot/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
