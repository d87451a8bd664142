package gossip

import "go.uber.org/zap"

// log is the package-level logger.  It is disabled (a no-op core) until a
// caller opts in with UseLogger.
var log = zap.NewNop()

// UseLogger sets the logger the package emits node lifecycle, discovery,
// and delivery events through.
func UseLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log = logger
}

// DisableLog turns off all library log output.  Logging is disabled by
// default until UseLogger is called.
func DisableLog() {
	log = zap.NewNop()
}
