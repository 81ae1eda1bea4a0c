package promiseq

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger installs the logger used for uncaught rejections and stage
// debug events. The default is a no-op logger; passing nil restores it.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// logUncaught reports an error nothing else observes: a rejection that
// reached the end of a discarded chain, or a panic raised by a Finally
// handler.
func logUncaught(m *monitor, err error) {
	logger.Load().Warn("uncaught promise rejection",
		zap.String("chain", m.id.String()),
		zap.Error(err))
}

func debugStage(m *monitor, event string) {
	logger.Load().Debug("promise stage",
		zap.String("chain", m.id.String()),
		zap.String("event", event))
}
