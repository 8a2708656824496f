package poller

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// every is a fixed-interval cron.Schedule. Unlike cron.Every it does not round to whole
// seconds, so sub-second intervals are honoured.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// cronLogger routes cron's logging through zap. Cron reports every wake-up at info level,
// which is debug noise for a polling client.
type cronLogger struct {
	log *zap.SugaredLogger
}

var _ cron.Logger = cronLogger{}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
