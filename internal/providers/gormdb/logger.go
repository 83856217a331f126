package gormdb

import (
	"context"
	"strings"
	"time"

	"github.com/shopmonkeyus/go-common/logger"
	glogger "gorm.io/gorm/logger"
)

type logAdapter struct {
	logger logger.Logger
}

var _ glogger.Interface = (*logAdapter)(nil)

// newLogAdapter bridges gorm's logging onto our logger.
func newLogAdapter(logger logger.Logger) glogger.Interface {
	return &logAdapter{logger}
}

func (a *logAdapter) LogMode(level glogger.LogLevel) glogger.Interface {
	return a
}

func (a *logAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if strings.Contains(msg, "replacing callback `") {
		a.logger.Trace(strings.TrimSpace(msg), data...)
		return
	}
	a.logger.Info(strings.TrimSpace(msg), data...)
}

func (a *logAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	a.logger.Warn(strings.TrimSpace(msg), data...)
}

func (a *logAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	a.logger.Error(strings.TrimSpace(msg), data...)
}

func (a *logAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if err != nil {
		a.logger.Error("error running sql: %s", err)
	} else {
		sql, count := fc()
		a.logger.Trace("sql executed: %s, returned %d rows in %v", sql, count, time.Since(begin))
	}
}
