package logging

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes GORM's query logging through zap. Record-not-found
// and unique-violation outcomes are expected in normal operation and are
// logged below warning level.
type GormLogger struct {
	log      *zap.Logger
	logLevel logger.LogLevel
}

func NewGormLogger(log *zap.Logger, level logger.LogLevel) logger.Interface {
	return &GormLogger{log: log, logLevel: level}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &GormLogger{log: l.log, logLevel: level}
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.log.Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.log.Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.log.Sugar().Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(
	ctx context.Context,
	begin time.Time,
	fc func() (string, int64),
	err error,
) {
	if l.logLevel <= logger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.log.Debug("gorm query not found",
				zap.String("sql", sql),
				zap.Duration("duration", elapsed),
			)
			return
		}

		// Unique violations surface to callers as constraint errors and
		// are part of normal upsert/insert flows.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			l.log.Info("gorm unique constraint violation",
				zap.String("constraint", pgErr.ConstraintName),
				zap.String("sql", sql),
				zap.Duration("duration", elapsed),
				zap.Error(err),
			)
			return
		}

		l.log.Warn("gorm query failed",
			zap.String("sql", sql),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return
	}

	l.log.Debug("gorm query",
		zap.String("sql", sql),
		zap.Duration("duration", elapsed),
		zap.Int64("rows", rows),
	)
}
