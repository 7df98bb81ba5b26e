package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans (dev only)
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // default "sqlite"
}

// DefaultDBTracingConfig returns the disabled, variable-free defaults.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}
}

// queryStartKey holds the statement start time in the statement's instance
// settings. otelgorm swaps Statement.Context on the way out, so the context
// cannot carry it.
const queryStartKey = "otel_timing:start"

// RegisterDBTracing installs otelgorm on db plus a callback pair that flags
// slow queries on the active span and in the log.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "sqlite"
	}

	plugin := otelgorm.NewPlugin(dbTracingOptions(cfg)...)
	if _, ok := db.Config.Plugins[plugin.Name()]; ok {
		return gorm.ErrRegistered
	}

	// The timer goes first so its after hook still sees the otelgorm span.
	timer := &queryTimer{thresh: cfg.SlowQueryThresh, logger: logger}
	if err := timer.register(db); err != nil {
		return err
	}
	if err := db.Use(plugin); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func dbTracingOptions(cfg DBTracingConfig) []otelgorm.Option {
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return opts
}

type queryTimer struct {
	thresh time.Duration
	logger *zap.Logger
}

func (q *queryTimer) register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("otel_timing:before_create", q.before),
		cb.Query().Before("gorm:query").Register("otel_timing:before_query", q.before),
		cb.Update().Before("gorm:update").Register("otel_timing:before_update", q.before),
		cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", q.before),
		cb.Row().Before("gorm:row").Register("otel_timing:before_row", q.before),
		cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", q.before),
		cb.Create().After("gorm:create").Register("otel_timing:after_create", q.after),
		cb.Query().After("gorm:query").Register("otel_timing:after_query", q.after),
		cb.Update().After("gorm:update").Register("otel_timing:after_update", q.after),
		cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", q.after),
		cb.Row().After("gorm:row").Register("otel_timing:after_row", q.after),
		cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", q.after),
	)
}

func (q *queryTimer) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (q *queryTimer) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	recording := span.IsRecording()

	if recording {
		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
	}

	v, _ := db.InstanceGet(queryStartKey)
	startTime, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(startTime)
	if elapsed <= q.thresh {
		return
	}

	q.logger.Warn("slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Duration("threshold", q.thresh),
	)
	if recording {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", q.thresh.Milliseconds()),
		))
	}
}
