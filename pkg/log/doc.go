/*
Package log provides structured logging for edtrt using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all edtrt packages
  - Thread-safe concurrent writes

Context Loggers:
  - WithComponent: tag logs with a subsystem name (e.g. "scheduler", "pdreg")
  - WithPD: tag logs with the owning policy domain's location
  - WithEDT: tag logs with an EDT's GUID
  - WithDB: tag logs with a DB's GUID

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	pdLog := log.WithPD(string(loc))
	pdLog.Info().Msg("policy domain bring-up complete")

	edtLog := log.WithEDT(string(edt.GUID))
	edtLog.Debug().Str("heuristic", "st").Msg("placement resolved")

# Integration Points

This package integrates with pkg/scheduler (heuristic decisions),
pkg/pdreg (roster/leader changes), pkg/reconciler (liveness ticks), and
pkg/events (notify broadcasts).

# Best Practices

Do:
  - Use Info level for production
  - Use structured fields for queryable data
  - Create component/PD/EDT-scoped loggers rather than the bare global one

Don't:
  - Log DB payload bytes (this module never holds them, and wouldn't want to)
  - Use Debug level in production
  - Concatenate strings into messages; use .Str/.Int fields
*/
package log
