package cli

import (
	"context"
	"time"

	"github.com/deppfellow/projects/internal/errs"
	"github.com/deppfellow/projects/internal/logger"
	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// ActionFunc is one console operation. The context carries an
// operation-scoped logger (zerolog.Ctx) and, when enabled, the New Relic
// transaction.
type ActionFunc func(ctx context.Context) error

// Pipeline is the shared execution path for every console operation.
//
// It centralizes:
//   - an operation id for log correlation
//   - structured logging of start, outcome and duration
//   - New Relic transactions and error reporting
//
// Errors are returned unchanged so the caller decides how to print them.
type Pipeline struct {
	logger *zerolog.Logger
	nrApp  *newrelic.Application
}

// NewPipeline builds a pipeline. nrApp may be nil.
func NewPipeline(logger *zerolog.Logger, nrApp *newrelic.Application) *Pipeline {
	return &Pipeline{logger: logger, nrApp: nrApp}
}

// Run executes action under the name operation.
func (p *Pipeline) Run(ctx context.Context, operation string, action ActionFunc) error {
	start := time.Now()
	operationID := uuid.NewString()

	var txn *newrelic.Transaction
	if p.nrApp != nil {
		txn = p.nrApp.StartTransaction(operation)
		defer txn.End()

		txn.AddAttribute("operation.id", operationID)
		ctx = newrelic.NewContext(ctx, txn)
	}

	log := p.logger.With().
		Str("operation", operation).
		Str("operation_id", operationID).
		Logger()
	log = logger.WithTraceContext(log, txn)
	ctx = log.WithContext(ctx)

	log.Debug().Msg("running operation")

	err := action(ctx)
	duration := time.Since(start)

	if err != nil {
		event := log.Warn()
		if kind := errs.KindOf(err); kind == errs.KindConnection || kind == errs.KindInconsistency || kind == "" {
			event = log.Error()
		}
		event.
			Err(err).
			Str("kind", string(errs.KindOf(err))).
			Dur("duration", duration).
			Msg("operation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("operation.status", "error")
			txn.AddAttribute("operation.duration_ms", duration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("operation.status", "success")
		txn.AddAttribute("operation.duration_ms", duration.Milliseconds())
	}

	log.Info().
		Dur("duration", duration).
		Msg("operation completed")

	return nil
}
