package dispatch

import (
	"context"
	"net/url"
	"time"

	"github.com/deppfellow/go-rpc-demo/internal/errs"
	"github.com/deppfellow/go-rpc-demo/internal/validation"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// run is the shared execution pipeline of a route.
//
// It centralizes:
//
// - validation of every declared channel
// - structured logging (with the request logger found in ctx)
// - New Relic attributes and error reporting
// - timing (validation duration, handler duration, total duration)
// - recovery of handler panics into errors
func (r *Route) run(ctx context.Context, rawQuery url.Values, rawBody []byte) (any, error) {
	start := time.Now()

	// New Relic transaction is set by the New Relic Echo middleware (nrecho).
	// It is nil when New Relic is disabled or the route is dispatched directly.
	txn := newrelic.FromContext(ctx)
	if txn != nil {
		txn.AddAttribute("handler.name", r.Name)
	}

	// zerolog.Ctx returns the request logger stored by the ContextEnhancer
	// middleware, or a disabled logger when there is none.
	logger := zerolog.Ctx(ctx).With().
		Str("operation", r.Name).
		Str("route", r.String()).
		Logger()

	logger.Debug().Msg("handling request")

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()

	in, err := r.validate(ctx, rawQuery, rawBody)
	validationDuration := time.Since(validationStart)

	if err != nil {
		logger.Warn().
			Err(err).
			Strs("fields", errs.Resolve(err).FieldNames()).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return nil, err
	}

	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Msg("request validation successful")

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	result, err := r.call(ctx, in)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Stack().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}

		return nil, err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return result, nil
}

// validate checks every declared channel in validation.Channels order and
// gathers all field errors before deciding. Channels without a schema are
// left to the handler as raw data.
func (r *Route) validate(ctx context.Context, rawQuery url.Values, rawBody []byte) (*Input, error) {
	in := &Input{
		Query: rawQuery,
		Body:  rawBody,
		valid: make(map[validation.Channel]map[string]any, len(r.Schemas)),
	}

	var (
		fieldErrors []errs.FieldError
		malformed   *errs.HTTPError
	)

	for _, channel := range validation.Channels {
		schema, declared := r.Schemas[channel]
		if !declared {
			continue
		}

		var raw any
		switch channel {
		case validation.ChannelQuery:
			raw = validation.QueryValues(rawQuery)

		case validation.ChannelJSON:
			parsed, err := validation.ParseJSON(ctx, rawBody)
			if err != nil {
				// Only the detail reaches the client; the decoder error is logged.
				detail := "request body is not valid JSON"
				var parseErr *validation.MalformedError
				if errors.As(err, &parseErr) {
					detail = parseErr.Detail
				}
				zerolog.Ctx(ctx).Debug().Err(err).Msg("request body rejected")

				malformed = errs.NewMalformedJSONError(detail)
				continue
			}
			raw = parsed
		}

		res := validation.Validate(ctx, channel, schema, raw)
		if !res.Valid() {
			fieldErrors = append(fieldErrors, res.Errors...)
			continue
		}

		in.valid[channel] = res.Value
	}

	if malformed != nil {
		// The body could not be checked at all; still report what the other
		// channels got wrong so the caller can fix everything at once.
		malformed.Errors = append(malformed.Errors, fieldErrors...)
		return nil, malformed
	}

	if len(fieldErrors) > 0 {
		return nil, errs.NewValidationError(fieldErrors)
	}

	return in, nil
}

// call invokes the handler, turning a panic into an error so it is reported
// as an internal failure instead of tearing down the request goroutine.
func (r *Route) call(ctx context.Context, in *Input) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = errors.Errorf("handler %s panicked: %v", r.Name, rec)
		}
	}()

	return r.Handler(ctx, in)
}
