package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/museworks/muse-api/internal/domain"
)

// PollerConfig holds tuning for the long-running operation poller.
type PollerConfig struct {
	// Interval is the fixed spacing between poll calls.
	Interval time.Duration

	// MaxAttempts bounds the number of poll calls before the operation is
	// abandoned as failed. The provider gives no completion deadline, so
	// an explicit bound keeps an unresponsive job from polling forever.
	MaxAttempts int
}

// DefaultPollerConfig returns the standard poller tuning: a 10-second
// poll spacing bounded at 90 attempts (15 minutes).
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:    10 * time.Second,
		MaxAttempts: 90,
	}
}

// Poller tracks an asynchronous provider job handle to completion. It
// re-checks the handle at a fixed interval while done is false, honoring
// context cancellation before every scheduled re-check: once the context
// is cancelled, no further poll call fires.
type Poller struct {
	provider  Provider
	artifacts ArtifactSaver
	config    PollerConfig
	logger    *slog.Logger
}

// NewPoller creates a Poller. Zero config fields fall back to defaults.
func NewPoller(provider Provider, artifacts ArtifactSaver, config PollerConfig, logger *slog.Logger) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultPollerConfig().MaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		provider:  provider,
		artifacts: artifacts,
		config:    config,
		logger:    logger.With(slog.String("component", "poller")),
	}
}

// Await polls the handle until it reports done, then resolves the success
// payload into an artifact reference. It returns the reference on
// success, or a ClassifiedError on any failure. Exactly one terminal
// outcome is produced per handle; after it is reached no poll call fires.
func (p *Poller) Await(ctx context.Context, handle *domain.OperationHandle) (string, error) {
	log := p.logger.With(slog.String("operation", handle.Name))

	log.Info("operation submitted")
	log.Debug("polling started", slog.Duration("interval", p.config.Interval))

	attempts := 0
	for !handle.Done {
		if attempts >= p.config.MaxAttempts {
			log.Warn("operation abandoned after poll budget exhausted",
				slog.Int("attempts", attempts))
			return "", Classify(fmt.Errorf(
				"operation %s did not complete within %d poll attempts",
				handle.Name, p.config.MaxAttempts))
		}

		// Cancellation is consulted before each scheduled re-check; a
		// cancelled context means this poll never fires.
		timer := time.NewTimer(p.config.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("polling cancelled", slog.Int("attempts", attempts))
			return "", Classify(ctx.Err())
		case <-timer.C:
		}
		if err := ctx.Err(); err != nil {
			log.Info("polling cancelled", slog.Int("attempts", attempts))
			return "", Classify(err)
		}

		refreshed, err := p.provider.PollVideo(ctx, handle)
		attempts++
		if err != nil {
			log.Warn("poll call failed",
				slog.Int("attempts", attempts),
				slog.String("error", err.Error()))
			return "", Classify(err)
		}
		handle = refreshed

		log.Debug("operation polled",
			slog.Int("attempts", attempts),
			slog.Bool("done", handle.Done))
	}

	if handle.FailureMessage != "" {
		log.Warn("operation reported failure",
			slog.String("failure", handle.FailureMessage))
		return "", Classify(fmt.Errorf("operation failed: %s", handle.FailureMessage))
	}

	if handle.ResultURI == "" {
		// Done with nothing to fetch. Distinct from a provider-reported
		// failure; never retried.
		log.Warn("operation done without payload")
		return "", Classify(fmt.Errorf("%w: operation %s", ErrMissingPayload, handle.Name))
	}

	blob, err := p.provider.FetchAsset(ctx, handle.ResultURI)
	if err != nil {
		log.Warn("result fetch failed", slog.String("error", err.Error()))
		return "", Classify(err)
	}

	ref, err := p.artifacts.Save(ctx, blob)
	if err != nil {
		log.Warn("artifact save failed", slog.String("error", err.Error()))
		return "", Classify(err)
	}

	log.Info("operation succeeded",
		slog.Int("attempts", attempts),
		slog.String("artifact", ref))
	return ref, nil
}
