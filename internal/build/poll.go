package build

import (
	"context"
	"time"

	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
	"git.home.luguber.info/inful/cirrusrun/internal/metrics"
)

const (
	DefaultPollInterval  = 3 * time.Second
	DefaultPollTimeout   = time.Hour
	DefaultConfirmations = 3
)

// PollOptions tunes PollUntilDone. Zero values take the defaults.
type PollOptions struct {
	Interval      time.Duration
	Timeout       time.Duration
	Confirmations int

	// OnStatus, when set, sees every observed status.
	OnStatus func(Status)
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultPollTimeout
	}
	if o.Confirmations <= 0 {
		o.Confirmations = DefaultConfirmations
	}
	return o
}

// confirmDelay spreads the remaining confirmation checks over about one poll interval.
func (o PollOptions) confirmDelay() time.Duration {
	if o.Confirmations < 2 {
		return o.Interval
	}
	return o.Interval / time.Duration(o.Confirmations-1)
}

// PollUntilDone queries the build status until it settles.
//
// It returns nil on the first COMPLETED. A failure status must be observed on
// Confirmations consecutive checks before a build failure error is returned; a
// running status in between resets the count. An unrecognized status is fatal
// immediately. When Timeout elapses first a timeout error is returned.
func (s *Service) PollUntilDone(ctx context.Context, buildID string, opts PollOptions) error {
	opts = opts.withDefaults()
	start := s.clock.Now()
	confirmed := 0

	for s.clock.Since(start) < opts.Timeout {
		status, err := s.buildStatus(ctx, buildID)
		if err != nil {
			outcome := metrics.OutcomeError
			if ctx.Err() != nil {
				outcome = metrics.OutcomeCanceled
			}
			s.finish(outcome, start)
			return err
		}

		s.logger.Info("Build status",
			logfields.BuildID(buildID), logfields.Status(string(status)), logfields.Elapsed(s.clock.Since(start)))
		s.recorder.ObserveBuildStatus(string(status))
		if opts.OnStatus != nil {
			opts.OnStatus(status)
		}

		var delay time.Duration
		switch status.Phase() {
		case PhaseSuccess:
			s.finish(metrics.OutcomeSuccess, start)
			return nil
		case PhaseRunning:
			confirmed = 0
			delay = opts.Interval
		case PhaseFailure:
			confirmed++
			if confirmed >= opts.Confirmations {
				s.finish(metrics.OutcomeFailed, start)
				return cierrors.BuildFailed(buildID, string(status))
			}
			s.logger.Debug("Failure status not yet confirmed",
				logfields.BuildID(buildID), logfields.Status(string(status)), logfields.Confirmed(confirmed))
			delay = opts.confirmDelay()
		default:
			s.finish(metrics.OutcomeError, start)
			return cierrors.UnknownStatus(buildID, string(status))
		}

		if err := s.sleep(ctx, delay); err != nil {
			s.finish(metrics.OutcomeCanceled, start)
			return err
		}
	}

	s.finish(metrics.OutcomeTimeout, start)
	return cierrors.BuildTimeout(buildID, opts.Timeout)
}

func (s *Service) finish(outcome metrics.BuildOutcome, start time.Time) {
	s.recorder.IncBuildOutcome(outcome)
	s.recorder.ObserveBuildDuration(s.clock.Since(start))
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(d):
		return nil
	}
}
