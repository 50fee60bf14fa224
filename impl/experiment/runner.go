package experiment

import (
	"context"
	"fmt"
	"log"
	"oral-messages-simulation/impl/eventlogger"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/parameters"
	"oral-messages-simulation/impl/protocols"
	"oral-messages-simulation/impl/selection"
	"time"
)

// ResultSink receives every finished trial, e.g. a results database or a
// metrics registry.
type ResultSink interface {
	RecordTrial(result *TrialResult) error
}

// TrialListener is told when a trial starts and ends.
type TrialListener interface {
	TrialStarted(trial int)
	TrialFinished(trial int, successful bool, reason string)
}

type Runner struct {
	params   *parameters.Parameters
	order    messages.Order
	selector selection.Selector
	policy   protocols.RelayPolicy
	observer eventlogger.Observer
	logger   *log.Logger

	sinks     []ResultSink
	listeners []TrialListener
	pause     func() error
}

type Option func(r *Runner)

func WithSelector(selector selection.Selector) Option {
	return func(r *Runner) { r.selector = selector }
}

func WithPolicy(policy protocols.RelayPolicy) Option {
	return func(r *Runner) { r.policy = policy }
}

func WithObserver(observer eventlogger.Observer) Option {
	return func(r *Runner) { r.observer = observer }
}

func WithSink(sink ResultSink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sink) }
}

func WithListener(listener TrialListener) Option {
	return func(r *Runner) { r.listeners = append(r.listeners, listener) }
}

// WithPause installs a function called before every trial but the first,
// used to step through a run interactively.
func WithPause(pause func() error) Option {
	return func(r *Runner) { r.pause = pause }
}

// Seed returns the configured seed, or a time based one when it is zero.
func Seed(params *parameters.Parameters) uint64 {
	if params.Seed != 0 {
		return params.Seed
	}
	return uint64(time.Now().UnixNano())
}

func NewRunner(params *parameters.Parameters, logger *log.Logger, options ...Option) (*Runner, error) {
	if e := params.Validate(); e != nil {
		return nil, e
	}
	order, _ := params.Order()

	r := &Runner{
		params:   params,
		order:    order,
		observer: eventlogger.Nop{},
		logger:   logger,
	}
	for _, option := range options {
		option(r)
	}

	seed := Seed(params)
	if r.selector == nil {
		r.selector = selection.NewRandomSelector(seed)
	}
	if r.policy == nil {
		policy, e := protocols.NewPolicy(params.TraitorPolicy, params.FlipProbability, seed+1)
		if e != nil {
			return nil, e
		}
		r.policy = policy
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r, nil
}

// Run performs the configured number of experiments. With StopOnFailure the
// loop ends at the first trial where the loyal generals did not agree; that
// is an outcome, not an error. Errors only come from sinks, the pause hook or
// ctx.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{Parameters: *r.params}
	m := r.params.M()

	r.logger.Printf(
		"Running %d experiments, n: %d, f: %d, m: %d, order: %s, traitor policy: %s\n",
		r.params.Experiments, r.params.ProcessCount, r.params.FaultyProcesses, m, r.order,
		r.params.TraitorPolicy)

	for i := 0; i < r.params.Experiments; i++ {
		if e := ctx.Err(); e != nil {
			report.finish()
			return report, e
		}
		if i > 0 && r.pause != nil {
			if e := r.pause(); e != nil {
				report.finish()
				return report, fmt.Errorf("pause before trial %d: %w", i, e)
			}
		}

		for _, l := range r.listeners {
			l.TrialStarted(i)
		}

		sel := r.selector.Select(r.params.ProcessCount, r.params.FaultyProcesses)
		result := NewTrial(i, r.params.ProcessCount, m, r.order, sel, r.policy).Run(r.observer)
		report.add(result)

		for _, l := range r.listeners {
			l.TrialFinished(i, result.Successful(), result.Verdict.Reason())
		}
		for _, sink := range r.sinks {
			if e := sink.RecordTrial(result); e != nil {
				report.finish()
				return report, fmt.Errorf("record trial %d: %w", i, e)
			}
		}

		if !result.Successful() {
			r.logger.Printf(
				"Trial %d: consensus not reached, commander #%d, traitors %v: %s\n",
				i, result.Commander, result.Traitors, result.Verdict.Reason())
			if r.params.StopOnFailure {
				report.StoppedEarly = i+1 < r.params.Experiments
				break
			}
		}
	}

	report.finish()
	r.logger.Printf(
		"Finished %d experiments, successful: %d, failed: %d\n",
		report.Trials, report.Successes, report.Failures)
	return report, nil
}
