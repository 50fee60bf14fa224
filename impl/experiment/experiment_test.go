package experiment

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log"
	"oral-messages-simulation/impl/eventlogger"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/parameters"
	"oral-messages-simulation/impl/protocols"
	"oral-messages-simulation/impl/selection"
	"testing"
)

var (
	quietLogger = log.New(io.Discard, "", 0)

	// Two traitors among four generals under OM(2): the loyal lieutenant is
	// talked into retreating.
	failingSelection = selection.Selection{Traitors: []int{1, 2}, Commander: 3}
	passingSelection = selection.Selection{Traitors: []int{1}, Commander: 3}
)

func params(n, f, experiments int) *parameters.Parameters {
	p := parameters.Default()
	p.ProcessCount = n
	p.FaultyProcesses = f
	p.Experiments = experiments
	p.Seed = 42
	return p
}

type sliceSink struct {
	results []*TrialResult
	err     error
}

func (s *sliceSink) RecordTrial(result *TrialResult) error {
	s.results = append(s.results, result)
	return s.err
}

type countingListener struct {
	started  []int
	finished map[int]bool
}

func (l *countingListener) TrialStarted(trial int) {
	l.started = append(l.started, trial)
}

func (l *countingListener) TrialFinished(trial int, successful bool, _ string) {
	if l.finished == nil {
		l.finished = make(map[int]bool)
	}
	l.finished[trial] = successful
}

func TestTrial_reportsIdsAndDecisions(t *testing.T) {
	trial := NewTrial(0, 4, 2, messages.Attack, failingSelection, protocols.ParityFlip{})

	result := trial.Run(nil)

	assert.Equal(t, 4, result.Commander)
	assert.Equal(t, []int{2, 3}, result.Traitors)
	assert.True(t, result.FirstCommanderLoyal)
	assert.False(t, result.Successful())
	assert.Equal(t, map[int]messages.Order{
		1: messages.Retreat,
		2: messages.Attack,
		3: messages.Attack,
	}, result.Decisions)
	assert.Equal(t, 15, result.Stats.MessagesSent)
	assert.Equal(t, 2, result.Stats.MaxDepth)
}

func TestTrial_announcesTraitors(t *testing.T) {
	recorder := &eventlogger.Recorder{}

	NewTrial(0, 4, 1, messages.Attack, failingSelection, protocols.ParityFlip{}).Run(recorder)

	assert.Equal(t, 2, recorder.Count(eventlogger.TraitorEvent))
	assert.Equal(t, eventlogger.TraitorEvent, recorder.Events[0].Kind)
	assert.Equal(t, 2, recorder.Events[0].General)
}

func TestTrial_noStateSharedBetweenTrials(t *testing.T) {
	fst := NewTrial(0, 4, 2, messages.Attack, failingSelection, protocols.ParityFlip{}).Run(nil)
	snd := NewTrial(1, 4, 2, messages.Attack, failingSelection, protocols.ParityFlip{}).Run(nil)

	assert.Equal(t, fst.Decisions, snd.Decisions)
	assert.Equal(t, fst.Stats, snd.Stats)
	assert.Equal(t, fst.Verdict, snd.Verdict)
}

func TestRunner_stopsOnFirstFailure(t *testing.T) {
	r, e := NewRunner(params(4, 2, 5), quietLogger, WithSelector(selection.Fixed(failingSelection)))
	require.Nil(t, e)

	report, e := r.Run(context.Background())

	require.Nil(t, e)
	assert.Equal(t, 1, report.Trials)
	assert.Equal(t, 1, report.Failures)
	assert.True(t, report.StoppedEarly)
	assert.Equal(t, 0, report.FirstFailure.Index)
}

func TestRunner_keepGoing(t *testing.T) {
	p := params(4, 2, 5)
	p.StopOnFailure = false
	r, e := NewRunner(p, quietLogger, WithSelector(selection.Fixed(failingSelection)))
	require.Nil(t, e)

	report, e := r.Run(context.Background())

	require.Nil(t, e)
	assert.Equal(t, 5, report.Trials)
	assert.Equal(t, 5, report.Failures)
	assert.False(t, report.StoppedEarly)
	assert.Equal(t, 0.0, report.SuccessRate())
}

func TestRunner_failureOnLastTrialIsNotEarlyStop(t *testing.T) {
	seq := selection.NewSequence([]selection.Selection{passingSelection, failingSelection})
	r, e := NewRunner(params(4, 2, 2), quietLogger, WithSelector(seq))
	require.Nil(t, e)

	report, e := r.Run(context.Background())

	require.Nil(t, e)
	assert.Equal(t, 2, report.Trials)
	assert.Equal(t, 1, report.Successes)
	assert.False(t, report.StoppedEarly)
	assert.Equal(t, 1, report.FirstFailure.Index)
}

func TestRunner_boundRespectingRandomRun(t *testing.T) {
	p := params(4, 1, 200)
	r, e := NewRunner(p, quietLogger)
	require.Nil(t, e)

	report, e := r.Run(context.Background())

	require.Nil(t, e)
	assert.Equal(t, 200, report.Trials)
	assert.Equal(t, 200, report.Successes)
	assert.Nil(t, report.FirstFailure)
	assert.Equal(t, 9.0, report.MessagesMean)
	assert.Equal(t, 0.0, report.MessagesStdDev)
}

func TestRunner_sameSeedSameReport(t *testing.T) {
	run := func() *Report {
		p := params(7, 3, 30)
		p.StopOnFailure = false
		r, e := NewRunner(p, quietLogger)
		require.Nil(t, e)
		report, e := r.Run(context.Background())
		require.Nil(t, e)
		return report
	}

	fst := run()
	snd := run()

	assert.Equal(t, fst.Successes, snd.Successes)
	for i := range fst.Results {
		assert.Equal(t, fst.Results[i].Commander, snd.Results[i].Commander)
		assert.Equal(t, fst.Results[i].Traitors, snd.Results[i].Traitors)
	}
}

func TestRunner_sinksAndListeners(t *testing.T) {
	sink := &sliceSink{}
	listener := &countingListener{}
	p := params(4, 1, 3)
	r, e := NewRunner(p, quietLogger, WithSink(sink), WithListener(listener))
	require.Nil(t, e)

	_, e = r.Run(context.Background())

	require.Nil(t, e)
	assert.Len(t, sink.results, 3)
	assert.Equal(t, []int{0, 1, 2}, listener.started)
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, listener.finished)
}

func TestRunner_sinkErrorStopsRun(t *testing.T) {
	sink := &sliceSink{err: errors.New("disk full")}
	r, e := NewRunner(params(4, 1, 3), quietLogger, WithSink(sink))
	require.Nil(t, e)

	report, e := r.Run(context.Background())

	require.NotNil(t, e)
	assert.Contains(t, e.Error(), "disk full")
	assert.Equal(t, 1, report.Trials)
}

func TestRunner_pauseBetweenTrials(t *testing.T) {
	pauses := 0
	r, e := NewRunner(params(4, 1, 4), quietLogger, WithPause(func() error {
		pauses++
		return nil
	}))
	require.Nil(t, e)

	_, e = r.Run(context.Background())

	require.Nil(t, e)
	assert.Equal(t, 3, pauses)
}

func TestRunner_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, e := NewRunner(params(4, 1, 4), quietLogger)
	require.Nil(t, e)

	report, e := r.Run(ctx)

	assert.True(t, errors.Is(e, context.Canceled))
	assert.Equal(t, 0, report.Trials)
}

func TestRunner_observerReceivesEvents(t *testing.T) {
	recorder := &eventlogger.Recorder{}
	r, e := NewRunner(params(4, 1, 1), quietLogger, WithObserver(recorder))
	require.Nil(t, e)

	_, e = r.Run(context.Background())

	require.Nil(t, e)
	assert.Equal(t, 9, recorder.Count(eventlogger.SendEvent))
	assert.Equal(t, 1, recorder.Count(eventlogger.TraitorEvent))
}

func TestNewRunner_invalidParameters(t *testing.T) {
	_, e := NewRunner(params(0, 0, 1), quietLogger)

	assert.True(t, errors.Is(e, parameters.ErrInvalidParameters))
}

func TestExplore_boundRespecting(t *testing.T) {
	p := params(4, 1, 1)

	exploration := Explore(p, protocols.ParityFlip{}, nil)

	assert.Equal(t, 32, exploration.Cases)
	assert.True(t, exploration.Successful())
}

func TestExplore_boundViolating(t *testing.T) {
	p := params(4, 2, 1)

	parity := Explore(p, protocols.ParityFlip{}, nil)
	always := Explore(p, protocols.AlwaysFlip{}, nil)

	assert.Equal(t, 48, parity.Cases)
	assert.Len(t, parity.Failures, 8)
	assert.Len(t, always.Failures, 16)
}

func TestReport_wilsonInterval(t *testing.T) {
	report := &Report{Trials: 10, Successes: 10}

	lo, hi := report.WilsonInterval(0.95)

	assert.InDelta(t, 1.0, hi, 1e-9)
	assert.InDelta(t, 0.7225, lo, 1e-3)
}

func TestReport_wilsonIntervalHalf(t *testing.T) {
	report := &Report{Trials: 100, Successes: 50}

	lo, hi := report.WilsonInterval(0.95)

	assert.InDelta(t, 0.5, (lo+hi)/2, 1e-9)
	assert.InDelta(t, 0.4038, lo, 1e-3)
	assert.InDelta(t, 0.5962, hi, 1e-3)
}

func TestReport_empty(t *testing.T) {
	report := &Report{}

	lo, hi := report.WilsonInterval(0.95)

	assert.Equal(t, 0.0, report.SuccessRate())
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}
