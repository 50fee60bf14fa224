package sqlite

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log"
	"oral-messages-simulation/impl/experiment"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/parameters"
	"oral-messages-simulation/impl/protocols"
	"oral-messages-simulation/impl/selection"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	s, e := NewStore(filepath.Join(t.TempDir(), "results", "omsim.db"))
	require.Nil(t, e)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func runReport(t *testing.T, p *parameters.Parameters, sel selection.Selector) *experiment.Report {
	r, e := experiment.NewRunner(p, log.New(io.Discard, "", 0), experiment.WithSelector(sel))
	require.Nil(t, e)
	report, e := r.Run(context.Background())
	require.Nil(t, e)
	return report
}

func TestStore_emptyHasNoRuns(t *testing.T) {
	s := newStore(t)

	runs, e := s.Runs()

	require.Nil(t, e)
	assert.Empty(t, runs)
}

func TestStore_roundTrip(t *testing.T) {
	s := newStore(t)
	p := parameters.Default()
	p.Experiments = 3
	p.StopOnFailure = false
	report := runReport(t, p, selection.NewSequence([]selection.Selection{
		{Traitors: []int{1, 2}, Commander: 3},
		{Traitors: []int{0, 1}, Commander: 2},
		{Traitors: []int{2, 3}, Commander: 0},
	}))
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id, e := s.SaveRun(report, started)
	require.Nil(t, e)

	runs, e := s.Runs()
	require.Nil(t, e)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.True(t, started.Equal(run.StartedAt))
	assert.Equal(t, *p, run.Parameters)
	assert.Equal(t, report.Trials, run.Trials)
	assert.Equal(t, report.Successes, run.Successes)
	assert.Equal(t, report.Failures, run.Failures)
	assert.Equal(t, report.MessagesMean, run.MessagesMean)
	assert.False(t, run.StoppedEarly)

	trials, e := s.Trials(id)
	require.Nil(t, e)
	require.Len(t, trials, 3)
	for i, trial := range trials {
		result := report.Results[i]
		assert.Equal(t, result.Index, trial.Index)
		assert.Equal(t, result.Commander, trial.Commander)
		assert.Equal(t, result.Traitors, trial.Traitors)
		assert.Equal(t, result.FirstCommanderLoyal, trial.FirstCommanderLoyal)
		assert.Equal(t, result.OriginalOrder, trial.OriginalOrder)
		assert.Equal(t, result.Successful(), trial.Successful())
		assert.Equal(t, result.Stats.MessagesSent, trial.MessagesSent)
		assert.Equal(t, result.Decisions, trial.Decisions)
	}
}

func TestStore_saveTrialAppends(t *testing.T) {
	s := newStore(t)
	p := parameters.Default()
	p.Experiments = 1
	report := runReport(t, p, selection.Fixed{Traitors: []int{1}, Commander: 3})
	id, e := s.SaveRun(report, time.Now())
	require.Nil(t, e)

	extra := experiment.NewTrial(
		7, 4, 1, messages.Retreat, selection.Selection{Traitors: []int{0}, Commander: 1}, protocols.AlwaysFlip{},
	).Run(nil)
	require.Nil(t, s.SaveTrial(id, extra))

	trials, e := s.Trials(id)
	require.Nil(t, e)
	require.Len(t, trials, 2)
	assert.Equal(t, 7, trials[1].Index)
	assert.Equal(t, messages.Retreat, trials[1].OriginalOrder)
	assert.Equal(t, []int{1}, trials[1].Traitors)
}

func TestStore_duplicateTrialFails(t *testing.T) {
	s := newStore(t)
	p := parameters.Default()
	p.Experiments = 1
	report := runReport(t, p, selection.Fixed{Traitors: []int{1}, Commander: 3})
	id, e := s.SaveRun(report, time.Now())
	require.Nil(t, e)

	assert.NotNil(t, s.SaveTrial(id, report.Results[0]))
}

func TestStore_reopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omsim.db")
	s, e := NewStore(path)
	require.Nil(t, e)
	p := parameters.Default()
	p.Experiments = 2
	_, e = s.SaveRun(runReport(t, p, selection.NewRandomSelector(5)), time.Now())
	require.Nil(t, e)
	require.Nil(t, s.Close())

	s, e = NewStore(path)
	require.Nil(t, e)
	defer func() { _ = s.Close() }()
	runs, e := s.Runs()
	require.Nil(t, e)
	assert.Len(t, runs, 1)
}
