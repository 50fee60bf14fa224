package metrics

import (
	"context"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log"
	"oral-messages-simulation/impl/experiment"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/parameters"
	"oral-messages-simulation/impl/protocols"
	"oral-messages-simulation/impl/selection"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestObserver_countsEvents(t *testing.T) {
	m := New()

	m.OnTraitor(2)
	m.OnCommand(1, messages.Attack, 1, 0)
	m.OnSend(1, 2, messages.Attack, 0)
	m.OnSend(1, 3, messages.Retreat, 0)
	m.OnReceive(2, 1, messages.Attack)
	m.OnDecide(2, 1, 0, messages.Attack)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.traitors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sent.WithLabelValues("attack")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sent.WithLabelValues("retreat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.received))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("attack")))
}

func TestRecordTrial_countsOutcomes(t *testing.T) {
	m := New()
	failing := selection.Selection{Traitors: []int{1, 2}, Commander: 3}
	passing := selection.Selection{Traitors: []int{1}, Commander: 3}

	require.Nil(t, m.RecordTrial(
		experiment.NewTrial(0, 4, 2, messages.Attack, failing, protocols.ParityFlip{}).Run(m)))
	require.Nil(t, m.RecordTrial(
		experiment.NewTrial(1, 4, 1, messages.Attack, passing, protocols.ParityFlip{}).Run(m)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.trials.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trials.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.violations.WithLabelValues("ic2")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.violations.WithLabelValues("ic1")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.traitors))
	assert.Equal(t, 24.0, testutil.ToFloat64(m.received))
}

func TestRunner_withMetrics(t *testing.T) {
	m := New()
	p := parameters.Default()
	p.FaultyProcesses = 1
	p.Experiments = 5
	p.Seed = 9
	r, e := experiment.NewRunner(
		p, log.New(io.Discard, "", 0), experiment.WithObserver(m), experiment.WithSink(m))
	require.Nil(t, e)

	_, e = r.Run(context.Background())

	require.Nil(t, e)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.trials.WithLabelValues("success")))
	assert.Equal(t, 45.0, testutil.ToFloat64(m.received))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.OnTraitor(1)
	path := filepath.Join(t.TempDir(), "omsim.prom")

	require.Nil(t, m.WriteTextfile(path))

	data, e := os.ReadFile(path)
	require.Nil(t, e)
	assert.True(t, strings.Contains(string(data), "omsim_traitors_total 1"))
}
