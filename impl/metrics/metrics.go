package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"oral-messages-simulation/impl/experiment"
	"oral-messages-simulation/impl/messages"
	"strconv"
)

const namespace = "omsim"

// Metrics counts protocol events and trial outcomes. It is both an
// eventlogger.Observer and an experiment.ResultSink.
type Metrics struct {
	registry *prometheus.Registry

	traitors  prometheus.Counter
	commands  *prometheus.CounterVec
	sent      *prometheus.CounterVec
	received  prometheus.Counter
	decisions *prometheus.CounterVec

	trials           *prometheus.CounterVec
	violations       *prometheus.CounterVec
	messagesPerTrial prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		traitors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traitors_total",
			Help:      "Generals marked as traitors.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "OM invocations by recursion depth.",
		}, []string{"depth"}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Orders sent by commanders, by order value.",
		}, []string{"order"}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Orders received by lieutenants.",
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Majority decisions, by resulting order.",
		}, []string{"decision"}),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Finished trials, by outcome.",
		}, []string{"outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Interactive consistency violations, by condition.",
		}, []string{"condition"}),
		messagesPerTrial: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "messages_per_trial",
			Help:      "Orders sent during one trial.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	m.registry.MustRegister(
		m.traitors, m.commands, m.sent, m.received, m.decisions,
		m.trials, m.violations, m.messagesPerTrial)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OnTraitor(int) {
	m.traitors.Inc()
}

func (m *Metrics) OnCommand(_ int, _ messages.Order, _ int, depth int) {
	m.commands.WithLabelValues(strconv.Itoa(depth)).Inc()
}

func (m *Metrics) OnSend(_ int, _ int, order messages.Order, _ int) {
	m.sent.WithLabelValues(order.String()).Inc()
}

func (m *Metrics) OnReceive(int, int, messages.Order) {
	m.received.Inc()
}

func (m *Metrics) OnDecide(_ int, _ int, _ int, decision messages.Order) {
	m.decisions.WithLabelValues(decision.String()).Inc()
}

func (m *Metrics) RecordTrial(result *experiment.TrialResult) error {
	if result.Successful() {
		m.trials.WithLabelValues("success").Inc()
	} else {
		m.trials.WithLabelValues("failure").Inc()
	}
	if !result.Verdict.IC1 {
		m.violations.WithLabelValues("ic1").Inc()
	}
	if !result.Verdict.IC2 {
		m.violations.WithLabelValues("ic2").Inc()
	}
	m.messagesPerTrial.Observe(float64(result.Stats.MessagesSent))
	return nil
}

// WriteTextfile dumps the registry in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
