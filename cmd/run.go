package cmd

import (
	console "github.com/asynkron/goconsole"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"io"
	"oral-messages-simulation/impl/eventlogger"
	"oral-messages-simulation/impl/experiment"
	"oral-messages-simulation/impl/metrics"
	"oral-messages-simulation/impl/storage/sqlite"
	"os"
	"time"
)

type runOptions struct {
	keepGoing   bool
	narrate     bool
	verbose     bool
	step        bool
	logFile     string
	resultsDb   string
	metricsFile string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run OM(m) experiments with random traitors and commander",
		Long: `Run repeats the OM(m) experiment the configured number of times. Each trial
picks the traitors and the first commander at random, runs the algorithm and
checks IC1 and IC2 on the loyal lieutenants. By default the run stops at the
first trial where consensus is not reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiments(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "do not stop at the first failing trial")
	cmd.Flags().BoolVar(&opts.narrate, "narrate", false, "print every command and decision")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "with --narrate, also print every message")
	cmd.Flags().BoolVar(&opts.step, "step", false, "wait for Enter between trials")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write the protocol event log to this file")
	cmd.Flags().StringVar(&opts.resultsDb, "results-db", "", "store the run in this sqlite database")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	return cmd
}

// decisionPrinter lists the final decisions after every trial.
type decisionPrinter struct {
	console *eventlogger.Console
}

func (p decisionPrinter) RecordTrial(result *experiment.TrialResult) error {
	p.console.Decisions(result.Decisions)
	return nil
}

func runExperiments(cmd *cobra.Command, opts *runOptions) error {
	params, e := loadParameters(cmd)
	if e != nil {
		return e
	}
	if opts.keepGoing {
		params.StopOnFailure = false
	}
	if !params.ToleranceBoundHolds() {
		pterm.Warning.WithWriter(cmd.ErrOrStderr()).Printfln(
			"n: %d, f: %d, m: %d is outside n >= 3m+1, f <= m; agreement is not guaranteed",
			params.ProcessCount, params.FaultyProcesses, params.M())
	}

	logger, closeLog, e := openLogger(cmd, opts.logFile)
	if e != nil {
		return e
	}
	defer closeLog()

	out := cmd.OutOrStdout()
	narrator := eventlogger.NewConsole(out, opts.verbose)
	options := []experiment.Option{experiment.WithListener(narrator)}
	var observers []eventlogger.Observer

	if opts.narrate {
		observers = append(observers, narrator)
		options = append(options, experiment.WithSink(decisionPrinter{narrator}))
	}
	if opts.logFile != "" {
		el := eventlogger.InitEventLogger(logger)
		observers = append(observers, el)
		options = append(options, experiment.WithListener(el))
	}
	var m *metrics.Metrics
	if opts.metricsFile != "" {
		m = metrics.New()
		observers = append(observers, m)
		options = append(options, experiment.WithSink(m))
	}
	if opts.step {
		in := cmd.InOrStdin()
		options = append(options, experiment.WithPause(func() error {
			pterm.Info.WithWriter(out).Printfln("press Enter for the next trial")
			return waitForEnter(in)
		}))
	}
	options = append(options, experiment.WithObserver(eventlogger.Combine(observers...)))

	runner, e := experiment.NewRunner(params, logger, options...)
	if e != nil {
		return e
	}
	started := time.Now()
	report, e := runner.Run(cmd.Context())
	if report != nil {
		printReport(out, report)
	}
	if e != nil {
		return e
	}

	if m != nil {
		if e := m.WriteTextfile(opts.metricsFile); e != nil {
			return e
		}
	}
	if opts.resultsDb != "" {
		store, e := sqlite.NewStore(opts.resultsDb)
		if e != nil {
			return e
		}
		defer func() { _ = store.Close() }()
		id, e := store.SaveRun(report, started)
		if e != nil {
			return e
		}
		pterm.Info.WithWriter(out).Printfln("saved as run %d in %s", id, opts.resultsDb)
	}
	return nil
}

// waitForEnter reads one line, from the terminal when in is stdin.
func waitForEnter(in io.Reader) error {
	if in == nil || in == os.Stdin {
		_, e := console.ReadLine()
		return e
	}
	var buf [1]byte
	for {
		if _, e := in.Read(buf[:]); e != nil || buf[0] == '\n' {
			return e
		}
	}
}

func printReport(w io.Writer, report *experiment.Report) {
	lo, hi := report.WilsonInterval(0.95)
	section := pterm.DefaultSection.WithWriter(w)
	info := pterm.Info.WithWriter(w)

	section.Printfln("Summary")
	info.Printfln("trials: %d, successful: %d, failed: %d", report.Trials, report.Successes, report.Failures)
	info.Printfln("success rate: %.3f, 95%% interval [%.3f, %.3f]", report.SuccessRate(), lo, hi)
	info.Printfln("messages per trial: mean %.1f, stddev %.1f", report.MessagesMean, report.MessagesStdDev)
	if report.FirstFailure != nil {
		f := report.FirstFailure
		pterm.Error.WithWriter(w).Printfln(
			"first failure: trial %d, commander #%d, traitors %v: %s",
			f.Index, f.Commander, f.Traitors, f.Verdict.Reason())
	}
	if report.StoppedEarly {
		pterm.Warning.WithWriter(w).Printfln("stopped at the first failing trial")
	}
}
