package cmd

import (
	"fmt"
	"github.com/asynkron/protoactor-go/actor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"io"
	"oral-messages-simulation/impl/handler"
	"strconv"
	"time"
)

type sweepOptions struct {
	nFrom   int
	nTo     int
	fMax    int
	timeout time.Duration
	logFile string
}

func newSweepCommand() *cobra.Command {
	opts := &sweepOptions{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a grid of configurations concurrently and compare success rates",
		Long: `Sweep runs the experiment loop for every n in [--n-from, --n-to] and every f
in [0, --f-max] with m = f, one actor per configuration. The other parameters
come from the usual flags, environment and config file. Every configuration
runs all of its experiments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.nFrom, "n-from", 4, "smallest number of generals")
	cmd.Flags().IntVar(&opts.nTo, "n-to", 10, "largest number of generals")
	cmd.Flags().IntVar(&opts.fMax, "f-max", 3, "largest number of traitors")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "time limit for each configuration")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write the run log to this file")
	return cmd
}

func runSweep(cmd *cobra.Command, opts *sweepOptions) error {
	if opts.nFrom < 1 || opts.nTo < opts.nFrom || opts.fMax < 0 {
		return fmt.Errorf("invalid grid: n from %d to %d, f up to %d", opts.nFrom, opts.nTo, opts.fMax)
	}
	base, e := loadParameters(cmd)
	if e != nil {
		return e
	}
	base.StopOnFailure = false

	logger, closeLog, e := openLogger(cmd, opts.logFile)
	if e != nil {
		return e
	}
	defer closeLog()

	system := actor.NewActorSystem()
	system.EventStream.Subscribe(
		func(event interface{}) {
			deadLetter, ok := event.(*actor.DeadLetterEvent)
			if ok {
				logger.Printf(
					"Dead letter detected. To: %s\n",
					deadLetter.PID.String())
			}
		},
	)

	configs := handler.Grid(base, opts.nFrom, opts.nTo, opts.fMax)
	results := handler.Sweep(system, configs, logger, opts.timeout)
	return printSweep(cmd.OutOrStdout(), results)
}

func printSweep(w io.Writer, results []*handler.ExperimentDone) error {
	data := pterm.TableData{{"n", "f", "m", "bound", "trials", "failures", "success rate", "95% interval"}}
	for _, done := range results {
		p := done.Parameters
		row := []string{
			strconv.Itoa(p.ProcessCount),
			strconv.Itoa(p.FaultyProcesses),
			strconv.Itoa(p.M()),
			strconv.FormatBool(p.ToleranceBoundHolds()),
		}
		if done.Err != nil {
			row = append(row, "-", "-", "error", done.Err.Error())
		} else {
			lo, hi := done.Report.WilsonInterval(0.95)
			row = append(row,
				strconv.Itoa(done.Report.Trials),
				strconv.Itoa(done.Report.Failures),
				fmt.Sprintf("%.3f", done.Report.SuccessRate()),
				fmt.Sprintf("[%.3f, %.3f]", lo, hi))
		}
		data = append(data, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
