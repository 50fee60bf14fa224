package cmd

import (
	"fmt"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"oral-messages-simulation/impl/storage/sqlite"
	"strconv"
)

func newHistoryCommand() *cobra.Command {
	var (
		resultsDb string
		run       int64
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs stored with run --results-db",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, e := sqlite.NewStore(resultsDb)
			if e != nil {
				return e
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if run > 0 {
				trials, e := store.Trials(run)
				if e != nil {
					return e
				}
				data := pterm.TableData{{"trial", "commander", "traitors", "order", "successful", "messages"}}
				for _, t := range trials {
					data = append(data, []string{
						strconv.Itoa(t.Index),
						strconv.Itoa(t.Commander),
						fmt.Sprint(t.Traitors),
						t.OriginalOrder.String(),
						strconv.FormatBool(t.Successful()),
						strconv.Itoa(t.MessagesSent),
					})
				}
				return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
			}

			runs, e := store.Runs()
			if e != nil {
				return e
			}
			if len(runs) == 0 {
				pterm.Info.WithWriter(out).Printfln("no runs stored in %s", resultsDb)
				return nil
			}
			data := pterm.TableData{{"run", "started", "n", "f", "m", "trials", "failures", "stopped early"}}
			for _, r := range runs {
				data = append(data, []string{
					strconv.FormatInt(r.ID, 10),
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(r.Parameters.ProcessCount),
					strconv.Itoa(r.Parameters.FaultyProcesses),
					strconv.Itoa(r.Parameters.M()),
					strconv.Itoa(r.Trials),
					strconv.Itoa(r.Failures),
					strconv.FormatBool(r.StoppedEarly),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
		},
	}
	cmd.Flags().StringVar(&resultsDb, "results-db", "omsim.db", "sqlite database written by run --results-db")
	cmd.Flags().Int64Var(&run, "run", 0, "list the trials of this run instead of the runs")
	return cmd
}
