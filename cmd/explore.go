package cmd

import (
	"fmt"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"oral-messages-simulation/impl/experiment"
	"oral-messages-simulation/impl/protocols"
	"strconv"
)

func newExploreCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Check every traitor assignment, commander and order exhaustively",
		Long: `Explore runs OM(m) once for every choice of f traitors among the n generals,
every first commander and both original orders, and lists the cases where
IC1 or IC2 does not hold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, e := loadParameters(cmd)
			if e != nil {
				return e
			}
			policy, e := protocols.NewPolicy(params.TraitorPolicy, params.FlipProbability, experiment.Seed(params))
			if e != nil {
				return e
			}

			res := experiment.Explore(params, policy, nil)

			out := cmd.OutOrStdout()
			if res.Successful() {
				pterm.Success.WithWriter(out).Printfln(
					"all %d cases reach agreement for n: %d, f: %d, m: %d",
					res.Cases, params.ProcessCount, params.FaultyProcesses, params.M())
				return nil
			}

			pterm.Error.WithWriter(out).Printfln(
				"%d of %d cases fail for n: %d, f: %d, m: %d",
				len(res.Failures), res.Cases, params.ProcessCount, params.FaultyProcesses, params.M())
			data := pterm.TableData{{"case", "commander", "traitors", "order", "reason"}}
			for i, f := range res.Failures {
				if limit > 0 && i >= limit {
					break
				}
				data = append(data, []string{
					strconv.Itoa(f.Index),
					strconv.Itoa(f.Commander),
					fmt.Sprint(f.Traitors),
					f.OriginalOrder.String(),
					f.Verdict.Reason(),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of failing cases to list, 0 for all")
	return cmd
}
