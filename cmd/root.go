package cmd

import (
	"context"
	"github.com/spf13/cobra"
	"log"
	"oral-messages-simulation/impl/parameters"
	"oral-messages-simulation/impl/utils"
)

// NewRootCommand builds the omsim command tree. Every call returns fresh
// commands with their own flag state.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "omsim",
		Short: "Oral Messages OM(m) Byzantine Generals simulator",
		Long: `omsim simulates Lamport's Oral Messages algorithm OM(m) for the Byzantine
Generals problem. It runs repeated experiments with randomly chosen traitors
and first commander, and checks that the loyal generals satisfy the
Interactive Consistency conditions.

Parameters come from flags, OMSIM_* environment variables, an optional
config file, and built-in defaults, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	defaults := parameters.Default()
	flags.StringP("config", "c", "", "config file (json, yaml or toml)")
	flags.IntP("n", "n", defaults.ProcessCount, "number of generals")
	flags.IntP("f", "f", defaults.FaultyProcesses, "number of traitors")
	flags.IntP("m", "m", defaults.Rounds, "rounds of OM(m); negative means same as f")
	flags.Int("experiments", defaults.Experiments, "number of experiments to run")
	flags.String("order", defaults.OriginalOrder, "order of the first commander: attack or retreat")
	flags.Uint64("seed", defaults.Seed, "random seed, 0 picks a time based one")
	flags.String("policy", defaults.TraitorPolicy, "traitor relay policy: parity, always, random or truthful")
	flags.Float64("flip-probability", defaults.FlipProbability, "probability of lying under the random policy")

	root.AddCommand(
		newRunCommand(),
		newExploreCommand(),
		newSweepCommand(),
		newHistoryCommand(),
	)
	return root
}

// Execute runs the command tree until ctx is done.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

var flagKeys = map[string]string{
	"n":                "n",
	"f":                "f",
	"m":                "m",
	"experiments":      "experiments",
	"order":            "order",
	"seed":             "seed",
	"policy":           "traitor_policy",
	"flip-probability": "flip_probability",
}

// loadParameters resolves the run parameters of cmd. Flags that were set
// explicitly win over the environment and the config file.
func loadParameters(cmd *cobra.Command) (*parameters.Parameters, error) {
	configFile, e := cmd.Flags().GetString("config")
	if e != nil {
		return nil, e
	}
	v, e := parameters.NewViper(configFile)
	if e != nil {
		return nil, e
	}
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if e := v.BindPFlag(key, f); e != nil {
			return nil, e
		}
	}
	return parameters.Load(v)
}

// openLogger logs to path, or to the command's stderr when path is empty.
// The returned function closes the log file.
func openLogger(cmd *cobra.Command, path string) (*log.Logger, func(), error) {
	if path == "" {
		return utils.NewLogger(cmd.ErrOrStderr()), func() {}, nil
	}
	f, e := utils.OpenLogFile(path)
	if e != nil {
		return nil, nil, e
	}
	return utils.NewLogger(f), func() { _ = f.Close() }, nil
}
