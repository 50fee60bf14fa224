package handler

import (
	"context"
	"fmt"
	"github.com/asynkron/protoactor-go/actor"
	"log"
	"oral-messages-simulation/impl/experiment"
	"oral-messages-simulation/impl/parameters"
	"time"
)

// RunExperiment asks an ExperimentActor to run the experiment loop for one
// configuration.
type RunExperiment struct {
	Parameters *parameters.Parameters
}

// ExperimentDone is the response to RunExperiment.
type ExperimentDone struct {
	Parameters parameters.Parameters
	Report     *experiment.Report
	Err        error
}

// ExperimentActor owns a single experiment run. Every trial runs inside the
// actor's receive loop, so the simulation itself stays sequential.
type ExperimentActor struct {
	logger *log.Logger
}

func NewExperimentActor(logger *log.Logger) *ExperimentActor {
	return &ExperimentActor{logger: logger}
}

func (a *ExperimentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RunExperiment:
		context.Respond(a.run(msg.Parameters))
	}
}

func (a *ExperimentActor) run(params *parameters.Parameters) *ExperimentDone {
	done := &ExperimentDone{Parameters: *params}
	runner, e := experiment.NewRunner(params, a.logger)
	if e != nil {
		done.Err = e
		return done
	}
	done.Report, done.Err = runner.Run(context.Background())
	return done
}

// Sweep runs every configuration on its own ExperimentActor and waits for all
// of them. The result at index i belongs to configs[i]; a configuration that
// did not answer within timeout carries the future's error.
func Sweep(
	system *actor.ActorSystem,
	configs []*parameters.Parameters,
	logger *log.Logger,
	timeout time.Duration,
) []*ExperimentDone {
	pids := make([]*actor.PID, len(configs))
	futures := make([]*actor.Future, len(configs))
	for i, config := range configs {
		pids[i] = system.Root.Spawn(
			actor.PropsFromProducer(
				func() actor.Actor {
					return NewExperimentActor(logger)
				}),
		)
		futures[i] = system.Root.RequestFuture(pids[i], &RunExperiment{Parameters: config.Copy()}, timeout)
	}

	results := make([]*ExperimentDone, len(configs))
	for i, future := range futures {
		res, e := future.Result()
		if e != nil {
			results[i] = &ExperimentDone{
				Parameters: *configs[i],
				Err:        fmt.Errorf("sweep n: %d, f: %d: %w", configs[i].ProcessCount, configs[i].FaultyProcesses, e),
			}
		} else {
			results[i] = res.(*ExperimentDone)
		}
		system.Root.Stop(pids[i])
	}
	return results
}

// Grid builds the sweep configurations: every n in [nFrom, nTo] combined with
// every f in [0, min(fMax, n)], with m = f. Other fields come from base.
func Grid(base *parameters.Parameters, nFrom int, nTo int, fMax int) []*parameters.Parameters {
	var configs []*parameters.Parameters
	for n := nFrom; n <= nTo; n++ {
		for f := 0; f <= fMax && f <= n; f++ {
			config := base.Copy()
			config.ProcessCount = n
			config.FaultyProcesses = f
			config.Rounds = f
			configs = append(configs, config)
		}
	}
	return configs
}
