package experiment

import (
	"oral-messages-simulation/impl/eventlogger"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/parameters"
	"oral-messages-simulation/impl/protocols"
	"oral-messages-simulation/impl/selection"
)

// Exploration is the outcome of checking every traitor assignment and every
// first commander for one configuration, under both original orders.
type Exploration struct {
	Cases    int
	Failures []*TrialResult
}

func (e *Exploration) Successful() bool {
	return len(e.Failures) == 0
}

// Explore runs OM(m) once per traitor assignment, commander and original
// order. Unlike Runner it never stops early.
func Explore(params *parameters.Parameters, policy protocols.RelayPolicy, observer eventlogger.Observer) *Exploration {
	res := &Exploration{}
	m := params.M()

	for _, sel := range selection.Enumerate(params.ProcessCount, params.FaultyProcesses) {
		for _, order := range []messages.Order{messages.Attack, messages.Retreat} {
			result := NewTrial(res.Cases, params.ProcessCount, m, order, sel, policy).Run(observer)
			if !result.Successful() {
				res.Failures = append(res.Failures, result)
			}
			res.Cases++
		}
	}
	return res
}
