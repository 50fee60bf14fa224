package parameters

import (
	"errors"
	"fmt"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/protocols"
)

var ErrInvalidParameters = errors.New("invalid parameters")

type Parameters struct {
	// Generals
	ProcessCount    int `json:"n" mapstructure:"n"`
	FaultyProcesses int `json:"f" mapstructure:"f"`

	// Rounds is m in OM(m). A negative value means "same as FaultyProcesses".
	Rounds int `json:"m" mapstructure:"m"`

	// Experiment loop
	Experiments   int    `json:"experiments" mapstructure:"experiments"`
	OriginalOrder string `json:"order" mapstructure:"order"`
	StopOnFailure bool   `json:"stop_on_failure" mapstructure:"stop_on_failure"`
	Seed          uint64 `json:"seed" mapstructure:"seed"`

	// Traitor behaviour
	TraitorPolicy   string  `json:"traitor_policy" mapstructure:"traitor_policy"`
	FlipProbability float64 `json:"flip_probability" mapstructure:"flip_probability"`
}

// Default mirrors the classic demonstration: four generals, two of them
// traitors, ten experiments, stop at the first failure.
func Default() *Parameters {
	return &Parameters{
		ProcessCount:    4,
		FaultyProcesses: 2,
		Rounds:          -1,
		Experiments:     10,
		OriginalOrder:   messages.Attack.String(),
		StopOnFailure:   true,
		TraitorPolicy:   protocols.PolicyParity,
		FlipProbability: 0.5,
	}
}

// M resolves the number of rounds to run.
func (p *Parameters) M() int {
	if p.Rounds < 0 {
		return p.FaultyProcesses
	}
	return p.Rounds
}

func (p *Parameters) Order() (messages.Order, error) {
	return messages.ParseOrder(p.OriginalOrder)
}

// ToleranceBoundHolds reports whether n >= 3m+1, the condition under which
// OM(m) is guaranteed to reach agreement. It is informational only.
func (p *Parameters) ToleranceBoundHolds() bool {
	return p.ProcessCount >= 3*p.M()+1 && p.FaultyProcesses <= p.M()
}

func (p *Parameters) Validate() error {
	if p.ProcessCount < 1 {
		return fmt.Errorf("%w: n must be at least 1, got %d", ErrInvalidParameters, p.ProcessCount)
	}
	if p.FaultyProcesses < 0 || p.FaultyProcesses > p.ProcessCount {
		return fmt.Errorf(
			"%w: f must be in [0, %d], got %d", ErrInvalidParameters, p.ProcessCount, p.FaultyProcesses)
	}
	if p.Experiments < 1 {
		return fmt.Errorf("%w: experiments must be at least 1, got %d", ErrInvalidParameters, p.Experiments)
	}
	if _, e := p.Order(); e != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, e)
	}
	if p.FlipProbability < 0 || p.FlipProbability > 1 {
		return fmt.Errorf(
			"%w: flip_probability must be in [0, 1], got %v", ErrInvalidParameters, p.FlipProbability)
	}
	if _, e := protocols.NewPolicy(p.TraitorPolicy, p.FlipProbability, 0); e != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, e)
	}
	return nil
}

// Copy is used by the sweep, where every configuration owns its parameters.
func (p *Parameters) Copy() *Parameters {
	c := *p
	return &c
}
