package protocols

import (
	"fmt"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"oral-messages-simulation/impl/messages"
)

const (
	PolicyTruthful = "truthful"
	PolicyParity   = "parity"
	PolicyAlways   = "always"
	PolicyRandom   = "random"
)

// Truthful relays the held order unchanged.
type Truthful struct{}

func (Truthful) Relay(held messages.Order, _ int) messages.Order {
	return held
}

// ParityFlip lies to recipients at even positions and tells the truth to the
// others.
type ParityFlip struct{}

func (ParityFlip) Relay(held messages.Order, recipientIndex int) messages.Order {
	if recipientIndex%2 == 0 {
		return held.Flip()
	}
	return held
}

// AlwaysFlip sends the opposite of the held order to everyone.
type AlwaysFlip struct{}

func (AlwaysFlip) Relay(held messages.Order, _ int) messages.Order {
	return held.Flip()
}

// RandomFlip lies to each recipient independently with probability P.
type RandomFlip struct {
	flip distuv.Bernoulli
}

func NewRandomFlip(p float64, seed uint64) *RandomFlip {
	return &RandomFlip{
		flip: distuv.Bernoulli{
			P:   p,
			Src: xrand.NewSource(seed),
		},
	}
}

func (r *RandomFlip) Relay(held messages.Order, _ int) messages.Order {
	if r.flip.Rand() == 1 {
		return held.Flip()
	}
	return held
}

// Scripted lets callers plug an arbitrary rule, mostly to build adversarial
// scenarios in tests.
type Scripted func(held messages.Order, recipientIndex int) messages.Order

func (s Scripted) Relay(held messages.Order, recipientIndex int) messages.Order {
	return s(held, recipientIndex)
}

// NewPolicy builds a traitor policy by name. probability and seed are only
// used by the random policy.
func NewPolicy(name string, probability float64, seed uint64) (RelayPolicy, error) {
	switch name {
	case PolicyTruthful:
		return Truthful{}, nil
	case "", PolicyParity:
		return ParityFlip{}, nil
	case PolicyAlways:
		return AlwaysFlip{}, nil
	case PolicyRandom:
		if probability < 0 || probability > 1 {
			return nil, fmt.Errorf("flip probability %v is outside [0, 1]", probability)
		}
		return NewRandomFlip(probability, seed), nil
	}
	return nil, fmt.Errorf("unknown traitor policy %q", name)
}
