package oralmessages

import (
	"oral-messages-simulation/impl/messages"
)

// Verdict reports the Interactive Consistency conditions after a run.
//
//	IC1: all loyal lieutenants obey the same order.
//	IC2: if the commanding general is loyal, every loyal lieutenant obeys
//	     the order he sends.
type Verdict struct {
	IC1 bool
	IC2 bool

	// LoyalDecision is the order agreed by the loyal lieutenants, valid only
	// when IC1 holds and Loyal > 0.
	LoyalDecision messages.Order
	Loyal         int
}

func (v Verdict) Successful() bool {
	return v.IC1 && v.IC2
}

// Reason is a short description of the first violated condition.
func (v Verdict) Reason() string {
	switch {
	case !v.IC1:
		return "IC1 violated: loyal generals disagree"
	case !v.IC2:
		return "IC2 violated: loyal generals did not follow the loyal commander"
	}
	return "IC1 and IC2 hold"
}

// Validate checks IC1 and IC2 over the final decisions of the loyal
// generals of roster. IC2 is not checked when the first commander is a
// traitor, and both hold vacuously when roster has no loyal general.
func Validate(arena *Arena, roster []int, firstCommanderLoyal bool, originalOrder messages.Order) Verdict {
	v := Verdict{IC1: true, IC2: true}

	var loyalDecisions []messages.Order
	for _, idx := range roster {
		g := arena.General(idx)
		if !g.IsTraitor {
			loyalDecisions = append(loyalDecisions, g.Decision)
		}
	}
	v.Loyal = len(loyalDecisions)
	if v.Loyal == 0 {
		return v
	}

	for _, decision := range loyalDecisions[1:] {
		if decision != loyalDecisions[0] {
			v.IC1 = false
			v.IC2 = !firstCommanderLoyal
			return v
		}
	}
	v.LoyalDecision = loyalDecisions[0]

	if firstCommanderLoyal && v.LoyalDecision != originalOrder {
		v.IC2 = false
	}
	return v
}

func WasSuccessful(arena *Arena, roster []int, firstCommanderLoyal bool, originalOrder messages.Order) bool {
	return Validate(arena, roster, firstCommanderLoyal, originalOrder).Successful()
}
