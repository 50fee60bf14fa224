package oralmessages

import (
	"oral-messages-simulation/impl/eventlogger"
)

// Stats describes the work done by one OM(m) run.
type Stats struct {
	MessagesSent   int
	DecidePasses   int
	MaxDepth       int
	CommandsIssued int
}

// OMAlgorithm runs Lamport's Oral Messages algorithm over the generals of an
// arena. It is strictly sequential and is the only mutator of the arena while
// Run executes.
type OMAlgorithm struct {
	arena    *Arena
	observer eventlogger.Observer
	stats    Stats
}

func NewOMAlgorithm(arena *Arena, observer eventlogger.Observer) *OMAlgorithm {
	if observer == nil {
		observer = eventlogger.Nop{}
	}
	return &OMAlgorithm{
		arena:    arena,
		observer: observer,
	}
}

// Run executes OM(m) with the general at index commander sending its current
// decision to every general of roster. It does not check that the number of
// generals is large enough for m; a misconfigured run simply ends without
// agreement.
func (a *OMAlgorithm) Run(roster []int, commander int, m int) Stats {
	a.stats = Stats{}
	a.om(roster, commander, m, 0)
	return a.stats
}

func (a *OMAlgorithm) om(roster []int, commander int, m int, depth int) {
	if depth > a.stats.MaxDepth {
		a.stats.MaxDepth = depth
	}
	a.stats.CommandsIssued++

	lieutenants := without(roster, commander)
	c := a.arena.General(commander)
	a.observer.OnCommand(c.Id, c.Decision, m, depth)

	for idx, lieutenant := range lieutenants {
		g := a.arena.General(lieutenant)
		msg := c.RelayValue(idx)

		a.observer.OnSend(c.Id, g.Id, msg, depth)
		a.stats.MessagesSent++

		g.ReceiveOrder(msg, c.Id)
		a.observer.OnReceive(g.Id, c.Id, msg)
	}

	if m == 0 {
		return
	}

	// Each lieutenant relays what it now holds to the others, one full
	// subtree at a time. A lone lieutenant has nobody left to tell.
	if len(lieutenants) > 1 {
		for _, lieutenant := range lieutenants {
			a.om(without(lieutenants, lieutenant), lieutenant, m-1, depth+1)
		}
	}

	for _, lieutenant := range lieutenants {
		g := a.arena.General(lieutenant)
		decision := g.Decide()
		a.stats.DecidePasses++

		attack, retreat := g.Tally()
		a.observer.OnDecide(g.Id, attack, retreat, decision)
	}
}

func without(roster []int, excluded int) []int {
	res := make([]int, 0, len(roster))
	for _, idx := range roster {
		if idx != excluded {
			res = append(res, idx)
		}
	}
	return res
}
