package experiment

import (
	"oral-messages-simulation/impl/eventlogger"
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/protocols"
	"oral-messages-simulation/impl/protocols/oralmessages"
	"oral-messages-simulation/impl/selection"
)

// Trial is the context of a single experiment. It is built fresh for every
// experiment and thrown away once validated, so nothing leaks between trials.
type Trial struct {
	index int

	arena     *oralmessages.Arena
	roster    []int
	commander int
	rounds    int

	firstCommanderLoyal bool
	originalOrder       messages.Order
}

// TrialResult is what survives a trial. Generals are reported by id.
type TrialResult struct {
	Index               int
	Commander           int
	Traitors            []int
	FirstCommanderLoyal bool
	OriginalOrder       messages.Order

	Verdict   oralmessages.Verdict
	Stats     oralmessages.Stats
	Decisions map[int]messages.Order
}

func (r *TrialResult) Successful() bool {
	return r.Verdict.Successful()
}

func NewTrial(
	index int,
	n int,
	rounds int,
	originalOrder messages.Order,
	sel selection.Selection,
	policy protocols.RelayPolicy,
) *Trial {
	t := &Trial{
		index:         index,
		arena:         oralmessages.NewArena(n),
		commander:     sel.Commander,
		rounds:        rounds,
		originalOrder: originalOrder,
	}
	for _, idx := range sel.Traitors {
		t.arena.MarkTraitor(idx, policy)
	}
	t.firstCommanderLoyal = !t.arena.General(t.commander).IsTraitor
	t.arena.General(t.commander).Command(originalOrder)
	t.roster = t.arena.Roster(t.commander)
	return t
}

// Run executes OM(m) from the first commander, then validates the final
// decisions of the other generals.
func (t *Trial) Run(observer eventlogger.Observer) *TrialResult {
	if observer == nil {
		observer = eventlogger.Nop{}
	}

	result := &TrialResult{
		Index:               t.index,
		Commander:           t.arena.General(t.commander).Id,
		FirstCommanderLoyal: t.firstCommanderLoyal,
		OriginalOrder:       t.originalOrder,
		Decisions:           make(map[int]messages.Order, len(t.roster)),
	}
	for _, idx := range t.arena.Traitors() {
		id := t.arena.General(idx).Id
		result.Traitors = append(result.Traitors, id)
		observer.OnTraitor(id)
	}

	result.Stats = oralmessages.NewOMAlgorithm(t.arena, observer).Run(t.roster, t.commander, t.rounds)

	for _, idx := range t.roster {
		g := t.arena.General(idx)
		result.Decisions[g.Id] = g.Decision
	}
	result.Verdict = oralmessages.Validate(t.arena, t.roster, t.firstCommanderLoyal, t.originalOrder)
	return result
}
