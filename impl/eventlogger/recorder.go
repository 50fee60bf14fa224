package eventlogger

import (
	"oral-messages-simulation/impl/messages"
)

type Kind int

const (
	TraitorEvent Kind = iota
	CommandEvent
	SendEvent
	ReceiveEvent
	DecideEvent
)

// Event is a flattened protocol event. Peer is the other side of a send or
// receive and zero otherwise.
type Event struct {
	Kind    Kind
	General int
	Peer    int
	Order   messages.Order
	Rounds  int
	Depth   int

	AttackVotes  int
	RetreatVotes int
}

// Recorder keeps every event in memory, in the order they happened.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnTraitor(general int) {
	r.Events = append(r.Events, Event{Kind: TraitorEvent, General: general})
}

func (r *Recorder) OnCommand(commander int, order messages.Order, rounds int, depth int) {
	r.Events = append(r.Events, Event{
		Kind:    CommandEvent,
		General: commander,
		Order:   order,
		Rounds:  rounds,
		Depth:   depth,
	})
}

func (r *Recorder) OnSend(commander int, lieutenant int, order messages.Order, depth int) {
	r.Events = append(r.Events, Event{
		Kind:    SendEvent,
		General: commander,
		Peer:    lieutenant,
		Order:   order,
		Depth:   depth,
	})
}

func (r *Recorder) OnReceive(lieutenant int, commander int, order messages.Order) {
	r.Events = append(r.Events, Event{
		Kind:    ReceiveEvent,
		General: lieutenant,
		Peer:    commander,
		Order:   order,
	})
}

func (r *Recorder) OnDecide(general int, attackVotes int, retreatVotes int, decision messages.Order) {
	r.Events = append(r.Events, Event{
		Kind:         DecideEvent,
		General:      general,
		Order:        decision,
		AttackVotes:  attackVotes,
		RetreatVotes: retreatVotes,
	})
}

func (r *Recorder) Count(kind Kind) int {
	cnt := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			cnt++
		}
	}
	return cnt
}

// Filter returns the events of the given kind that concern general.
func (r *Recorder) Filter(kind Kind, general int) []Event {
	var res []Event
	for _, e := range r.Events {
		if e.Kind == kind && e.General == general {
			res = append(res, e)
		}
	}
	return res
}

func (r *Recorder) Reset() {
	r.Events = nil
}
