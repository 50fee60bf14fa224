package eventlogger

import (
	"log"
	"oral-messages-simulation/impl/messages"
)

// Observer is notified about every step of a protocol run. Implementations
// must not influence the run; the protocol behaves the same with Nop.
type Observer interface {
	OnTraitor(general int)
	OnCommand(commander int, order messages.Order, rounds int, depth int)
	OnSend(commander int, lieutenant int, order messages.Order, depth int)
	OnReceive(lieutenant int, commander int, order messages.Order)
	OnDecide(general int, attackVotes int, retreatVotes int, decision messages.Order)
}

type Nop struct{}

func (Nop) OnTraitor(int)                           {}
func (Nop) OnCommand(int, messages.Order, int, int) {}
func (Nop) OnSend(int, int, messages.Order, int)    {}
func (Nop) OnReceive(int, int, messages.Order)      {}
func (Nop) OnDecide(int, int, int, messages.Order)  {}

// Multi fans every event out to all of its observers in order.
type Multi []Observer

func (m Multi) OnTraitor(general int) {
	for _, o := range m {
		o.OnTraitor(general)
	}
}

func (m Multi) OnCommand(commander int, order messages.Order, rounds int, depth int) {
	for _, o := range m {
		o.OnCommand(commander, order, rounds, depth)
	}
}

func (m Multi) OnSend(commander int, lieutenant int, order messages.Order, depth int) {
	for _, o := range m {
		o.OnSend(commander, lieutenant, order, depth)
	}
}

func (m Multi) OnReceive(lieutenant int, commander int, order messages.Order) {
	for _, o := range m {
		o.OnReceive(lieutenant, commander, order)
	}
}

func (m Multi) OnDecide(general int, attackVotes int, retreatVotes int, decision messages.Order) {
	for _, o := range m {
		o.OnDecide(general, attackVotes, retreatVotes, decision)
	}
}

// Combine drops nil observers and returns Nop when nothing is left.
func Combine(observers ...Observer) Observer {
	var res Multi
	for _, o := range observers {
		if o != nil {
			res = append(res, o)
		}
	}
	switch len(res) {
	case 0:
		return Nop{}
	case 1:
		return res[0]
	}
	return res
}

// EventLogger writes one line per protocol event to a log.Logger.
type EventLogger struct {
	trial  int
	logger *log.Logger
}

func InitEventLogger(logger *log.Logger) *EventLogger {
	el := new(EventLogger)
	el.logger = logger
	return el
}

// SetTrial tags subsequent lines with the index of the running trial.
func (el *EventLogger) SetTrial(trial int) {
	el.trial = trial
}

func (el *EventLogger) TrialStarted(trial int) {
	el.SetTrial(trial)
	el.logger.Printf("trial %d: started\n", trial)
}

func (el *EventLogger) TrialFinished(trial int, successful bool, reason string) {
	el.logger.Printf("trial %d: successful: %t, %s\n", trial, successful, reason)
}

func (el *EventLogger) OnTraitor(general int) {
	el.logger.Printf("trial %d: general #%d is a traitor\n", el.trial, general)
}

func (el *EventLogger) OnCommand(commander int, order messages.Order, rounds int, depth int) {
	el.logger.Printf(
		"trial %d: general #%d commands %s, m: %d, depth: %d\n",
		el.trial, commander, order, rounds, depth)
}

func (el *EventLogger) OnSend(commander int, lieutenant int, order messages.Order, depth int) {
	el.logger.Printf(
		"trial %d: general #%d sends %s to general #%d at depth %d\n",
		el.trial, commander, order, lieutenant, depth)
}

func (el *EventLogger) OnReceive(lieutenant int, commander int, order messages.Order) {
	el.logger.Printf(
		"trial %d: general #%d received %s from commander #%d\n",
		el.trial, lieutenant, order, commander)
}

func (el *EventLogger) OnDecide(general int, attackVotes int, retreatVotes int, decision messages.Order) {
	el.logger.Printf(
		"trial %d: general #%d decided %s, attack votes: %d, retreat votes: %d\n",
		el.trial, general, decision, attackVotes, retreatVotes)
}
