package oralmessages

import (
	"oral-messages-simulation/impl/messages"
	"oral-messages-simulation/impl/protocols"
)

// General is one participant of the Byzantine generals problem. It never
// originates a decision: it only aggregates the orders it was sent, except
// for the first commander whose decision is seeded with the original order.
type General struct {
	Id        int
	IsTraitor bool
	Decision  messages.Order

	MessagesReceived int

	received []messages.Order
	policy   protocols.RelayPolicy
}

// NewGeneral creates a participant. A traitor created this way lies to
// recipients at even roster positions until MarkTraitor installs another
// policy.
func NewGeneral(id int, isTraitor bool) *General {
	g := &General{Id: id}
	if isTraitor {
		g.MarkTraitor(protocols.ParityFlip{})
	} else {
		g.policy = protocols.Truthful{}
	}
	return g
}

func (g *General) MarkTraitor(policy protocols.RelayPolicy) {
	g.IsTraitor = true
	g.policy = policy
}

// Command seeds the decision of a general that starts the protocol as
// commander and therefore never receives its own order.
func (g *General) Command(order messages.Order) {
	g.Decision = order
}

// ReceiveOrder appends msg to the received orders. The very first order a
// general ever receives also becomes its decision until Decide runs.
func (g *General) ReceiveOrder(msg messages.Order, from int) {
	if len(g.received) == 0 {
		g.Decision = msg
	}
	g.received = append(g.received, msg)
	g.MessagesReceived++
}

// RelayValue is what this general sends to the lieutenant at recipientIndex
// when it acts as commander.
func (g *General) RelayValue(recipientIndex int) messages.Order {
	if !g.IsTraitor || g.policy == nil {
		return g.Decision
	}
	return g.policy.Relay(g.Decision, recipientIndex)
}

// Decide recomputes the decision as the majority of everything received so
// far. It is idempotent while no new order arrives.
func (g *General) Decide() messages.Order {
	g.Decision = Majority(g.received)
	return g.Decision
}

// Received returns a copy of the orders received so far.
func (g *General) Received() []messages.Order {
	res := make([]messages.Order, len(g.received))
	copy(res, g.received)
	return res
}

func (g *General) Tally() (attack int, retreat int) {
	return Tally(g.received)
}
