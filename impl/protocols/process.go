package protocols

import (
	"oral-messages-simulation/impl/messages"
)

// RelayPolicy decides which order a general acting as commander sends to the
// lieutenant standing at recipientIndex of the current roster. held is the
// general's own current decision.
//
// Loyal generals always use Truthful. A traitor may answer differently for
// different recipients, which is what makes the problem hard.
type RelayPolicy interface {
	Relay(held messages.Order, recipientIndex int) messages.Order
}
