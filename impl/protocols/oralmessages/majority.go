package oralmessages

import (
	"oral-messages-simulation/impl/messages"
)

func Tally(orders []messages.Order) (attack int, retreat int) {
	for _, order := range orders {
		if order.Attack {
			attack++
		} else {
			retreat++
		}
	}
	return attack, retreat
}

// Majority returns Attack only when attack orders strictly outnumber retreat
// orders. Ties, including the empty input, resolve to Retreat.
func Majority(orders []messages.Order) messages.Order {
	attack, retreat := Tally(orders)
	if attack > retreat {
		return messages.Attack
	}
	return messages.Retreat
}
