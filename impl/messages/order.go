package messages

import (
	"fmt"
	"strings"
)

// Order is the value a commander sends to its lieutenants. It is passed by
// value and never modified after creation.
type Order struct {
	Attack bool
}

var (
	Attack  = Order{Attack: true}
	Retreat = Order{Attack: false}
)

func (o Order) Flip() Order {
	return Order{Attack: !o.Attack}
}

func (o Order) String() string {
	if o.Attack {
		return "attack"
	}
	return "retreat"
}

func (o Order) ToString() string {
	return fmt.Sprintf("Order{%s}", o.String())
}

// ParseOrder accepts "attack"/"retreat" in any case, as well as the
// boolean spellings used by older parameter files.
func ParseOrder(value string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "attack", "true", "1":
		return Attack, nil
	case "retreat", "false", "0":
		return Retreat, nil
	}
	return Order{}, fmt.Errorf("unknown order %q, expected attack or retreat", value)
}
