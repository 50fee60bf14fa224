package oralmessages

import (
	"oral-messages-simulation/impl/protocols"
)

// Arena owns every general of one experiment. Generals are addressed by a
// stable index in [0, Len()); the id of the general at index i is i+1.
type Arena struct {
	generals []*General
}

func NewArena(n int) *Arena {
	a := &Arena{generals: make([]*General, n)}
	for i := range a.generals {
		a.generals[i] = NewGeneral(i+1, false)
	}
	return a
}

func (a *Arena) Len() int {
	return len(a.generals)
}

func (a *Arena) General(index int) *General {
	return a.generals[index]
}

func (a *Arena) MarkTraitor(index int, policy protocols.RelayPolicy) {
	a.generals[index].MarkTraitor(policy)
}

// Roster lists every index except the excluded one, in index order.
func (a *Arena) Roster(excluded int) []int {
	roster := make([]int, 0, len(a.generals))
	for i := range a.generals {
		if i != excluded {
			roster = append(roster, i)
		}
	}
	return roster
}

func (a *Arena) Traitors() []int {
	var res []int
	for i, g := range a.generals {
		if g.IsTraitor {
			res = append(res, i)
		}
	}
	return res
}
