package selection

import (
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/sampleuv"
	"sort"
)

// Selection names, by arena index, the traitors of one experiment and the
// general that starts it as commander.
type Selection struct {
	Traitors  []int
	Commander int
}

func (s Selection) IsTraitor(index int) bool {
	for _, t := range s.Traitors {
		if t == index {
			return true
		}
	}
	return false
}

func (s Selection) CommanderIsLoyal() bool {
	return !s.IsTraitor(s.Commander)
}

// Selector picks the traitors and the first commander among n generals.
type Selector interface {
	Select(n int, traitors int) Selection
}

// RandomSelector draws traitors uniformly without replacement and the
// commander uniformly among all generals, traitors included.
type RandomSelector struct {
	src xrand.Source
	rnd *xrand.Rand
}

func NewRandomSelector(seed uint64) *RandomSelector {
	src := xrand.NewSource(seed)
	return &RandomSelector{
		src: src,
		rnd: xrand.New(src),
	}
}

func (rs *RandomSelector) Select(n int, traitors int) Selection {
	s := Selection{Commander: rs.rnd.Intn(n)}
	if traitors > 0 {
		s.Traitors = make([]int, traitors)
		sampleuv.WithoutReplacement(s.Traitors, n, rs.src)
		sort.Ints(s.Traitors)
	}
	return s
}

// Fixed always returns the same selection, which makes experiments
// reproducible in tests.
type Fixed Selection

func (f Fixed) Select(int, int) Selection {
	traitors := make([]int, len(f.Traitors))
	copy(traitors, f.Traitors)
	return Selection{Traitors: traitors, Commander: f.Commander}
}

// Sequence replays the given selections in order and then starts over.
type Sequence struct {
	selections []Selection
	next       int
}

func NewSequence(selections []Selection) *Sequence {
	return &Sequence{selections: selections}
}

func (s *Sequence) Select(int, int) Selection {
	res := s.selections[s.next%len(s.selections)]
	s.next++
	return res
}

// Enumerate lists every possible choice of traitors combined with every
// possible first commander, C(n, traitors) * n selections in total.
func Enumerate(n int, traitors int) []Selection {
	var res []Selection
	for _, comb := range combin.Combinations(n, traitors) {
		for commander := 0; commander < n; commander++ {
			t := make([]int, len(comb))
			copy(t, comb)
			res = append(res, Selection{Traitors: t, Commander: commander})
		}
	}
	return res
}
