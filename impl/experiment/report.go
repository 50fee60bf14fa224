package experiment

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
	"oral-messages-simulation/impl/parameters"
)

type Report struct {
	Parameters parameters.Parameters

	Trials    int
	Successes int
	Failures  int

	// StoppedEarly is set when the run ended on a failure before all the
	// requested experiments were done.
	StoppedEarly bool
	FirstFailure *TrialResult

	MessagesMean   float64
	MessagesStdDev float64

	Results []*TrialResult
}

func (r *Report) add(result *TrialResult) {
	r.Trials++
	if result.Successful() {
		r.Successes++
	} else {
		r.Failures++
		if r.FirstFailure == nil {
			r.FirstFailure = result
		}
	}
	r.Results = append(r.Results, result)
}

func (r *Report) finish() {
	if len(r.Results) == 0 {
		return
	}
	sent := make([]float64, len(r.Results))
	for i, result := range r.Results {
		sent[i] = float64(result.Stats.MessagesSent)
	}
	if len(sent) == 1 {
		r.MessagesMean = sent[0]
		return
	}
	r.MessagesMean, r.MessagesStdDev = stat.MeanStdDev(sent, nil)
}

func (r *Report) SuccessRate() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Trials)
}

// WilsonInterval is the Wilson score interval of the success rate at the
// given confidence level, e.g. 0.95.
func (r *Report) WilsonInterval(confidence float64) (lo float64, hi float64) {
	if r.Trials == 0 {
		return 0, 1
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	n := float64(r.Trials)
	p := r.SuccessRate()

	denominator := 1 + z*z/n
	center := (p + z*z/(2*n)) / denominator
	halfWidth := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n)) / denominator

	return math.Max(0, center-halfWidth), math.Min(1, center+halfWidth)
}
