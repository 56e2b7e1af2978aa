package metrics

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Ranker assigns a reactivation priority to an inactive patient. The
// clinic has not settled on a ranking policy, so it is pluggable.
type Ranker interface {
	Rank(p PatientRecord, now time.Time) Priority
}

// StaticRanker gives every patient the same priority.
type StaticRanker struct {
	Priority Priority
}

func (r StaticRanker) Rank(PatientRecord, time.Time) Priority {
	if r.Priority == "" {
		return PriorityMedium
	}
	return r.Priority
}

// RecencyRanker ranks by how long the patient has been away: at least High
// is high priority, at least Medium is medium, anything newer is low.
type RecencyRanker struct {
	High   time.Duration
	Medium time.Duration
}

func (r RecencyRanker) Rank(p PatientRecord, now time.Time) Priority {
	last, ok := recencySignal(p)
	if !ok {
		return PriorityHigh
	}
	away := now.Sub(last)
	switch {
	case away >= r.High:
		return PriorityHigh
	case away >= r.Medium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Simulator supplies placeholder values for metrics that have no live
// source. Anything it returns is tagged simulated.
type Simulator interface {
	AverageLifetimeValue() float64
	NPSScore() int
}

// Placeholder bounds, inclusive. Lifetime value is in CLP.
const (
	MinSimulatedLifetimeValue = 50000
	MaxSimulatedLifetimeValue = 150000
	MinSimulatedNPS           = 60
	MaxSimulatedNPS           = 90
)

// RandomSimulator samples uniformly within the placeholder bounds.
type RandomSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSimulator(seed uint64) *RandomSimulator {
	return &RandomSimulator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// AverageLifetimeValue is rounded to the nearest 100 CLP.
func (s *RandomSimulator) AverageLifetimeValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	steps := (MaxSimulatedLifetimeValue - MinSimulatedLifetimeValue) / 100
	return float64(MinSimulatedLifetimeValue + 100*s.rng.IntN(steps+1))
}

func (s *RandomSimulator) NPSScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MinSimulatedNPS + s.rng.IntN(MaxSimulatedNPS-MinSimulatedNPS+1)
}
