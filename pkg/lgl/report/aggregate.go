package report

import (
	"fmt"
	"time"

	"github.com/sambeau/lgl/pkg/lgl/trace"
)

// PairMode selects how stop events are matched with start events.
type PairMode int

const (
	// PairSequential pairs each stop with the latest unmatched start of the
	// same function name. A second start before a stop replaces the first.
	PairSequential PairMode = iota
	// PairByID pairs each stop with the start carrying the same id, which
	// stays correct for recursive calls.
	PairByID
)

// ParsePairMode accepts "sequential" (or "") and "id".
func ParsePairMode(s string) (PairMode, error) {
	switch s {
	case "", "sequential":
		return PairSequential, nil
	case "id":
		return PairByID, nil
	}
	return 0, fmt.Errorf("unknown pairing %q (want sequential or id)", s)
}

func (m PairMode) String() string {
	if m == PairByID {
		return "id"
	}
	return "sequential"
}

// Stats are the completed calls of one function.
type Stats struct {
	Function string
	Calls    int
	Total    time.Duration
}

// Average returns Total / Calls, or zero when there were no calls.
func (s Stats) Average() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// TotalMillis returns Total in milliseconds.
func (s Stats) TotalMillis() float64 { return millis(s.Total) }

// AverageMillis returns the average in milliseconds.
func (s Stats) AverageMillis() float64 {
	if s.Calls == 0 {
		return 0
	}
	return millis(s.Total) / float64(s.Calls)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Report holds per-function statistics in order of first appearance.
type Report struct {
	Functions []Stats
	Events    int
	Unmatched int // starts with no stop plus stops with no start
	Mode      PairMode
}

// Aggregate pairs start and stop events and sums the elapsed time per function.
func Aggregate(events trace.Log, mode PairMode) *Report {
	rep := &Report{Events: len(events), Mode: mode}
	index := make(map[string]int)

	stats := func(name string) *Stats {
		i, ok := index[name]
		if !ok {
			i = len(rep.Functions)
			index[name] = i
			rep.Functions = append(rep.Functions, Stats{Function: name})
		}
		return &rep.Functions[i]
	}

	switch mode {
	case PairByID:
		open := make(map[int]trace.Event)
		for _, e := range events {
			s := stats(e.Function)
			switch e.Phase {
			case trace.Start:
				if _, dup := open[e.ID]; dup {
					rep.Unmatched++
				}
				open[e.ID] = e
			case trace.Stop:
				start, ok := open[e.ID]
				if !ok || start.Function != e.Function {
					rep.Unmatched++
					continue
				}
				delete(open, e.ID)
				s.Calls++
				s.Total += e.Time.Sub(start.Time)
			}
		}
		rep.Unmatched += len(open)

	default:
		open := make(map[string]time.Time)
		for _, e := range events {
			s := stats(e.Function)
			switch e.Phase {
			case trace.Start:
				if _, dup := open[e.Function]; dup {
					rep.Unmatched++
				}
				open[e.Function] = e.Time
			case trace.Stop:
				start, ok := open[e.Function]
				if !ok {
					rep.Unmatched++
					continue
				}
				delete(open, e.Function)
				s.Calls++
				s.Total += e.Time.Sub(start)
			}
		}
		rep.Unmatched += len(open)
	}

	return rep
}
