package logmodel

import "time"

// Time is the profiler's measurement for one location or pass.
type Time struct {
	ExclusiveTime time.Duration
	InclusiveTime time.Duration
	NumberOfHits  int
}

// Add returns the sum of two measurements.
func (t Time) Add(other Time) Time {
	return Time{
		ExclusiveTime: t.ExclusiveTime + other.ExclusiveTime,
		InclusiveTime: t.InclusiveTime + other.InclusiveTime,
		NumberOfHits:  t.NumberOfHits + other.NumberOfHits,
	}
}

// EvaluatedLocation is a profiled element of a project file (a property,
// an item, a condition, an import, ...). Locations nest the way the
// elements nest in the file.
type EvaluatedLocation struct {
	Kind        string
	ElementName string
	Description string
	File        string
	Line        int
	Time        Time
	Children    []EvaluatedLocation
}

// EvaluatedPass is one evaluator pass (properties, item definitions,
// items, targets, ...) and the locations profiled during it.
type EvaluatedPass struct {
	Pass        string
	Description string
	Time        Time
	Locations   []EvaluatedLocation
}

// EvaluatedProfile is the evaluator profile of one project evaluation.
type EvaluatedProfile struct {
	Passes []EvaluatedPass
}

// Total returns the summed time of all passes.
func (p *EvaluatedProfile) Total() Time {
	var total Time
	if p == nil {
		return total
	}
	for _, pass := range p.Passes {
		total = total.Add(pass.Time)
	}
	return total
}

// Hottest returns the location with the largest exclusive time across all
// passes, descending into nested locations. ok is false for an empty profile.
func (p *EvaluatedProfile) Hottest() (loc EvaluatedLocation, ok bool) {
	if p == nil {
		return loc, false
	}
	var visit func([]EvaluatedLocation)
	visit = func(locs []EvaluatedLocation) {
		for _, l := range locs {
			if !ok || l.Time.ExclusiveTime > loc.Time.ExclusiveTime {
				loc, ok = l, true
			}
			visit(l.Children)
		}
	}
	for _, pass := range p.Passes {
		visit(pass.Locations)
	}
	return loc, ok
}
