package booking

import "time"

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowPolicy describes how long a booking keeps its barber busy:
// travel buffer, then the service itself, then travel buffer again.
type WindowPolicy struct {
	Buffer  time.Duration
	Service time.Duration
}

func DefaultWindowPolicy() WindowPolicy {
	return WindowPolicy{Buffer: time.Hour, Service: time.Hour}
}

// For returns [start - buffer, start + service + buffer).
func (p WindowPolicy) For(start time.Time) Window {
	return Window{
		Start: start.Add(-p.Buffer),
		End:   start.Add(p.Service + p.Buffer),
	}
}
