package booking

// Period is a closed reservation interval [CheckIn, CheckOut] for one
// listing.
type Period struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one day. Boundaries are inclusive: a stay
// checking out on 01-15 overlaps a query starting on 01-15. Touching
// intervals are never free — this single predicate decides both what
// availability reports as booked and what the booking guard rejects, and the
// two must never diverge.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return !aStart.After(bEnd.Time) && !aEnd.Before(bStart.Time)
}

// Overlaps reports whether the period shares at least one day with
// [start, end].
func (p Period) Overlaps(start, end Date) bool {
	return Overlaps(p.CheckIn, p.CheckOut, start, end)
}
