package libdiff

// Reverse returns the changes undoing changes: applied to the result of
// changes, they restore the original value.
func Reverse(changes []Change) []Change {
	res := make([]Change, len(changes))
	for i, c := range changes {
		r := Change{Path: clonePath(c.Path), From: c.To, To: c.From}
		switch c.Op {
		case Insert:
			r.Op = Delete
		case Delete:
			r.Op = Insert
		case Replace:
			r.Op = Replace
			r.Spans = reverseSpans(c.Spans)
		}
		res[len(changes)-1-i] = r
	}
	return res
}

func reverseSpans(spans []Span) []Span {
	if spans == nil {
		return nil
	}
	res := make([]Span, len(spans))
	for i, s := range spans {
		switch s.Op {
		case Added:
			s.Op = Removed
		case Removed:
			s.Op = Added
		}
		res[i] = s
	}
	return res
}
